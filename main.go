package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"markestedt/autolib/config"
	"markestedt/autolib/systray"
	"markestedt/autolib/web"
)

const usage = `Usage: autolib [flags] <command> [args]

Commands:
  send <C|V>       send the copy (C) or paste (V) shortcut, prints 1 or 0
  copy             copy the focused selection and print it
  paste <text>     paste text into the focused window
  serve            run the local web host (and tray when enabled)
  history [-limit n]
                   print recent invocations (default 20)

Flags:
`

func main() {
	configFlag := flag.String("config", "", "path to config file")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	var cfg *config.Config
	var err error
	if *configFlag != "" {
		cfg, err = config.LoadFrom(*configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Debug("Configuration loaded", "path", cfg.Path())

	agent, err := NewAgent(cfg)
	if err != nil {
		slog.Error("Failed to create agent", "error", err)
		os.Exit(1)
	}
	defer agent.Close()

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, agent, flag.Args(), os.Stdout); err != nil {
		slog.Error("Command failed", "command", flag.Arg(0), "error", err)
		agent.Close()
		cancel()
		os.Exit(1)
	}
}

var errKeyFailed = errors.New("key injection failed")

// run executes one command, writing its output to out
func run(ctx context.Context, agent *Agent, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "send":
		if len(args) != 2 {
			return fmt.Errorf("send takes exactly one key argument")
		}
		result, err := agent.Invoke(ctx, "cli", args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result)
		if result != 1 {
			return errKeyFailed
		}
		return nil

	case "copy":
		text, err := agent.CopySelectedText(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
		return nil

	case "paste":
		if len(args) < 2 {
			return fmt.Errorf("paste needs the text to paste")
		}
		return agent.PasteText(ctx, strings.Join(args[1:], " "))

	case "serve":
		return serve(ctx, agent)

	case "history":
		fs := flag.NewFlagSet("history", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		limit := fs.Int("limit", 20, "number of entries to print")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("history: %w", err)
		}
		if fs.NArg() != 0 {
			return fmt.Errorf("history: unexpected arguments %q", fs.Args())
		}
		if *limit < 1 {
			return fmt.Errorf("history: -limit must be at least 1")
		}
		return printHistory(out, agent, *limit)

	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// serve runs the web host and, when enabled, the tray until ctx is cancelled
// or the user quits from the tray.
func serve(ctx context.Context, agent *Agent) error {
	cfg := agent.cfg
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !cfg.Web.Enabled && !cfg.Tray.Enabled {
		return fmt.Errorf("nothing to serve: enable [web] or [tray] in %s", cfg.Path())
	}

	errCh := make(chan error, 1)
	webURL := ""

	if cfg.Web.Enabled {
		server := web.NewServer(agent, agent.db, cfg, cfg.Web.Port)
		agent.onInvocation = server.BroadcastInvocation
		webURL = server.URL()

		go func() {
			err := server.Start(ctx)
			if err != nil {
				// Unblock the tray or the wait below
				cancel()
			}
			errCh <- err
		}()
		server.SetStatus("ready")
	}

	if cfg.Tray.Enabled {
		tray := systray.NewSystrayManager(webURL, nil, systray.Actions{
			SendKey: func(key string) int {
				result, err := agent.Invoke(ctx, "tray", key)
				if err != nil {
					return 0
				}
				return result
			},
		})

		go func() {
			select {
			case <-ctx.Done():
				tray.Stop()
			case <-tray.WaitForQuit():
				cancel()
			}
		}()

		slog.Info("autolib started", "web", webURL, "tray", true)
		tray.Run()
		cancel()
	} else {
		slog.Info("autolib started", "web", webURL)
		<-ctx.Done()
	}

	if !cfg.Web.Enabled {
		return nil
	}

	select {
	case err := <-errCh:
		return err
	case <-time.After(10 * time.Second):
		return fmt.Errorf("web server did not stop")
	}
}

func printHistory(out io.Writer, agent *Agent, limit int) error {
	if agent.db == nil {
		return fmt.Errorf("storage is disabled in %s", agent.cfg.Path())
	}

	invocations, err := agent.db.GetInvocations(limit, 0)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tKEY\tSOURCE\tRESULT\tLATENCY\tERROR")
	for _, inv := range invocations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dms\t%s\n",
			inv.Timestamp.Local().Format(time.DateTime), inv.Key, inv.Source,
			inv.Result, inv.LatencyMs, inv.ErrorMessage)
	}
	return w.Flush()
}
