package systray

import (
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/getlantern/systray"
)

// menuCloseDelay lets focus return to the previous window before a chord is sent
const menuCloseDelay = 300 * time.Millisecond

// Actions are the callbacks behind the tray menu items
type Actions struct {
	SendKey func(key string) int
}

// SystrayManager manages the system tray icon and menu
type SystrayManager struct {
	webURL   string
	iconData []byte
	actions  Actions
	quit     chan struct{}
}

// NewSystrayManager creates a new systray manager. webURL may be empty when
// the web UI is disabled.
func NewSystrayManager(webURL string, iconData []byte, actions Actions) *SystrayManager {
	return &SystrayManager{
		webURL:   webURL,
		iconData: iconData,
		actions:  actions,
		quit:     make(chan struct{}),
	}
}

// Run starts the system tray (blocking call, must run on the main goroutine)
func (m *SystrayManager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray
func (m *SystrayManager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel that will be closed when user clicks Quit
func (m *SystrayManager) WaitForQuit() <-chan struct{} {
	return m.quit
}

// onReady is called when the systray is ready
func (m *SystrayManager) onReady() {
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}

	systray.SetTitle("autolib")
	systray.SetTooltip("autolib - copy/paste injection")

	mCopy := systray.AddMenuItem("Send Copy", "Send the copy shortcut to the focused window")
	mPaste := systray.AddMenuItem("Send Paste", "Send the paste shortcut to the focused window")
	systray.AddSeparator()

	mOpenWebUI := systray.AddMenuItem("Open Web UI", "Open the autolib web dashboard")
	if m.webURL == "" {
		mOpenWebUI.Disable()
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit autolib")

	// Handle menu clicks
	go func() {
		for {
			select {
			case <-mCopy.ClickedCh:
				m.sendKey("C")
			case <-mPaste.ClickedCh:
				m.sendKey("V")
			case <-mOpenWebUI.ClickedCh:
				m.openWebUI()
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				close(m.quit)
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the systray is exiting
func (m *SystrayManager) onExit() {
	slog.Info("System tray exited")
}

func (m *SystrayManager) sendKey(key string) {
	if m.actions.SendKey == nil {
		return
	}
	time.Sleep(menuCloseDelay)
	if m.actions.SendKey(key) != 1 {
		slog.Warn("Tray key injection failed", "key", key)
	}
}

// openWebUI opens the web UI in the default browser
func (m *SystrayManager) openWebUI() {
	slog.Info("Opening web UI", "url", m.webURL)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", m.webURL)
	case "darwin":
		cmd = exec.Command("open", m.webURL)
	case "linux":
		cmd = exec.Command("xdg-open", m.webURL)
	default:
		slog.Error("Unsupported platform for opening browser", "platform", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to open web UI", "error", err)
	}
}
