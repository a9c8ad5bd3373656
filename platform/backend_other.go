//go:build !windows && !darwin

package platform

// NewBackend returns nil: this platform has no synthetic input backend, so
// injection through NewInjector(NewBackend(...)) succeeds without doing
// anything.
func NewBackend(opts Options) Backend {
	return nil
}
