package platform

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// systemClipboard implements Clipboard on top of the OS clipboard
type systemClipboard struct{}

// NewClipboard creates a clipboard bound to the system clipboard
func NewClipboard() Clipboard {
	return &systemClipboard{}
}

// Get retrieves text from the clipboard
func (c *systemClipboard) Get() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}

// Set sets text to the clipboard
func (c *systemClipboard) Set(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}
