// Package browser hands article URLs to the system browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Validate accepts only absolute http and https URLs.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without a host: %q", rawURL)
	}
	return nil
}

// Command returns the command that opens rawURL in the system browser.
func Command(rawURL string) (*exec.Cmd, error) {
	if err := Validate(rawURL); err != nil {
		return nil, err
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "windows":
		// rundll32 avoids cmd.exe interpreting the URL.
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	default:
		return exec.Command("xdg-open", rawURL), nil
	}
}

// Open starts the system browser on rawURL without waiting for it.
func Open(rawURL string) error {
	cmd, err := Command(rawURL)
	if err != nil {
		return err
	}
	_, err = start(cmd)
	return err
}

// start runs cmd in the background and reaps it once it exits. The returned
// channel receives the exit error.
func start(cmd *exec.Cmd) (<-chan error, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	return done, nil
}
