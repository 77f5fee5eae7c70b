package frontier

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// Authenticator performs the interactive, redirect-based authorization step.
// Implementations present authURL to the user and return the callback URL
// (of the form <callbackScheme>://auth?code=...&state=...) once the user
// completes the browser flow. The call may block for a human-timescale
// duration; it must honour ctx cancellation.
type Authenticator interface {
	Authenticate(ctx context.Context, authURL, callbackScheme string) (string, error)
}

// BrowserAuthenticator opens the authorization URL in the system browser and
// reads the resulting callback URL pasted into the terminal. The private
// redirect scheme lands in no local server, so the user relays it by hand.
type BrowserAuthenticator struct {
	In  io.Reader
	Out io.Writer
}

func (a *BrowserAuthenticator) Authenticate(ctx context.Context, authURL, callbackScheme string) (string, error) {
	fmt.Fprintf(a.Out, "Opening browser for Frontier login...\n%s\n", authURL)
	if err := OpenBrowser(authURL); err != nil {
		fmt.Fprintf(a.Out, "Could not open a browser, visit the URL above manually.\n")
	}
	fmt.Fprintf(a.Out, "Paste the %s:// callback URL here once the login completes: ", callbackScheme)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(a.In).ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("failed to read callback URL: %w", r.err)
		}
		return r.line, nil
	}
}

// OpenBrowser opens the specified URL in the default web browser.
// It supports Linux, macOS, and Windows.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	// Don't wait for the browser process, it outlives the flow
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
