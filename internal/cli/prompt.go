package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// promptLine prints prompt and reads a single trimmed line.
func (a *App) promptLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(a.out, prompt+": "); err != nil {
		return "", err
	}
	line, err := a.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when stdin is a terminal, otherwise a plain line.
func (a *App) promptPassword() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
		if _, err := fmt.Fprint(a.out, "Password: "); err != nil {
			return "", err
		}
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	line, err := a.promptLine("Password")
	if err != nil {
		return "", err
	}
	return line, nil
}

// valueOrPrompt returns v, or asks for it when empty.
func (a *App) valueOrPrompt(v, prompt string) (string, error) {
	if v = strings.TrimSpace(v); v != "" {
		return v, nil
	}
	return a.promptLine(prompt)
}
