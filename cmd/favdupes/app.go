package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"favdupes/pkg/auth"
	"favdupes/pkg/errors"
	"favdupes/pkg/favorites"
)

// credentials resolves --profile, then config/env secrets, then the default profile
func (a *app) credentials() (*auth.Credentials, error) {
	fallback := auth.FromConfig(a.cfg.Twitter)

	manager, err := a.newManager()
	if err != nil {
		// no backends, config credentials are all there is
		a.log.WithError(err).Warn("credential store unavailable")
		if a.profile == "" && a.cfg.HasCredentials() {
			return fallback, nil
		}
		return nil, fmt.Errorf("%w: %w", errors.ErrMissingCredentials, err)
	}

	creds, err := manager.Resolve(a.profile, fallback)
	if err != nil {
		if stderrors.Is(err, auth.ErrCredentialsNotFound) {
			return nil, fmt.Errorf("%w: %w", errors.ErrMissingCredentials, err)
		}
		return nil, err
	}

	a.log.DebugWithFields("resolved credentials", map[string]interface{}{
		"profile": creds.Profile,
	})
	return creds, nil
}

// service builds a logged-in favorites service
func (a *app) service(cmd *cobra.Command) (*favorites.Service, error) {
	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}

	svc := favorites.NewFromConfig(a.cfg, creds, a.log)
	user, err := svc.Login(cmd.Context())
	if err != nil {
		return nil, err
	}
	a.term.PrintInfo("Logged in as", "@"+user.ScreenName)
	return svc, nil
}

// prompter reads answers from the command input, hiding secrets on a terminal
type prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, out: out, reader: bufio.NewReader(in)}
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	input, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func (p *prompter) secret(prompt string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return p.line(prompt)
}
