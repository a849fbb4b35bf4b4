package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/starterkit/internal/common"
)

// Input seams, replaced in tests.
var (
	promptLine   = readLine
	promptSecret = readSecret
	promptBody   = readBody
)

func (a *App) ask(prompt string) (string, error) {
	return promptLine(a.reader, a.out, prompt)
}

// askPassword reads a password without echo. The returned string is a copy;
// the raw bytes are wiped.
func (a *App) askPassword(prompt string) (string, error) {
	pw, err := promptSecret(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register prompts for name, email and password, creates the account and
// signs in.
func (a *App) Register(ctx context.Context) error {
	name, err := a.ask("Enter name")
	if err != nil {
		return err
	}
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	password, err := a.askPassword("Password")
	if err != nil {
		return err
	}

	user, err := a.auth.SignUp(ctx, name, email, password)
	if err != nil {
		return err
	}
	a.printf("Welcome, %s!\n", user.Name)
	return nil
}

// Login prompts for credentials and stores the new session.
func (a *App) Login(ctx context.Context) error {
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	password, err := a.askPassword("Password")
	if err != nil {
		return err
	}

	user, err := a.auth.SignIn(ctx, email, password)
	if err != nil {
		a.logger.Info(ctx, "login unsuccessful", "email", email, "error", err)
		return err
	}
	a.printf("Signed in as %s\n", user.Name)
	return nil
}

// Logout always ends the local session, even when the server is unreachable.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		return err
	}
	a.printf("Signed out\n")
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	msg, err := a.auth.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	a.printf("%s\n", orDefault(msg, "If the account exists, a reset token has been sent."))
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	token, err := a.ask("Enter reset token")
	if err != nil {
		return err
	}
	password, err := a.askPassword("New password")
	if err != nil {
		return err
	}
	msg, err := a.auth.ResetPassword(ctx, token, password)
	if err != nil {
		return err
	}
	a.printf("%s\n", orDefault(msg, "Password updated. You can now log in."))
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func usageError(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}
