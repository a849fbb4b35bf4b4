package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if u := a.currentUser(); u != nil {
		return fmt.Sprintf("(%s)", u.Name)
	}
	return "(guest)"
}

// Root greets the user, restores a stored session and runs the REPL on
// the app's input.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to the starterkit CLI (type 'help' for commands)")

	a.onboard(ctx)

	user, err := a.auth.CheckAuth(ctx)
	switch {
	case err != nil:
		a.logger.Error(ctx, "session check failed", "error", err)
	case user != nil:
		printlnFn(fmt.Sprintf("Signed in as %s <%s>", user.Name, user.Email))
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) onboard(ctx context.Context) {
	done, err := a.settings.OnboardingComplete(ctx)
	if err != nil {
		a.logger.Warn(ctx, "failed to read onboarding flag", "error", err)
		return
	}
	if done {
		return
	}

	printlnFn("First run: 'register' creates an account, 'login' signs in, 'posts' lists the feed.")
	if err := a.settings.CompleteOnboarding(ctx); err != nil {
		a.logger.Warn(ctx, "failed to store onboarding flag", "error", err)
	}
}
