package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/starterkit/internal/client/api"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Me(ctx context.Context) error
	EditProfile(ctx context.Context) error
	UploadAvatar(ctx context.Context, args []string) error
	DeleteAccount(ctx context.Context) error
	ShowUser(ctx context.Context, args []string) error
	ListPosts(ctx context.Context, args []string) error
	ShowPost(ctx context.Context, args []string) error
	NewPost(ctx context.Context) error
	EditPost(ctx context.Context, args []string) error
	DeletePost(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Settings(ctx context.Context, args []string) error
	SetTheme(ctx context.Context, args []string) error
}

const (
	guestHelp = "Available commands: register, login, forgot, reset, posts, post, search, user, settings, theme, exit"
	userHelp  = "Available commands: me, profile, avatar, posts, post, newpost, editpost, delpost, search, user, " +
		"settings, theme, deleteaccount, logout, exit"
)

// requiresLogin lists commands that make no sense without a session.
var requiresLogin = map[string]bool{
	"me": true, "profile": true, "avatar": true, "newpost": true, "editpost": true,
	"delpost": true, "deleteaccount": true, "logout": true,
}

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from reader, parses the first token as the command and the
// rest as its arguments, and dispatches to methods on 'a'. The loop exits on
// EOF or when the user types "exit" or "quit".
//
// Errors returned by handlers are printed; when one of them leaves the user
// signed out (a rejected refresh clears the stored session) the user is told so.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sk %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if requiresLogin[cmd] && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "forgot":
			cmdErr = a.ForgotPassword(ctx)
		case "reset":
			cmdErr = a.ResetPassword(ctx)

		case "me":
			cmdErr = a.Me(ctx)
		case "profile":
			cmdErr = a.EditProfile(ctx)
		case "avatar":
			cmdErr = a.UploadAvatar(ctx, args)
		case "deleteaccount":
			cmdErr = a.DeleteAccount(ctx)
		case "user":
			cmdErr = a.ShowUser(ctx, args)

		case "posts":
			cmdErr = a.ListPosts(ctx, args)
		case "post":
			cmdErr = a.ShowPost(ctx, args)
		case "newpost":
			cmdErr = a.NewPost(ctx)
		case "editpost":
			cmdErr = a.EditPost(ctx, args)
		case "delpost":
			cmdErr = a.DeletePost(ctx, args)
		case "search":
			cmdErr = a.Search(ctx, args)

		case "settings":
			cmdErr = a.Settings(ctx, args)
		case "theme":
			cmdErr = a.SetTheme(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", formatError(cmdErr))
			if api.IsAuthError(cmdErr) && !a.isLoggedIn() && cmd != "login" {
				printlnFn("You are signed out. Use 'login' to sign in again.")
			}
		}
	}
}

// formatError renders an API error with its per-field messages.
func formatError(err error) string {
	e, ok := api.AsError(err)
	if !ok {
		return err.Error()
	}

	var b strings.Builder
	b.WriteString(e.Message)

	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", f, strings.Join(e.Errors[f], ", "))
	}
	return b.String()
}
