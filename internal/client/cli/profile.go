package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/starterkit/internal/client/api"
	"github.com/dmitrijs2005/starterkit/internal/client/models"
	"github.com/dmitrijs2005/starterkit/internal/filex"
)

const maxAvatarBytes = 5 << 20

// readUpload is a test seam for filex.ReadUpload.
var readUpload = filex.ReadUpload

func (a *App) printUser(u *models.User) {
	a.printf("ID:     %s\nName:   %s\nEmail:  %s\n", u.ID, u.Name, u.Email)
	if u.Bio != "" {
		a.printf("Bio:    %s\n", u.Bio)
	}
	if u.Avatar != "" {
		a.printf("Avatar: %s\n", u.Avatar)
	}
	if u.CreatedAt != "" {
		a.printf("Joined: %s\n", u.CreatedAt)
	}
}

// Me fetches the current profile. When the server cannot be reached the
// cached copy is shown instead.
func (a *App) Me(ctx context.Context) error {
	u, err := a.auth.RefreshAuth(ctx)
	if err != nil {
		if !api.IsNetworkError(err) {
			return err
		}
		if u = a.currentUser(); u == nil {
			return err
		}
		a.printf("(offline, showing cached profile)\n")
	}
	if u == nil {
		return nil
	}
	a.printUser(u)
	return nil
}

// EditProfile prompts for a new name and bio; empty answers keep the
// current values.
func (a *App) EditProfile(ctx context.Context) error {
	name, err := a.ask("New name (empty to keep)")
	if err != nil {
		return err
	}
	bio, err := a.ask("New bio (empty to keep)")
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if name != "" {
		req.Name = &name
	}
	if bio != "" {
		req.Bio = &bio
	}
	if req.Name == nil && req.Bio == nil {
		a.printf("Nothing to change\n")
		return nil
	}

	u, err := a.auth.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	a.printf("Profile updated\n")
	a.printUser(u)
	return nil
}

func (a *App) UploadAvatar(ctx context.Context, args []string) error {
	path := strings.Join(args, " ")
	if path == "" {
		var err error
		if path, err = a.ask("Path to image"); err != nil {
			return err
		}
	}
	if path == "" {
		return usageError("avatar <path>")
	}

	data, contentType, err := readUpload(path, maxAvatarBytes)
	if err != nil {
		return err
	}

	u, err := a.auth.UploadAvatar(ctx, filepath.Base(path), contentType, data)
	if err != nil {
		return err
	}
	if u != nil {
		a.printf("Avatar updated: %s\n", u.Avatar)
	}
	return nil
}

// DeleteAccount asks for confirmation, deletes the account and ends the
// local session.
func (a *App) DeleteAccount(ctx context.Context) error {
	answer, err := a.ask("Type 'delete' to permanently delete your account")
	if err != nil {
		return err
	}
	if answer != "delete" {
		a.printf("Cancelled\n")
		return nil
	}

	if err := a.users.DeleteAccount(ctx); err != nil {
		return err
	}
	if err := a.auth.SignOut(ctx); err != nil {
		return err
	}
	a.printf("Account deleted\n")
	return nil
}

// ShowUser prints another user's profile and first page of posts.
func (a *App) ShowUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("user <id>")
	}

	u, err := a.users.Get(ctx, args[0])
	if err != nil {
		return err
	}
	a.printUser(u)

	page, err := a.users.Posts(ctx, u.ID, models.PageParams{Page: 1})
	if err != nil {
		return err
	}
	a.printPage(page)
	return nil
}
