package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/starterkit/internal/client/models"
)

func (a *App) printSettings(s models.Settings) {
	notify := "off"
	if s.Notifications {
		notify = "on"
	}
	a.printf("theme: %s\nnotifications: %s\nlanguage: %s\n", s.Theme, notify, s.Language)
}

// Settings shows the preferences, or changes one:
//
//	settings
//	settings notifications on|off
//	settings language <code>
func (a *App) Settings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s, err := a.settings.Load(ctx)
		if err != nil {
			return err
		}
		a.printSettings(s)
		return nil
	}
	if len(args) != 2 {
		return usageError("settings [notifications on|off | language <code>]")
	}

	var patch models.SettingsPatch
	switch args[0] {
	case "notifications":
		var on bool
		switch args[1] {
		case "on":
			on = true
		case "off":
		default:
			return fmt.Errorf("notifications must be on or off")
		}
		patch.Notifications = &on
	case "language":
		lang := args[1]
		patch.Language = &lang
	default:
		return usageError("settings [notifications on|off | language <code>]")
	}

	s, err := a.settings.Update(ctx, patch)
	if err != nil {
		return err
	}
	a.printSettings(s)
	return nil
}

// SetTheme: theme light|dark|auto.
func (a *App) SetTheme(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("theme light|dark|auto")
	}
	s, err := a.settings.SetTheme(ctx, models.ThemeMode(args[0]))
	if err != nil {
		return err
	}
	a.printf("Theme set to %s\n", s.Theme)
	return nil
}
