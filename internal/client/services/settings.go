package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/starterkit/internal/client/models"
	"github.com/dmitrijs2005/starterkit/internal/client/store"
	"github.com/dmitrijs2005/starterkit/internal/validatex"
)

var ErrInvalidSettings = errors.New("invalid settings")

// SettingsService reads and writes app preferences and the onboarding flag.
// They are kept across sign-outs.
type SettingsService interface {
	Load(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, patch models.SettingsPatch) (models.Settings, error)
	SetTheme(ctx context.Context, theme models.ThemeMode) (models.Settings, error)
	OnboardingComplete(ctx context.Context) (bool, error)
	CompleteOnboarding(ctx context.Context) error
}

type settingsService struct {
	store *store.Store
}

func NewSettingsService(st *store.Store) SettingsService {
	return &settingsService{store: st}
}

// Load returns the stored settings, or the defaults when none are stored.
func (s *settingsService) Load(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	found, err := s.store.Get(ctx, store.KeyPreferences, &settings)
	if err != nil {
		return models.Settings{}, err
	}
	if !found || validatex.Struct(settings) != nil {
		return models.DefaultSettings(), nil
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return models.Settings{}, err
	}

	next := current.Apply(patch)
	if fields := validatex.Struct(next); fields != nil {
		return current, fmt.Errorf("%w: %s", ErrInvalidSettings, describe(fields))
	}

	if err := s.store.Set(ctx, store.KeyPreferences, next); err != nil {
		return current, err
	}
	return next, nil
}

func (s *settingsService) SetTheme(ctx context.Context, theme models.ThemeMode) (models.Settings, error) {
	return s.Update(ctx, models.SettingsPatch{Theme: &theme})
}

func (s *settingsService) OnboardingComplete(ctx context.Context) (bool, error) {
	var done bool
	if _, err := s.store.Get(ctx, store.KeyOnboardingComplete, &done); err != nil {
		return false, err
	}
	return done, nil
}

func (s *settingsService) CompleteOnboarding(ctx context.Context) error {
	return s.store.Set(ctx, store.KeyOnboardingComplete, true)
}

func describe(fields map[string][]string) string {
	parts := make([]string, 0, len(fields))
	for name, msgs := range fields {
		parts = append(parts, name+" "+strings.Join(msgs, ", "))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
