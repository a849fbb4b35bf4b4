package models

type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
	ThemeAuto  ThemeMode = "auto"
)

// Settings are the app preferences persisted under the preferences slot.
type Settings struct {
	Theme         ThemeMode `json:"theme" validate:"oneof=light dark auto"`
	Notifications bool      `json:"notifications"`
	Language      string    `json:"language" validate:"required,min=2,max=8"`
}

func DefaultSettings() Settings {
	return Settings{Theme: ThemeAuto, Notifications: true, Language: "en"}
}

// SettingsPatch changes only the non-nil fields.
type SettingsPatch struct {
	Theme         *ThemeMode
	Notifications *bool
	Language      *string
}

func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	return s
}
