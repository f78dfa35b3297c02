package model

type Channels struct {
	Reminders bool `json:"reminders"`
	Calendar  bool `json:"calendar"`
	DailyTip  bool `json:"dailyTip"`
	Names     bool `json:"names"`
}

type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type Preferences struct {
	NotificationsEnabled bool       `json:"notificationsEnabled"`
	Channels             Channels   `json:"channels"`
	QuietHours           QuietHours `json:"quietHours"`
}

// DefaultPreferences enables every channel with quiet hours off.
func DefaultPreferences() Preferences {
	return Preferences{
		NotificationsEnabled: true,
		Channels: Channels{
			Reminders: true,
			Calendar:  true,
			DailyTip:  true,
			Names:     true,
		},
		QuietHours: QuietHours{Enabled: false, Start: "22:00", End: "07:00"},
	}
}
