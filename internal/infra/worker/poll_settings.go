package worker

import (
	"stocknews-notifier/internal/pkg/config"
	"stocknews-notifier/internal/usecase/schedule"
)

// EnvPollSettings re-reads POLL_INTERVAL_SECONDS and POLL_JITTER_SECONDS on
// every poll cycle. Invalid values yield the corresponding Fallback field.
type EnvPollSettings struct {
	Fallback schedule.PollSettings
}

// PollSettings implements schedule.SettingsProvider.
func (e EnvPollSettings) PollSettings() schedule.PollSettings {
	interval := config.LoadEnvInt("POLL_INTERVAL_SECONDS", e.Fallback.Interval, func(v int) error {
		return config.ValidateIntRange(v, 30, 86400)
	})
	jitter := config.LoadEnvInt("POLL_JITTER_SECONDS", e.Fallback.Jitter, func(v int) error {
		return config.ValidateIntRange(v, 0, 3600)
	})
	return schedule.PollSettings{
		Interval: interval.Value.(int),
		Jitter:   jitter.Value.(int),
	}
}
