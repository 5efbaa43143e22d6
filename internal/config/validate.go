package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
)

// tokenPattern is the bot token shape: numeric id, colon, secret.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the structural validity of a Config. It verifies the
// token shape, the base URL, log settings, and announcement entries, and
// returns all problems joined rather than stopping at the first.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.API.Token == "" {
		errs = append(errs, errors.New("config: api.token is required"))
	} else if !tokenPattern.MatchString(cfg.API.Token) {
		errs = append(errs, errors.New("config: api.token does not look like a bot token (want <id>:<secret>)"))
	}

	if u, err := url.Parse(cfg.API.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("config: api.base_url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("config: api.base_url: unsupported scheme %q", u.Scheme))
	}

	if !slices.Contains(logLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Errorf("config: log.level: unknown level %q", cfg.Log.Level))
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("config: log.format: unknown format %q", cfg.Log.Format))
	}

	errs = append(errs, validateAnnouncements(cfg.Announcements)...)

	return errors.Join(errs...)
}

func validateAnnouncements(announcements []AnnouncementConfig) []error {
	var errs []error
	seen := make(map[string]struct{})

	for i, a := range announcements {
		if a.Schedule == "" {
			errs = append(errs, fmt.Errorf("config: announcements[%d]: schedule is required", i))
		}
		if a.ChatID == 0 {
			errs = append(errs, fmt.Errorf("config: announcements[%d]: chat_id is required", i))
		}
		if a.Text == "" {
			errs = append(errs, fmt.Errorf("config: announcements[%d]: text is required", i))
		}
		if a.Name != "" {
			if _, dup := seen[a.Name]; dup {
				errs = append(errs, fmt.Errorf("config: announcements[%d]: duplicate name %q", i, a.Name))
			}
			seen[a.Name] = struct{}{}
		}
	}
	return errs
}
