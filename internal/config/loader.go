package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names understood by Load.
const (
	EnvHTTPPort               = "CALENDAR_HTTP_PORT"
	EnvSQLiteDSN              = "CALENDAR_SQLITE_DSN"
	EnvTimezone               = "CALENDAR_TIMEZONE"
	EnvReschedulePolicy       = "CALENDAR_RESCHEDULE_POLICY"
	EnvSnoozeDuration         = "CALENDAR_SNOOZE_DURATION"
	EnvNotificationPermission = "CALENDAR_NOTIFICATION_PERMISSION"
	EnvNotificationRetention  = "CALENDAR_NOTIFICATION_RETENTION"
	EnvPruneSchedule          = "CALENDAR_PRUNE_SCHEDULE"
	EnvBasicAuthUser          = "CALENDAR_BASIC_AUTH_USER"
	EnvBasicAuthHash          = "CALENDAR_BASIC_AUTH_HASH"
	EnvConfigFile             = "CALENDAR_CONFIG_FILE"
)

// Config captures configuration values for the calendar service.
type Config struct {
	HTTPPort int
	// SQLiteDSN selects the SQLite store. Empty means the in-memory store.
	SQLiteDSN              string
	Timezone               string
	Location               *time.Location
	ReschedulePolicy       string
	SnoozeDuration         time.Duration
	NotificationPermission string
	// NotificationRetention of zero keeps fired notifications forever.
	NotificationRetention time.Duration
	PruneSchedule         string
	BasicAuthUser         string
	BasicAuthHash         string
}

// BasicAuthEnabled reports whether requests must carry credentials.
func (c Config) BasicAuthEnabled() bool {
	return c.BasicAuthUser != ""
}

// fileConfig is the YAML shape of CALENDAR_CONFIG_FILE.
type fileConfig struct {
	HTTPPort               string `yaml:"http_port"`
	SQLiteDSN              string `yaml:"sqlite_dsn"`
	Timezone               string `yaml:"timezone"`
	ReschedulePolicy       string `yaml:"reschedule_policy"`
	SnoozeDuration         string `yaml:"snooze_duration"`
	NotificationPermission string `yaml:"notification_permission"`
	NotificationRetention  string `yaml:"notification_retention"`
	PruneSchedule          string `yaml:"prune_schedule"`
	BasicAuth              struct {
		Username     string `yaml:"username"`
		PasswordHash string `yaml:"password_hash"`
	} `yaml:"basic_auth"`
}

func (f fileConfig) values() map[string]string {
	return map[string]string{
		EnvHTTPPort:               f.HTTPPort,
		EnvSQLiteDSN:              f.SQLiteDSN,
		EnvTimezone:               f.Timezone,
		EnvReschedulePolicy:       f.ReschedulePolicy,
		EnvSnoozeDuration:         f.SnoozeDuration,
		EnvNotificationPermission: f.NotificationPermission,
		EnvNotificationRetention:  f.NotificationRetention,
		EnvPruneSchedule:          f.PruneSchedule,
		EnvBasicAuthUser:          f.BasicAuth.Username,
		EnvBasicAuthHash:          f.BasicAuth.PasswordHash,
	}
}

// Load parses configuration values from the current process environment.
//
// When CALENDAR_CONFIG_FILE names a YAML file, its values are applied first
// and the environment overrides them. Defaults fill whatever neither sets.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:               8080,
		Timezone:               "Local",
		Location:               time.Local,
		ReschedulePolicy:       "duplicate",
		SnoozeDuration:         5 * time.Minute,
		NotificationPermission: "default",
		PruneSchedule:          "@hourly",
	}

	raw, err := readFile(strings.TrimSpace(os.Getenv(EnvConfigFile)))
	if err != nil {
		return Config{}, err
	}
	for key := range raw {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			raw[key] = value
		}
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := raw[EnvHTTPPort]; portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, EnvHTTPPort)
		} else {
			cfg.HTTPPort = port
		}
	}

	cfg.SQLiteDSN = raw[EnvSQLiteDSN]

	if tz := raw[EnvTimezone]; tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			invalid = append(invalid, EnvTimezone)
		} else {
			cfg.Timezone = tz
			cfg.Location = loc
		}
	}

	if policy := strings.ToLower(raw[EnvReschedulePolicy]); policy != "" {
		if policy != "replace" && policy != "duplicate" {
			invalid = append(invalid, EnvReschedulePolicy)
		} else {
			cfg.ReschedulePolicy = policy
		}
	}

	if value := raw[EnvSnoozeDuration]; value != "" {
		snooze, err := time.ParseDuration(value)
		if err != nil || snooze <= 0 {
			invalid = append(invalid, EnvSnoozeDuration)
		} else {
			cfg.SnoozeDuration = snooze
		}
	}

	if permission := strings.ToLower(raw[EnvNotificationPermission]); permission != "" {
		switch permission {
		case "default", "granted", "denied":
			cfg.NotificationPermission = permission
		default:
			invalid = append(invalid, EnvNotificationPermission)
		}
	}

	if value := raw[EnvNotificationRetention]; value != "" {
		retention, err := time.ParseDuration(value)
		if err != nil || retention < 0 {
			invalid = append(invalid, EnvNotificationRetention)
		} else {
			cfg.NotificationRetention = retention
		}
	}

	if schedule := raw[EnvPruneSchedule]; schedule != "" {
		cfg.PruneSchedule = schedule
	}

	cfg.BasicAuthUser = raw[EnvBasicAuthUser]
	cfg.BasicAuthHash = raw[EnvBasicAuthHash]
	switch {
	case cfg.BasicAuthUser != "" && cfg.BasicAuthHash == "":
		missing = append(missing, EnvBasicAuthHash)
	case cfg.BasicAuthUser == "" && cfg.BasicAuthHash != "":
		missing = append(missing, EnvBasicAuthUser)
	case cfg.BasicAuthHash != "" && !strings.HasPrefix(cfg.BasicAuthHash, "$argon2id$"):
		invalid = append(invalid, EnvBasicAuthHash)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configuration values: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func readFile(path string) (map[string]string, error) {
	var file fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	values := file.values()
	for key, value := range values {
		values[key] = strings.TrimSpace(value)
	}
	return values, nil
}
