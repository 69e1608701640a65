package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"festsched/internal/model"
	"festsched/internal/rules"
)

// Environment overrides. A .env file in the working directory is read
// first; real environment variables win over it.
const (
	EnvListen        = "FESTSCHED_LISTEN"
	EnvTimezone      = "FESTSCHED_TIMEZONE"
	EnvProgram       = "FESTSCHED_PROGRAM"
	EnvRefresh       = "FESTSCHED_REFRESH"
	EnvAudience      = "FESTSCHED_TARGET_AUDIENCE"
	EnvBasicAuthUser = "FESTSCHED_BASIC_AUTH_USER"
	EnvBasicAuthPass = "FESTSCHED_BASIC_AUTH_PASSWORD"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// PolicyConfig overrides the program-committee defaults. Zero values keep
// the default.
type PolicyConfig struct {
	BufferMinutes         int     `yaml:"buffer_minutes,omitempty" json:"buffer_minutes,omitempty"`
	MaxWorkshopMinutes    int     `yaml:"max_workshop_minutes,omitempty" json:"max_workshop_minutes,omitempty"`
	MinBreakMinutes       int     `yaml:"min_break_minutes,omitempty" json:"min_break_minutes,omitempty"`
	BeginnerRatioFloor    float64 `yaml:"beginner_ratio_floor,omitempty" json:"beginner_ratio_floor,omitempty"`
	AdvancedRatioCeiling  float64 `yaml:"advanced_ratio_ceiling,omitempty" json:"advanced_ratio_ceiling,omitempty"`
	MaxCapacityMultiplier float64 `yaml:"max_capacity_multiplier,omitempty" json:"max_capacity_multiplier,omitempty"`
	// PeakStart / PeakEnd are local "HH:MM" clock times.
	PeakStart string `yaml:"peak_start,omitempty" json:"peak_start,omitempty"`
	PeakEnd   string `yaml:"peak_end,omitempty" json:"peak_end,omitempty"`
	// NightEnd is the latest end clock a program slot may roll over
	// midnight to.
	NightEnd string `yaml:"night_end,omitempty" json:"night_end,omitempty"`
}

// ResourcesConfig is the default resource pool used when a request does
// not bring its own.
type ResourcesConfig struct {
	Instructors []string `yaml:"instructors,omitempty" json:"instructors,omitempty"`
	Equipment   []string `yaml:"equipment,omitempty" json:"equipment,omitempty"`
	Venues      []string `yaml:"venues,omitempty" json:"venues,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone of the festival (e.g. "Europe/Berlin").
	// Program clock times and peak hours are interpreted in it.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a standard 5-field cron spec for reloading the program
	// file. Empty disables reloading.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ProgramPath points at the YAML program file.
	ProgramPath string `yaml:"program" json:"program"`

	// Days optionally pins the festival days (YYYY-MM-DD). When empty the
	// days declared in the program file are used.
	Days []string `yaml:"days,omitempty" json:"days,omitempty"`

	// TargetAudience drives difficulty-progression advice.
	TargetAudience string `yaml:"target_audience" json:"target_audience"`

	Rules     PolicyConfig    `yaml:"policy" json:"policy"`
	Resources ResourcesConfig `yaml:"resources,omitempty" json:"resources,omitempty"`

	// Labels maps neutral keys (titles, area ids, person names) to display
	// text for exports.
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		Timezone:       "Europe/Berlin",
		RefreshCron:    "*/5 * * * *",
		ProgramPath:    "program.yaml",
		TargetAudience: string(model.DifficultyAllLevels),
		Rules: PolicyConfig{
			PeakStart: "10:00",
			PeakEnd:   "22:00",
			NightEnd:  "06:00",
		},
		Labels: map[string]string{},
	}
}

// Normalize fills in missing values so partially written configs still
// behave.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.ProgramPath == "" {
		c.ProgramPath = d.ProgramPath
	}
	if c.TargetAudience == "" {
		c.TargetAudience = d.TargetAudience
	}
	if c.Rules.PeakStart == "" {
		c.Rules.PeakStart = d.Rules.PeakStart
	}
	if c.Rules.PeakEnd == "" {
		c.Rules.PeakEnd = d.Rules.PeakEnd
	}
	if c.Rules.NightEnd == "" {
		c.Rules.NightEnd = d.Rules.NightEnd
	}
	if c.Labels == nil {
		c.Labels = map[string]string{}
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	const op = "config.Validate"

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%s: timezone %q: %w", op, c.Timezone, err)
	}
	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("%s: refresh %q: %w", op, c.RefreshCron, err)
		}
	}
	if _, err := model.ParseDifficulty(c.TargetAudience); err != nil {
		return fmt.Errorf("%s: target_audience: %w", op, err)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy builds the immutable scheduling policy described by the config.
func (c *Config) Policy() (rules.Policy, error) {
	const op = "config.Policy"

	p := rules.DefaultPolicy()

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return rules.Policy{}, fmt.Errorf("%s: timezone %q: %w", op, c.Timezone, err)
	}
	p.Location = loc

	for _, s := range c.Days {
		day, err := p.ParseDay(s)
		if err != nil {
			return rules.Policy{}, fmt.Errorf("%s: day %q: %w", op, s, err)
		}
		p.Days = append(p.Days, day)
	}

	if c.TargetAudience != "" {
		aud, err := model.ParseDifficulty(c.TargetAudience)
		if err != nil {
			return rules.Policy{}, fmt.Errorf("%s: %w", op, err)
		}
		p.TargetAudience = aud
	}

	pc := c.Rules
	if pc.BufferMinutes > 0 {
		p.BufferTime = time.Duration(pc.BufferMinutes) * time.Minute
	}
	if pc.MaxWorkshopMinutes > 0 {
		p.MaxWorkshopDuration = time.Duration(pc.MaxWorkshopMinutes) * time.Minute
	}
	if pc.MinBreakMinutes > 0 {
		p.MinBreak = time.Duration(pc.MinBreakMinutes) * time.Minute
	}
	if pc.BeginnerRatioFloor > 0 {
		p.BeginnerRatioFloor = pc.BeginnerRatioFloor
	}
	if pc.AdvancedRatioCeiling > 0 {
		p.AdvancedRatioCeiling = pc.AdvancedRatioCeiling
	}
	if pc.MaxCapacityMultiplier > 0 {
		p.MaxCapacityMultiplier = pc.MaxCapacityMultiplier
	}
	if pc.PeakStart != "" {
		m, err := clockMinute(pc.PeakStart)
		if err != nil {
			return rules.Policy{}, fmt.Errorf("%s: peak_start: %w", op, err)
		}
		p.PeakStartMinute = m
	}
	if pc.PeakEnd != "" {
		m, err := clockMinute(pc.PeakEnd)
		if err != nil {
			return rules.Policy{}, fmt.Errorf("%s: peak_end: %w", op, err)
		}
		p.PeakEndMinute = m
	}
	if pc.NightEnd != "" {
		m, err := clockMinute(pc.NightEnd)
		if err != nil {
			return rules.Policy{}, fmt.Errorf("%s: night_end: %w", op, err)
		}
		p.NightEndMinute = m
	}
	if p.PeakEndMinute <= p.PeakStartMinute {
		return rules.Policy{}, fmt.Errorf("%s: peak window %s-%s is empty", op, pc.PeakStart, pc.PeakEnd)
	}

	return p, nil
}

// ResourcePool converts the configured default pool.
func (c *Config) ResourcePool() rules.Resources {
	return rules.Resources{
		Instructors: c.Resources.Instructors,
		Equipment:   c.Resources.Equipment,
		Venues:      c.Resources.Venues,
	}
}

func clockMinute(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// applyEnv overlays FESTSCHED_* variables. Overrides are never written
// back by Save.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvProgram); v != "" {
		c.ProgramPath = v
	}
	if v, ok := os.LookupEnv(EnvRefresh); ok {
		c.RefreshCron = strings.TrimSpace(v)
	}
	if v := os.Getenv(EnvAudience); v != "" {
		c.TargetAudience = v
	}
	user, pass := os.Getenv(EnvBasicAuthUser), os.Getenv(EnvBasicAuthPass)
	if user != "" || pass != "" {
		c.BasicAuth = &BasicAuthConfig{Username: user, Password: pass}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is decoded and normalized.
//
// In both cases .env and FESTSCHED_* overrides are applied afterwards and
// the result is validated.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if path == "" {
		return nil, fmt.Errorf("%s: config path is empty", op)
	}

	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		// First run: create default config file.
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", op, err)
		}
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	cfg.Normalize()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file + rename, creating
// the parent directory (0700) and leaving the file at 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".festsched-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
