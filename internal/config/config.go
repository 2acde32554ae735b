// Package config loads and validates the YAML automation configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultTimeoutMs = 10000

// Config is the top-level representation of a configuration file.
// It is built once at load time and never mutated afterwards.
type Config struct {
	// SourcePath is the absolute path of the file the config came from.
	SourcePath string

	// Profile holds reusable keyed data available to every job's templates.
	Profile map[string]any

	// Browser controls how the browser is launched.
	Browser BrowserConfig

	// Jobs run in the order they appear in the file.
	Jobs []JobConfig
}

// BaseDir returns the directory containing the configuration file.
// Relative paths in templates resolve against it.
func (c *Config) BaseDir() string {
	return filepath.Dir(c.SourcePath)
}

// BrowserConfig holds browser launch settings.
type BrowserConfig struct {
	Headless  bool
	SlowMo    *int // milliseconds between driver operations, nil = none
	TimeoutMs int  // navigation/element-wait timeout, default 10000
	Locale    string
}

// JobConfig describes one automation flow against a single URL.
type JobConfig struct {
	Name  string
	URL   string
	Steps []StepConfig

	// Metadata captures every job-level key besides name/url/steps.
	// It is forwarded opaquely to the rendering context.
	Metadata map[string]any
}

// StepConfig is a single automation instruction inside a job.
type StepConfig struct {
	Action string

	// Options captures every step-level key besides action.
	Options map[string]any
}

// Load reads a YAML configuration file into a Config.
// Environment variables referenced as ${VAR} in the file are expanded
// before parsing.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := loadBytes(data)
	if err != nil {
		return nil, err
	}
	cfg.SourcePath = abs
	return cfg, nil
}

// loadBytes parses config bytes after environment expansion.
func loadBytes(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("configuration root must be a mapping: %w", err)
	}

	profile, err := parseProfile(raw["profile"])
	if err != nil {
		return nil, err
	}

	browser, err := parseBrowser(raw["browser"])
	if err != nil {
		return nil, err
	}

	jobs, err := parseJobs(raw["jobs"])
	if err != nil {
		return nil, err
	}

	return &Config{
		Profile: profile,
		Browser: browser,
		Jobs:    jobs,
	}, nil
}

func parseProfile(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	profile, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("'profile' must be a mapping of reusable data")
	}
	return profile, nil
}

func parseBrowser(v any) (BrowserConfig, error) {
	cfg := BrowserConfig{
		Headless:  true,
		TimeoutMs: defaultTimeoutMs,
	}
	if v == nil {
		return cfg, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return cfg, fmt.Errorf("'browser' must be a mapping")
	}

	if h, ok := m["headless"]; ok {
		b, ok := h.(bool)
		if !ok {
			return cfg, fmt.Errorf("browser 'headless' must be a boolean")
		}
		cfg.Headless = b
	}
	if s, ok := m["slow_mo"]; ok && s != nil {
		n, err := asInt(s)
		if err != nil {
			return cfg, fmt.Errorf("browser 'slow_mo': %w", err)
		}
		cfg.SlowMo = &n
	}
	if t, ok := m["timeout_ms"]; ok && t != nil {
		n, err := asInt(t)
		if err != nil {
			return cfg, fmt.Errorf("browser 'timeout_ms': %w", err)
		}
		cfg.TimeoutMs = n
	}
	if l, ok := m["locale"]; ok && l != nil {
		cfg.Locale = fmt.Sprintf("%v", l)
	}
	return cfg, nil
}

func parseJobs(v any) ([]JobConfig, error) {
	if v == nil {
		return nil, fmt.Errorf("no jobs defined in configuration")
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("'jobs' must be a list of job definitions")
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no jobs defined in configuration")
	}

	jobs := make([]JobConfig, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("job %d must be a mapping", i+1)
		}
		job, err := parseJob(m)
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func parseJob(m map[string]any) (JobConfig, error) {
	rawURL, ok := m["url"]
	if !ok || rawURL == nil {
		return JobConfig{}, fmt.Errorf("each job requires a 'url'")
	}
	url := fmt.Sprintf("%v", rawURL)

	name := url
	if n, ok := m["name"]; ok && n != nil {
		if s := fmt.Sprintf("%v", n); s != "" {
			name = s
		}
	}

	var steps []StepConfig
	if rawSteps, ok := m["steps"]; ok && rawSteps != nil {
		list, ok := rawSteps.([]any)
		if !ok {
			return JobConfig{}, fmt.Errorf("job 'steps' must be a list of step definitions")
		}
		steps = make([]StepConfig, 0, len(list))
		for i, item := range list {
			sm, ok := item.(map[string]any)
			if !ok {
				return JobConfig{}, fmt.Errorf("step %d must be a mapping", i+1)
			}
			step, err := parseStep(sm)
			if err != nil {
				return JobConfig{}, fmt.Errorf("step %d: %w", i+1, err)
			}
			steps = append(steps, step)
		}
	}

	metadata := map[string]any{}
	for k, v := range m {
		switch k {
		case "name", "url", "steps":
		default:
			metadata[k] = v
		}
	}

	return JobConfig{Name: name, URL: url, Steps: steps, Metadata: metadata}, nil
}

func parseStep(m map[string]any) (StepConfig, error) {
	rawAction, ok := m["action"]
	if !ok || rawAction == nil {
		return StepConfig{}, fmt.Errorf("every step must define an 'action' field")
	}
	action := fmt.Sprintf("%v", rawAction)
	if action == "" {
		return StepConfig{}, fmt.Errorf("every step must define an 'action' field")
	}

	options := map[string]any{}
	for k, v := range m {
		if k != "action" {
			options[k] = v
		}
	}
	return StepConfig{Action: action, Options: options}, nil
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
