package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBytes_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "root is a sequence",
			yaml:    "- not\n- a\n- mapping\n",
			wantErr: "configuration root must be a mapping",
		},
		{
			name:    "no jobs key",
			yaml:    "profile:\n  company: Acme\n",
			wantErr: "no jobs defined",
		},
		{
			name:    "empty job list",
			yaml:    "jobs: []\n",
			wantErr: "no jobs defined",
		},
		{
			name:    "jobs not a list",
			yaml:    "jobs:\n  url: https://example.com\n",
			wantErr: "'jobs' must be a list",
		},
		{
			name:    "profile not a mapping",
			yaml:    "profile: just-a-string\njobs:\n  - url: https://example.com\n",
			wantErr: "'profile' must be a mapping",
		},
		{
			name:    "job missing url",
			yaml:    "jobs:\n  - name: broken\n",
			wantErr: "requires a 'url'",
		},
		{
			name:    "steps not a list",
			yaml:    "jobs:\n  - url: https://example.com\n    steps: not-a-list\n",
			wantErr: "'steps' must be a list",
		},
		{
			name:    "step missing action",
			yaml:    "jobs:\n  - url: https://example.com\n    steps:\n      - selector: \"#name\"\n",
			wantErr: "must define an 'action'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBytes_Defaults(t *testing.T) {
	cfg, err := loadBytes([]byte("jobs:\n  - url: https://example.com\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10000, cfg.Browser.TimeoutMs)
	assert.Nil(t, cfg.Browser.SlowMo)
	assert.Empty(t, cfg.Browser.Locale)
	assert.Empty(t, cfg.Profile)

	require.Len(t, cfg.Jobs, 1)
	// Name falls back to the URL when absent.
	assert.Equal(t, "https://example.com", cfg.Jobs[0].Name)
	assert.Empty(t, cfg.Jobs[0].Steps)
}

func TestLoadBytes_FullDocument(t *testing.T) {
	doc := `
profile:
  company: Acme
  emails:
    - one@acme.test
    - two@acme.test
browser:
  headless: false
  slow_mo: 250
  timeout_ms: 5000
  locale: en-US
jobs:
  - name: apply
    url: https://example.com/apply
    department: engineering
    priority: 3
    steps:
      - action: fill
        selector: "#company"
        value: "{{ profile.company }}"
      - action: click
        selector: "#submit"
`
	cfg, err := loadBytes([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "Acme", cfg.Profile["company"])
	assert.False(t, cfg.Browser.Headless)
	require.NotNil(t, cfg.Browser.SlowMo)
	assert.Equal(t, 250, *cfg.Browser.SlowMo)
	assert.Equal(t, 5000, cfg.Browser.TimeoutMs)
	assert.Equal(t, "en-US", cfg.Browser.Locale)

	require.Len(t, cfg.Jobs, 1)
	job := cfg.Jobs[0]
	assert.Equal(t, "apply", job.Name)
	assert.Equal(t, "https://example.com/apply", job.URL)

	// Extra job keys land in metadata, never in the typed fields.
	assert.Equal(t, map[string]any{"department": "engineering", "priority": 3}, job.Metadata)

	require.Len(t, job.Steps, 2)
	assert.Equal(t, "fill", job.Steps[0].Action)
	assert.Equal(t, map[string]any{
		"selector": "#company",
		"value":    "{{ profile.company }}",
	}, job.Steps[0].Options)
	assert.Equal(t, "click", job.Steps[1].Action)
}

func TestLoadBytes_EnvExpansion(t *testing.T) {
	t.Setenv("AUTOAPPLY_TEST_COMPANY", "Acme")

	doc := "profile:\n  company: ${AUTOAPPLY_TEST_COMPANY}\njobs:\n  - url: https://example.com\n"
	cfg, err := loadBytes([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Acme", cfg.Profile["company"])
}

func TestLoad_BaseDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  - url: https://example.com\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.SourcePath)
	assert.Equal(t, dir, cfg.BaseDir())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
