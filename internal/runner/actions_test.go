package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoapply/autoapply/internal/config"
)

func testRunner(t *testing.T) *Runner {
	t.Helper()
	return New(&config.Config{
		SourcePath: "/cfg/jobs.yaml",
		Profile:    map[string]any{},
		Browser:    config.BrowserConfig{Headless: true, TimeoutMs: 1000},
	})
}

func TestDispatch_KnownActions(t *testing.T) {
	actions := []string{
		"goto", "fill", "type", "click", "check", "select", "upload",
		"wait", "wait_for_selector", "assert_text", "press", "hover",
		"scroll", "screenshot",
	}
	for _, action := range actions {
		handler, err := dispatch(action)
		require.NoError(t, err, action)
		require.NotNil(t, handler, action)
	}
}

func TestDispatch_UnknownAction(t *testing.T) {
	_, err := dispatch("teleport")

	var autoErr *AutomationError
	require.ErrorAs(t, err, &autoErr)
	assert.Contains(t, err.Error(), `unsupported action "teleport"`)
}

// Handlers must validate required fields before any driver call. Each case
// runs against a nil page: if a handler reached the driver it would panic.
func TestHandlers_ValidateBeforeDriverCall(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		opts    map[string]any
		wantErr string
	}{
		{"goto without url", "goto", map[string]any{}, "'url'"},
		{"fill without selector", "fill", map[string]any{"value": "x"}, "'selector'"},
		{"fill without value", "fill", map[string]any{"selector": "#a"}, "'value'"},
		{"type without selector", "type", map[string]any{"value": "x"}, "'selector'"},
		{"click without selector", "click", map[string]any{}, "'selector'"},
		{"check without selector", "check", map[string]any{}, "'selector'"},
		{"select without selector", "select", map[string]any{"value": "x"}, "'selector'"},
		{"select without value or values", "select", map[string]any{"selector": "#a"}, "'value' or 'values'"},
		{"upload without selector", "upload", map[string]any{"files": []any{"a.pdf"}}, "'selector'"},
		{"upload without files", "upload", map[string]any{"selector": "#a"}, "'files'"},
		{"wait_for_selector without selector", "wait_for_selector", map[string]any{}, "'selector'"},
		{"assert_text without text", "assert_text", map[string]any{"selector": "#a"}, "'text'"},
		{"press without selector", "press", map[string]any{"keys": "Enter"}, "'selector'"},
		{"press without keys", "press", map[string]any{"selector": "#a"}, "'keys' or 'key'"},
		{"hover without selector", "hover", map[string]any{}, "'selector'"},
		{"screenshot without path", "screenshot", map[string]any{}, "'path'"},
		{"goto with bad wait_until", "goto", map[string]any{"url": "https://example.com", "wait_until": "lod"}, "'wait_until'"},
		{"wait_for_selector with bad state", "wait_for_selector", map[string]any{"selector": "#a", "state": "usable"}, "'state'"},
		{"type with bad delay", "type", map[string]any{"selector": "#a", "delay": "soon"}, "must be a number"},
		{"click with bad click_count", "click", map[string]any{"selector": "#a", "click_count": "twice"}, "must be a number"},
	}

	r := testRunner(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, err := dispatch(tt.action)
			require.NoError(t, err)

			err = handler(nil, tt.opts, 1000, r)

			var autoErr *AutomationError
			require.ErrorAs(t, err, &autoErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveFiles(t *testing.T) {
	r := testRunner(t)

	assert.Equal(t, []string{"/cfg/resume.pdf"}, r.resolveFiles([]any{"resume.pdf"}))
	assert.Equal(t, []string{"/cfg/resume.pdf"}, r.resolveFiles("resume.pdf"))
	assert.Equal(t,
		[]string{"/cfg/resume.pdf", "/cfg/docs/cover.pdf"},
		r.resolveFiles([]any{"resume.pdf", "docs/cover.pdf"}))
}

func TestOptHelpers(t *testing.T) {
	opts := map[string]any{
		"str":     "hello",
		"empty":   "",
		"num":     7,
		"numstr":  "12",
		"flag":    false,
		"flagstr": "no",
	}

	s, ok := optString(opts, "str")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	_, ok = optString(opts, "empty")
	assert.False(t, ok)
	_, ok = optString(opts, "missing")
	assert.False(t, ok)

	n, ok, err := optInt(opts, "num")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	n, ok, err = optInt(opts, "numstr")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok, err = optInt(opts, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, optBool(opts, "flag", true))
	assert.False(t, optBool(opts, "flagstr", true))
	assert.True(t, optBool(opts, "missing", true))
}

func TestAsStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, asStrings([]any{"a", "b"}))
	assert.Equal(t, []string{"single"}, asStrings("single"))
	assert.Equal(t, []string{"7"}, asStrings(7))
}
