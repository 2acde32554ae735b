// Package template renders configuration values against a context using
// pongo2 expressions. Rendering walks mappings and sequences recursively;
// only string leaves are evaluated as templates.
package template

import (
	"fmt"
	"path/filepath"

	"github.com/flosch/pongo2/v6"
)

// Renderer evaluates template expressions found in configuration values.
// It is bound to a base directory so templates can resolve relative file
// references with the path() helper.
type Renderer struct {
	baseDir string
}

// NewRenderer returns a Renderer resolving relative paths against baseDir.
func NewRenderer(baseDir string) *Renderer {
	return &Renderer{baseDir: baseDir}
}

// Path resolves a relative path against the renderer's base directory and
// returns it as an absolute path. Absolute inputs are cleaned and returned
// as-is. Exposed to templates as path().
func (r *Renderer) Path(relative string) string {
	if filepath.IsAbs(relative) {
		return filepath.Clean(relative)
	}
	abs, err := filepath.Abs(filepath.Join(r.baseDir, relative))
	if err != nil {
		return filepath.Clean(filepath.Join(r.baseDir, relative))
	}
	return abs
}

// Render returns a structurally identical copy of value with every string
// leaf replaced by its template evaluation against ctx. Non-string scalars
// and raw byte slices pass through unchanged.
func (r *Renderer) Render(value any, ctx map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		return r.renderString(v, ctx)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			rendered, err := r.Render(item, ctx)
			if err != nil {
				return nil, err
			}
			out[k] = rendered
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			rendered, err := r.Render(item, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil
	case []byte:
		return v, nil
	default:
		return value, nil
	}
}

// RenderMap renders every value of m against ctx. Keys are not rendered.
func (r *Renderer) RenderMap(m map[string]any, ctx map[string]any) (map[string]any, error) {
	rendered, err := r.Render(m, ctx)
	if err != nil {
		return nil, err
	}
	return rendered.(map[string]any), nil
}

func (r *Renderer) renderString(s string, ctx map[string]any) (string, error) {
	tpl, err := pongo2.FromString(s)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", s, err)
	}

	// The path helper is injected on every evaluation so that it is
	// available regardless of which context the caller assembled.
	execCtx := pongo2.Context{"path": r.Path}
	for k, v := range ctx {
		execCtx[k] = v
	}

	out, err := tpl.Execute(execCtx)
	if err != nil {
		return "", fmt.Errorf("render template %q: %w", s, err)
	}
	return out, nil
}
