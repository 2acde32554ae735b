// Package runner executes configured automation jobs against live pages
// through Playwright. Jobs run strictly in order, each in its own isolated
// browser context; the first failure aborts the run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/autoapply/autoapply/internal/config"
	"github.com/autoapply/autoapply/internal/template"
)

// Runner replays the configured jobs through the browser driver.
type Runner struct {
	cfg      *config.Config
	renderer *template.Renderer
	headless *bool // CLI override, nil = use config
	log      *slog.Logger
	runID    string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithHeadless overrides the headless setting from the configuration.
func WithHeadless(headless bool) Option {
	return func(r *Runner) { r.headless = &headless }
}

// WithLogger sets the logger used for run progress.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// New builds a Runner for cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		renderer: template.NewRenderer(cfg.BaseDir()),
		log:      slog.Default(),
		runID:    uuid.NewString()[:8],
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "runner", "run_id", r.runID)
	return r
}

// Run executes every configured job in order. In dry-run mode it renders
// and logs each step without launching a browser; otherwise one browser
// serves the whole run and each job gets a fresh browsing context.
func (r *Runner) Run(ctx context.Context, dryRun bool) error {
	base, err := r.buildContext()
	if err != nil {
		return err
	}
	if dryRun {
		return r.dryRun(base)
	}
	return r.runLive(ctx, base)
}

// buildContext renders the raw profile against itself once and returns the
// base rendering context. The self-render is a single pass: a profile value
// referencing another templated profile value resolves only one level.
func (r *Runner) buildContext() (map[string]any, error) {
	preliminary := map[string]any{"profile": r.cfg.Profile}
	rendered, err := r.renderer.Render(r.cfg.Profile, preliminary)
	if err != nil {
		return nil, fmt.Errorf("render profile: %w", err)
	}
	return map[string]any{"profile": rendered}, nil
}

// dryRun renders every step of every job against its job context and logs
// the result. No browser is launched and no handler runs.
func (r *Runner) dryRun(base map[string]any) error {
	for _, job := range r.cfg.Jobs {
		r.log.Info("dry-run job", "name", job.Name, "url", job.URL)
		jobCtx := withJob(base, jobRecord(job))
		for i, step := range job.Steps {
			rendered, err := r.renderer.RenderMap(stepMapping(step), jobCtx)
			if err != nil {
				return fmt.Errorf("job %q step %d: %w", job.Name, i+1, err)
			}
			r.log.Info("dry-run step", "index", i+1, "step", rendered)
		}
	}
	return nil
}

func (r *Runner) runLive(ctx context.Context, base map[string]any) error {
	if err := playwright.Install(); err != nil {
		return fmt.Errorf("install playwright browsers: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright driver: %w", err)
	}
	defer pw.Stop()

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(r.headlessValue()),
	}
	if r.cfg.Browser.SlowMo != nil {
		launchOpts.SlowMo = playwright.Float(float64(*r.cfg.Browser.SlowMo))
	}
	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer browser.Close()

	return r.runJobs(ctx, browser, base)
}

// runJobs executes every job in order against one browser. The first
// failure stops the run; jobs after it never start.
func (r *Runner) runJobs(ctx context.Context, browser playwright.Browser, base map[string]any) error {
	for _, job := range r.cfg.Jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.log.Info("running job", "name", job.Name, "url", job.URL)
		if err := r.runJob(job, browser, base); err != nil {
			var autoErr *AutomationError
			if errors.As(err, &autoErr) {
				return err
			}
			return wrapAutomationError(err, "job %q failed with unexpected error", job.Name)
		}
	}
	return nil
}

// runJob opens an isolated browsing context and a page for the job. The
// context is closed when the job finishes, whether it succeeded or not.
func (r *Runner) runJob(job config.JobConfig, browser playwright.Browser, base map[string]any) error {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if r.cfg.Browser.Locale != "" {
		ctxOpts.Locale = playwright.String(r.cfg.Browser.Locale)
	}
	browserCtx, err := browser.NewContext(ctxOpts)
	if err != nil {
		return fmt.Errorf("open browser context: %w", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}

	return r.executeJob(job, page, base)
}

func (r *Runner) executeJob(job config.JobConfig, page playwright.Page, base map[string]any) error {
	jobMeta := map[string]any{"name": job.Name}
	for k, v := range job.Metadata {
		jobMeta[k] = v
	}
	jobCtx := withJob(base, jobMeta)

	timeout := float64(r.cfg.Browser.TimeoutMs)

	r.log.Info("navigating", "url", job.URL)
	if _, err := page.Goto(job.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(timeout),
	}); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return wrapAutomationError(err, "timed out navigating to %s", job.URL)
		}
		return err
	}

	for i, step := range job.Steps {
		rendered, err := r.renderer.RenderMap(stepMapping(step), jobCtx)
		if err != nil {
			return fmt.Errorf("render step %d: %w", i+1, err)
		}
		action, _ := rendered["action"].(string)
		delete(rendered, "action")

		r.log.Info("step", "index", i+1, "action", action)
		handler, err := dispatch(action)
		if err != nil {
			return err
		}
		if err := handler(page, rendered, timeout, r); err != nil {
			if errors.Is(err, playwright.ErrTimeout) {
				return wrapAutomationError(err, "timed out waiting for selector during step %d (%s)", i+1, action)
			}
			return err
		}
	}
	return nil
}

func (r *Runner) headlessValue() bool {
	if r.headless != nil {
		return *r.headless
	}
	return r.cfg.Browser.Headless
}

// resolveFiles coerces a files option (string or sequence) into a list of
// absolute paths resolved against the configuration's base directory.
func (r *Runner) resolveFiles(value any) []string {
	entries := asStrings(value)
	files := make([]string, len(entries))
	for i, entry := range entries {
		files[i] = r.renderer.Path(entry)
	}
	return files
}

// withJob returns a copy of base with the job record exposed under "job".
func withJob(base map[string]any, job map[string]any) map[string]any {
	ctx := make(map[string]any, len(base)+1)
	for k, v := range base {
		ctx[k] = v
	}
	ctx["job"] = job
	return ctx
}

// stepMapping rebuilds the step as one mapping, action key included, the
// shape templates see during rendering.
func stepMapping(step config.StepConfig) map[string]any {
	m := make(map[string]any, len(step.Options)+1)
	m["action"] = step.Action
	for k, v := range step.Options {
		m[k] = v
	}
	return m
}

// jobRecord exposes the full job definition for dry-run introspection.
func jobRecord(job config.JobConfig) map[string]any {
	steps := make([]any, len(job.Steps))
	for i, step := range job.Steps {
		steps[i] = stepMapping(step)
	}
	return map[string]any{
		"name":     job.Name,
		"url":      job.URL,
		"steps":    steps,
		"metadata": job.Metadata,
	}
}
