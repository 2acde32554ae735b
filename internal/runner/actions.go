package runner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// handlerFunc executes one step against a live page. opts is the rendered
// step mapping with the action key already removed; timeout is the
// configured navigation/element-wait timeout in milliseconds. Handlers
// validate their required fields before touching the driver.
type handlerFunc func(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error

// actionHandlers is the closed dispatch table. There is no dynamic
// registration; an action missing here is an unsupported action.
var actionHandlers = map[string]handlerFunc{
	"goto":              handleGoto,
	"fill":              handleFill,
	"type":              handleType,
	"click":             handleClick,
	"check":             handleCheck,
	"select":            handleSelect,
	"upload":            handleUpload,
	"wait":              handleWait,
	"wait_for_selector": handleWaitForSelector,
	"assert_text":       handleAssertText,
	"press":             handlePress,
	"hover":             handleHover,
	"scroll":            handleScroll,
	"screenshot":        handleScreenshot,
}

// dispatch resolves an action name to its handler.
func dispatch(action string) (handlerFunc, error) {
	handler, ok := actionHandlers[action]
	if !ok {
		return nil, newAutomationError("unsupported action %q", action)
	}
	return handler, nil
}

func handleGoto(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	url, ok := optString(opts, "url")
	if !ok {
		return newAutomationError("goto action requires a 'url'")
	}
	raw, _ := optString(opts, "wait_until")
	waitUntil, err := waitUntilState(raw)
	if err != nil {
		return err
	}
	_, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntil,
		Timeout:   playwright.Float(timeout),
	})
	return err
}

func handleFill(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	selector, err := requireSelector(opts)
	if err != nil {
		return err
	}
	value, ok := opts["value"]
	if !ok {
		return newAutomationError("fill action requires a 'value'")
	}
	return page.Locator(selector).Fill(fmt.Sprintf("%v", value), playwright.LocatorFillOptions{
		Timeout: playwright.Float(timeout),
	})
}

func handleType(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	selector, err := requireSelector(opts)
	if err != nil {
		return err
	}
	var value string
	if v, ok := opts["value"]; ok && v != nil {
		value = fmt.Sprintf("%v", v)
	}
	typeOpts := playwright.LocatorTypeOptions{Timeout: playwright.Float(timeout)}
	if delay, ok, err := optInt(opts, "delay"); err != nil {
		return err
	} else if ok {
		typeOpts.Delay = playwright.Float(float64(delay))
	}
	return page.Locator(selector).Type(value, typeOpts)
}

func handleClick(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	selector, err := requireSelector(opts)
	if err != nil {
		return err
	}
	clickOpts := playwright.LocatorClickOptions{Timeout: playwright.Float(timeout)}
	if button, ok := optString(opts, "button"); ok {
		switch button {
		case "right":
			clickOpts.Button = playwright.MouseButtonRight
		case "middle":
			clickOpts.Button = playwright.MouseButtonMiddle
		default:
			clickOpts.Button = playwright.MouseButtonLeft
		}
	}
	if count, ok, err := optInt(opts, "click_count"); err != nil {
		return err
	} else if ok {
		clickOpts.ClickCount = playwright.Int(count)
	}
	if delay, ok, err := optInt(opts, "delay"); err != nil {
		return err
	} else if ok {
		clickOpts.Delay = playwright.Float(float64(delay))
	}
	return page.Locator(selector).Click(clickOpts)
}

func handleCheck(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	selector, err := requireSelector(opts)
	if err != nil {
		return err
	}
	if optBool(opts, "checked", true) {
		return page.Locator(selector).Check(playwright.LocatorCheckOptions{
			Timeout: playwright.Float(timeout),
		})
	}
	return page.Locator(selector).Uncheck(playwright.LocatorUncheckOptions{
		Timeout: playwright.Float(timeout),
	})
}

func handleSelect(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	selector, err := requireSelector(opts)
	if err != nil {
		return err
	}
	var values []string
	if v, ok := opts["value"]; ok && v != nil {
		values = append(values, fmt.Sprintf("%v", v))
	}
	if v, ok := opts["values"]; ok && v != nil {
		values = append(values, asStrings(v)...)
	}
	if len(values) == 0 {
		return newAutomationError("select action requires 'value' or 'values'")
	}
	_, err = page.Locator(selector).SelectOption(playwright.SelectOptionValues{
		Values: &values,
	}, playwright.LocatorSelectOptionOptions{
		Timeout: playwright.Float(timeout),
	})
	return err
}

func handleUpload(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	selector, err := requireSelector(opts)
	if err != nil {
		return err
	}
	raw, ok := opts["files"]
	if !ok || raw == nil {
		return newAutomationError("upload action requires 'files'")
	}
	files := r.resolveFiles(raw)
	return page.Locator(selector).SetInputFiles(files, playwright.LocatorSetInputFilesOptions{
		Timeout: playwright.Float(timeout),
	})
}

func handleWait(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	duration := 1000
	if d, ok, err := optInt(opts, "duration_ms"); err != nil {
		return err
	} else if ok {
		duration = d
	} else if d, ok, err := optInt(opts, "ms"); err != nil {
		return err
	} else if ok {
		duration = d
	}
	page.WaitForTimeout(float64(duration))
	return nil
}

func handleWaitForSelector(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	selector, err := requireSelector(opts)
	if err != nil {
		return err
	}
	waitOpts := playwright.PageWaitForSelectorOptions{Timeout: playwright.Float(timeout)}
	if raw, ok := optString(opts, "state"); ok {
		state, err := selectorState(raw)
		if err != nil {
			return err
		}
		waitOpts.State = state
	}
	_, err = page.WaitForSelector(selector, waitOpts)
	return err
}

func handleAssertText(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	text, ok := opts["text"]
	if !ok || text == nil {
		return newAutomationError("assert_text requires 'text'")
	}
	expected := fmt.Sprintf("%v", text)

	var content string
	if selector, ok := optString(opts, "selector"); ok {
		locator := page.Locator(selector)
		if err := locator.WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(timeout),
		}); err != nil {
			return err
		}
		inner, err := locator.InnerText()
		if err != nil {
			return err
		}
		content = inner
	} else {
		body, err := page.Content()
		if err != nil {
			return err
		}
		content = body
	}

	if !strings.Contains(content, expected) {
		return newAutomationError("assert_text failed to find %q in the page content", expected)
	}
	return nil
}

func handlePress(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	selector, err := requireSelector(opts)
	if err != nil {
		return err
	}
	keys, ok := optString(opts, "keys")
	if !ok {
		keys, ok = optString(opts, "key")
	}
	if !ok {
		return newAutomationError("press requires 'keys' or 'key'")
	}
	return page.Locator(selector).Press(keys, playwright.LocatorPressOptions{
		Timeout: playwright.Float(timeout),
	})
}

func handleHover(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	selector, err := requireSelector(opts)
	if err != nil {
		return err
	}
	return page.Locator(selector).Hover(playwright.LocatorHoverOptions{
		Timeout: playwright.Float(timeout),
	})
}

func handleScroll(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	if selector, ok := optString(opts, "selector"); ok {
		return page.Locator(selector).ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
			Timeout: playwright.Float(timeout),
		})
	}

	amount := 500
	if a, ok, err := optInt(opts, "amount"); err != nil {
		return err
	} else if ok {
		amount = a
	}
	direction, _ := optString(opts, "direction")
	var deltaX, deltaY int
	switch direction {
	case "up":
		deltaY = -amount
	case "left":
		deltaX = -amount
	case "right":
		deltaX = amount
	default:
		deltaY = amount
	}
	_, err := page.Evaluate(fmt.Sprintf("window.scrollBy(%d, %d)", deltaX, deltaY))
	return err
}

func handleScreenshot(page playwright.Page, opts map[string]any, timeout float64, r *Runner) error {
	path, ok := optString(opts, "path")
	if !ok {
		return newAutomationError("screenshot action requires a 'path'")
	}
	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(r.renderer.Path(path)),
		FullPage: playwright.Bool(optBool(opts, "full_page", false)),
	})
	return err
}

// Option helpers. Rendered options arrive as strings, numbers, booleans,
// sequences, or mappings depending on what the YAML and templates produced,
// so every access coerces defensively.

func requireSelector(opts map[string]any) (string, error) {
	selector, ok := optString(opts, "selector")
	if !ok {
		return "", newAutomationError("step requires a 'selector'")
	}
	return selector, nil
}

func optString(opts map[string]any, key string) (string, bool) {
	v, ok := opts[key]
	if !ok || v == nil {
		return "", false
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return "", false
	}
	return s, true
}

func optInt(opts map[string]any, key string) (int, bool, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64:
		return int(n), true, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false, newAutomationError("option %q must be a number, got %q", key, n)
		}
		return parsed, true, nil
	default:
		return 0, false, newAutomationError("option %q must be a number, got %T", key, v)
	}
}

func optBool(opts map[string]any, key string, def bool) bool {
	v, ok := opts[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.TrimSpace(strings.ToLower(b)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return def
}

func asStrings(v any) []string {
	if list, ok := v.([]any); ok {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	}
	return []string{fmt.Sprintf("%v", v)}
}

func waitUntilState(s string) (*playwright.WaitUntilState, error) {
	switch s {
	case "", "load":
		return playwright.WaitUntilStateLoad, nil
	case "domcontentloaded":
		return playwright.WaitUntilStateDomcontentloaded, nil
	case "networkidle":
		return playwright.WaitUntilStateNetworkidle, nil
	default:
		return nil, newAutomationError("goto 'wait_until' must be load, domcontentloaded or networkidle, got %q", s)
	}
}

func selectorState(s string) (*playwright.WaitForSelectorState, error) {
	switch s {
	case "", "visible":
		return playwright.WaitForSelectorStateVisible, nil
	case "hidden":
		return playwright.WaitForSelectorStateHidden, nil
	case "attached":
		return playwright.WaitForSelectorStateAttached, nil
	case "detached":
		return playwright.WaitForSelectorStateDetached, nil
	default:
		return nil, newAutomationError("'state' must be visible, hidden, attached or detached, got %q", s)
	}
}
