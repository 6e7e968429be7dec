package detect

import (
	"context"
	"regexp"
	"strings"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/safety"
)

// ownWindowTitles are produced by the widget itself and must never be
// classified as file-manager windows.
var ownWindowTitles = map[string]struct{}{
	"vscode widget": {},
}

// localizedFolderKeywords are folder display names (English and Spanish)
// that commonly appear verbatim as Nautilus window titles.
var localizedFolderKeywords = []string{
	"documents", "documentos", "downloads", "descargas",
	"pictures", "imágenes", "music", "música",
	"videos", "vídeos", "desktop", "escritorio",
}

// LooksLikeFileManagerTitle is the fuzzy "is this a Nautilus window"
// heuristic, kept as a named function so it can be exercised with literal
// titles independent of live windowing state.
func LooksLikeFileManagerTitle(title string) bool {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	if _, own := ownWindowTitles[lower]; own {
		return false
	}
	if strings.Contains(lower, "nautilus") {
		return true
	}
	if strings.HasPrefix(trimmed, "/") {
		return true
	}
	for _, kw := range localizedFolderKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// fromActiveWindow inspects the focused window's title and, failing that,
// its name properties.
func (r *Resolver) fromActiveWindow(ctx context.Context) (string, error) {
	if !r.environment().HasXdotool {
		return "", errToolUnavailable
	}

	actx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	winID, err := r.run.Output(actx, "xdotool", "getactivewindow")
	if err != nil {
		return "", nil
	}
	winID = strings.TrimSpace(winID)
	if winID == "" {
		return "", nil
	}

	tctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	title, err := r.run.Output(tctx, "xdotool", "getwindowname", winID)
	if err != nil {
		return "", nil
	}
	title = strings.TrimSpace(title)

	if !LooksLikeFileManagerTitle(title) {
		return "", nil
	}

	if dir := r.extractFromTitle(title); dir != "" {
		return dir, nil
	}
	return r.fromWindowProperties(ctx, winID)
}

var (
	quotedFileURIPattern = regexp.MustCompile(`["']([^"']*file://[^"']*)["']`)
	quotedPathPattern    = regexp.MustCompile(`["']((?:/[^/"'\s]+)+)["']`)
)

// fromWindowProperties scans raw WM_NAME/_NET_WM_NAME property text for
// file:// URIs and, failing that, quoted absolute paths.
func (r *Resolver) fromWindowProperties(ctx context.Context, winID string) (string, error) {
	if !r.environment().HasXprop {
		return "", errToolUnavailable
	}

	pctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	out, err := r.run.Output(pctx, "xprop", "-id", winID, "WM_NAME", "_NET_WM_NAME")
	if err != nil {
		return "", nil
	}

	for _, m := range quotedFileURIPattern.FindAllStringSubmatch(out, -1) {
		if path, ok := fileURIToPath(m[1]); ok && safety.IsDir(path) {
			return path, nil
		}
	}
	for _, m := range quotedPathPattern.FindAllStringSubmatch(out, -1) {
		if safety.IsDir(m[1]) {
			return m[1], nil
		}
	}
	return "", nil
}
