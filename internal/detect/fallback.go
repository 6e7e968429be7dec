package detect

import (
	"context"
	"path/filepath"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/safety"
)

// fallbackFolders are tried, in order, when nothing was detected from the
// desktop. Localized variants first-class, matching what a stock Ubuntu or
// Spanish-locale install actually has on disk.
var fallbackFolders = []string{"Desktop", "Escritorio", "Documents", "Documentos"}

// fromFallback never queries the desktop: current working directory, then
// well-known home folders, then home itself.
func (r *Resolver) fromFallback(context.Context) (string, error) {
	if wd, err := r.getwd(); err == nil && safety.IsDir(wd) {
		return wd, nil
	}
	for _, name := range fallbackFolders {
		if p := filepath.Join(r.home, name); safety.IsDir(p) {
			return p, nil
		}
	}
	if safety.IsDir(r.home) {
		return r.home, nil
	}
	return "", nil
}
