package detect

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/webdesignerk/nautilus-vscode-widget/internal/safety"
)

// Branding prefixes Nautilus variants prepend to their window titles.
var titlePrefixes = []string{"Files", "Archivos", "File Manager", "Gestor de archivos"}

// homeAliases are display names Nautilus uses for the home folder itself.
var homeAliases = map[string]struct{}{
	"carpeta personal": {},
	"home":             {},
	"personal folder":  {},
}

// specialFolders maps localized display names to the real folder under the
// user home. English first, Spanish second, per pair.
var specialFolders = []struct {
	display string
	folder  string
}{
	{"Documents", "Documents"}, {"Documentos", "Documents"},
	{"Downloads", "Downloads"}, {"Descargas", "Downloads"},
	{"Pictures", "Pictures"}, {"Imágenes", "Pictures"},
	{"Music", "Music"}, {"Música", "Music"},
	{"Videos", "Videos"}, {"Vídeos", "Videos"},
	{"Desktop", "Desktop"}, {"Escritorio", "Desktop"},
	{"Public", "Public"}, {"Público", "Public"},
	{"Templates", "Templates"}, {"Plantillas", "Templates"},
}

var pathShapedPattern = regexp.MustCompile(`/[^\s]+`)

// extractFromTitle turns a window title into an existing directory, or ""
// when no reading of the title names one.
func (r *Resolver) extractFromTitle(original string) string {
	title := strings.TrimSpace(original)
	if title == "" {
		return ""
	}

	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(title, prefix) {
			title = strings.TrimSpace(strings.TrimPrefix(title, prefix))
			title = strings.TrimSpace(strings.TrimPrefix(title, "-"))
		}
	}
	// Nautilus prepends a decorative glyph when the view has a pending state.
	title = strings.TrimSpace(strings.TrimLeft(title, "✳ "))

	if strings.HasPrefix(title, "/") && safety.IsDir(title) {
		return title
	}

	// Path-shaped substrings anywhere in the untrimmed title.
	for _, m := range pathShapedPattern.FindAllString(original, -1) {
		if safety.IsDir(m) {
			return m
		}
	}

	if title == "" {
		return ""
	}
	lower := strings.ToLower(title)

	if _, ok := homeAliases[lower]; ok && safety.IsDir(r.home) {
		return r.home
	}

	for _, sf := range specialFolders {
		if lower == strings.ToLower(sf.display) {
			if p := filepath.Join(r.home, sf.folder); safety.IsDir(p) {
				return p
			}
		}
	}
	for _, sf := range specialFolders {
		if strings.Contains(lower, strings.ToLower(sf.display)) {
			if p := filepath.Join(r.home, sf.folder); safety.IsDir(p) {
				return p
			}
		}
	}

	if !strings.Contains(title, "/") {
		if p := filepath.Join(r.home, title); safety.IsDir(p) {
			return p
		}
		if title != "org.gnome.Nautilus" && title != "Nautilus" {
			return r.searchFolderByName(title)
		}
	}
	return ""
}

// searchFolderByName looks for a directory matching a bare folder name:
// direct children of the likely roots first, then a bounded recursive pass
// over home and the Documents variants.
func (r *Resolver) searchFolderByName(name string) string {
	roots := []string{
		r.home,
		filepath.Join(r.home, "Documents"),
		filepath.Join(r.home, "Documentos"),
		filepath.Join(r.home, "Desktop"),
		filepath.Join(r.home, "Escritorio"),
		filepath.Join(r.home, "Downloads"),
		filepath.Join(r.home, "Descargas"),
	}

	for _, root := range roots {
		if p := matchChildDir(root, name); p != "" {
			return p
		}
	}

	deadline := time.Now().Add(searchBudget)
	for _, root := range roots[:3] {
		if p := searchFolder(root, name, maxSearchDepth, deadline); p != "" {
			return p
		}
	}
	return ""
}
