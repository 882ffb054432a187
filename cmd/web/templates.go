package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/myrjola/gymplan/internal/contexthelpers"
	"github.com/myrjola/gymplan/internal/i18n"
)

// BaseTemplateData is embedded in the data of every page rendered with base.gohtml.
type BaseTemplateData struct {
	Authenticated bool
	Language      i18n.Language
	Languages     []i18n.Language
	// CurrentPath is where the language picker returns to.
	CurrentPath string
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	ctx := r.Context()
	return BaseTemplateData{
		Authenticated: contexthelpers.IsAuthenticated(ctx),
		Language:      contexthelpers.Language(ctx),
		Languages:     i18n.SupportedLanguages(),
		CurrentPath:   contexthelpers.CurrentPath(ctx),
	}
}

// findModuleDir walks up from the working directory to the directory holding go.mod.
func findModuleDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		if _, err = os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// uiDirs are the directories the server reads its pages and assets from.
type uiDirs struct {
	templates string
	static    string
}

// resolveUIDirs locates the templates and static directories under uiPath, falling back to the ui directory of
// the module root when uiPath is empty.
func resolveUIDirs(uiPath string) (uiDirs, error) {
	if uiPath == "" {
		modulePath, err := findModuleDir()
		if err != nil {
			return uiDirs{}, fmt.Errorf("find module dir: %w", err)
		}
		uiPath = filepath.Join(modulePath, "ui")
	}
	dirs := uiDirs{
		templates: filepath.Join(uiPath, "templates"),
		static:    filepath.Join(uiPath, "static"),
	}
	for _, dir := range []string{dirs.templates, dirs.static} {
		stat, err := os.Stat(dir)
		if err != nil {
			return uiDirs{}, fmt.Errorf("ui directory not found %s: %w", dir, err)
		}
		if !stat.IsDir() {
			return uiDirs{}, fmt.Errorf("ui path is not a directory: %s", dir)
		}
	}
	return dirs, nil
}
