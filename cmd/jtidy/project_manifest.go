package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"jtidy/internal/pkgdecl"
)

const manifestName = "jtidy.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package packageConfig `toml:"package"`
	Files   filesConfig   `toml:"files"`
	Run     runConfig     `toml:"run"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type filesConfig struct {
	Extensions []string `toml:"extensions"`
}

type runConfig struct {
	Jobs  int  `toml:"jobs"`
	Cache bool `toml:"cache"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest reads explicit when set, otherwise the nearest
// jtidy.toml above startDir. A missing optional manifest is not an error.
func loadProjectManifest(explicit, startDir string) (*projectManifest, error) {
	path := explicit
	if path == "" {
		found, ok, err := findManifest(startDir)
		if err != nil || !ok {
			return nil, err
		}
		path = found
	}
	cfg, err := loadProjectConfig(path)
	if err != nil {
		return nil, err
	}
	return &projectManifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("package", "name") {
		cfg.Package.Name = strings.TrimSpace(cfg.Package.Name)
		if err := pkgdecl.ValidateName(cfg.Package.Name); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [package].name: %w", path, err)
		}
	}
	if meta.IsDefined("files", "extensions") {
		for i, ext := range cfg.Files.Extensions {
			if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
				return projectConfig{}, fmt.Errorf("%s: [files].extensions[%d]: %q must start with '.'", path, i, ext)
			}
		}
	}
	if meta.IsDefined("run", "jobs") && cfg.Run.Jobs < 1 {
		return projectConfig{}, fmt.Errorf("%s: [run].jobs must be at least 1", path)
	}
	return cfg, nil
}

func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`# jtidy project settings
[package]
name = "%s"

[files]
extensions = [".java"]

[run]
jobs = 1
cache = false
`, name)
}
