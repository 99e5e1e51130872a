package containersync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Manifest lists the logic files that every tenant container gets from the canonical source.
//
//	source_dir     = "./canonical"
//	containers_dir = "./containers"
//	files          = ["bot.js", "lib/prompts.js"]
//	backup         = true
type Manifest struct {
	SourceDir     string   `toml:"source_dir"`
	ContainersDir string   `toml:"containers_dir"`
	Files         []string `toml:"files"`
	Backup        bool     `toml:"backup"`
	// Concurrency caps tenants synced at once, 0 means no limit.
	Concurrency int `toml:"concurrency"`
}

// LoadManifest reads a TOML manifest. Relative directories resolve against the manifest's own directory.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}
	if err := toml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	if m.SourceDir != "" && !filepath.IsAbs(m.SourceDir) {
		m.SourceDir = filepath.Join(base, m.SourceDir)
	}
	if m.ContainersDir != "" && !filepath.IsAbs(m.ContainersDir) {
		m.ContainersDir = filepath.Join(base, m.ContainersDir)
	}
	return m, m.Validate()
}

func (m Manifest) Validate() error {
	if m.SourceDir == "" {
		return errors.New("manifest: source_dir is required")
	}
	if m.ContainersDir == "" {
		return errors.New("manifest: containers_dir is required")
	}
	if len(m.Files) == 0 {
		return errors.New("manifest: files is empty")
	}
	for _, f := range m.Files {
		clean := filepath.Clean(f)
		if f == "" || filepath.IsAbs(f) || clean == "." || strings.HasPrefix(clean, "..") {
			return fmt.Errorf("manifest: file %q must be a relative path inside source_dir", f)
		}
	}
	if m.Concurrency < 0 {
		return errors.New("manifest: concurrency must not be negative")
	}
	return nil
}
