// Package view_config internal/service/view_config/loader.go
package view_config

import (
	"GestionBC/internal/core/domain"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// screenFile is the layout of a view file: either a `screens:` list or a single screen.
type screenFile struct {
	Screens []domain.ScreenDefinition `yaml:"screens"`
}

// isViewFile reports whether path looks like a view definition file.
func isViewFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadDir reads every view file of dir in name order. A missing directory yields no
// screens; a file that cannot be parsed is logged and skipped. Later files win on
// name collisions.
func LoadDir(dir string) ([]*domain.ScreenDefinition, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("views directory does not exist", "dir", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read views directory %q: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isViewFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	byName := make(map[string]*domain.ScreenDefinition)
	var order []string
	for _, n := range names {
		path := filepath.Join(dir, n)
		defs, err := LoadFile(path)
		if err != nil {
			slog.Warn("skipping view file", "file", path, "error", err)
			continue
		}
		for _, d := range defs {
			if _, dup := byName[d.Name]; !dup {
				order = append(order, d.Name)
			}
			byName[d.Name] = d
		}
	}

	out := make([]*domain.ScreenDefinition, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}

// LoadFile parses one view file.
func LoadFile(path string) ([]*domain.ScreenDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes view definitions. Unknown keys are rejected so typos surface.
func Parse(data []byte) ([]*domain.ScreenDefinition, error) {
	var file screenFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(&file)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err == nil && len(file.Screens) > 0 {
		out := make([]*domain.ScreenDefinition, len(file.Screens))
		for i := range file.Screens {
			out[i] = &file.Screens[i]
		}
		return out, nil
	}

	var single domain.ScreenDefinition
	dec = yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if errSingle := dec.Decode(&single); errSingle != nil {
		if err != nil {
			return nil, fmt.Errorf("parse view file: %w", err)
		}
		return nil, fmt.Errorf("parse view file: %w", errSingle)
	}
	if single.Name == "" {
		return nil, errors.New("parse view file: no screen found")
	}
	return []*domain.ScreenDefinition{&single}, nil
}
