// Package view_config resolves the screen definitions of the tabular views: the
// compiled-in screens plus YAML overrides from a directory that is hot reloaded.
// internal/service/view_config/registry.go
package view_config

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"GestionBC/internal/tableview"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

type compiledScreen struct {
	def     *domain.ScreenDefinition
	columns []tableview.Column
}

// Registry is safe for concurrent use.
type Registry struct {
	dir string

	mu      sync.RWMutex
	screens map[string]compiledScreen

	listenersMu sync.Mutex
	listeners   []func(changed []string)

	eventTimersMu sync.Mutex
	eventTimers   map[string]*time.Timer
}

var _ port.ScreenRegistry = (*Registry)(nil)

// NewRegistry compiles the built-in screens and, when dir is not empty, the YAML
// files found there. A broken file is logged and skipped.
func NewRegistry(dir string) (*Registry, error) {
	r := &Registry{
		dir:         dir,
		screens:     make(map[string]compiledScreen),
		eventTimers: make(map[string]*time.Timer),
	}
	if _, err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Screen returns the definition and compiled columns of a screen.
func (r *Registry) Screen(name string) (*domain.ScreenDefinition, []tableview.Column, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cs, ok := r.screens[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", port.ErrUnknownScreen, name)
	}
	return cs.def, cs.columns, nil
}

// ScreenNames returns the known screen names, sorted.
func (r *Registry) ScreenNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.screens))
	for name := range r.screens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OnChange registers fn to be called with the names of screens whose definition
// changed after a reload.
func (r *Registry) OnChange(fn func(changed []string)) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Reload rebuilds the screen set and returns the names that were added, removed or
// replaced. Built-in screens always compile; files that fail validation are skipped.
func (r *Registry) Reload() ([]string, error) {
	next := make(map[string]compiledScreen)
	for _, def := range builtinScreens() {
		def := def
		cs, err := compile(&def)
		if err != nil {
			return nil, fmt.Errorf("built-in screen %q: %w", def.Name, err)
		}
		next[def.Name] = cs
	}

	if r.dir != "" {
		defs, err := LoadDir(r.dir)
		if err != nil {
			return nil, err
		}
		for _, def := range defs {
			cs, err := compile(def)
			if err != nil {
				slog.Warn("screen definition rejected", "screen", def.Name, "error", err)
				continue
			}
			next[def.Name] = cs
		}
	}

	r.mu.Lock()
	prev := r.screens
	r.screens = next
	r.mu.Unlock()

	changed := diffScreens(prev, next)
	if len(changed) > 0 {
		slog.Info("screen definitions reloaded", "changed", changed)
		r.notify(changed)
	}
	return changed, nil
}

func (r *Registry) notify(changed []string) {
	r.listenersMu.Lock()
	listeners := slices.Clone(r.listeners)
	r.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(changed)
	}
}

func diffScreens(prev, next map[string]compiledScreen) []string {
	var changed []string
	for name, cs := range next {
		old, ok := prev[name]
		if !ok || !sameDefinition(old.def, cs.def) {
			changed = append(changed, name)
		}
	}
	for name := range prev {
		if _, ok := next[name]; !ok {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}

func sameDefinition(a, b *domain.ScreenDefinition) bool {
	if a.DisplayName != b.DisplayName || a.Source != b.Source || a.PageSize != b.PageSize {
		return false
	}
	if !slices.Equal(a.Columns, b.Columns) || !slices.Equal(a.Aggregates, b.Aggregates) {
		return false
	}
	switch {
	case a.DefaultSort == nil && b.DefaultSort == nil:
		return true
	case a.DefaultSort == nil || b.DefaultSort == nil:
		return false
	}
	return *a.DefaultSort == *b.DefaultSort
}

// compile validates def and builds its columns.
func compile(def *domain.ScreenDefinition) (compiledScreen, error) {
	if strings.TrimSpace(def.Name) == "" {
		return compiledScreen{}, fmt.Errorf("%w: screen name is required", port.ErrInvalidInput)
	}
	if err := validateSource(def.Source); err != nil {
		return compiledScreen{}, err
	}
	if len(def.Columns) == 0 {
		return compiledScreen{}, fmt.Errorf("%w: screen %q has no columns", port.ErrInvalidInput, def.Name)
	}
	if def.PageSize < 0 {
		return compiledScreen{}, fmt.Errorf("%w: negative page size", port.ErrInvalidInput)
	}

	seen := make(map[string]bool, len(def.Columns))
	cols := make([]tableview.Column, 0, len(def.Columns))
	for _, spec := range def.Columns {
		if spec.Key == "" {
			return compiledScreen{}, fmt.Errorf("%w: column without key", port.ErrInvalidInput)
		}
		if seen[spec.Key] {
			return compiledScreen{}, fmt.Errorf("%w: duplicate column %q", port.ErrInvalidInput, spec.Key)
		}
		seen[spec.Key] = true

		typ := tableview.ColumnType(spec.Type)
		if spec.Type == "" {
			typ = tableview.TypeText
		}
		if !typ.Valid() {
			return compiledScreen{}, fmt.Errorf("%w: column %q has unknown type %q", port.ErrInvalidInput, spec.Key, spec.Type)
		}
		label := spec.Label
		if label == "" {
			label = spec.Key
		}
		c := tableview.NewColumn(spec.Key, label, typ)
		if spec.Computed != "" {
			fn, ok := computedAccessors[spec.Computed]
			if !ok {
				return compiledScreen{}, fmt.Errorf("%w: column %q uses unknown computed accessor %q", port.ErrInvalidInput, spec.Key, spec.Computed)
			}
			c = c.WithAccessor(fn)
		}
		cols = append(cols, c)
	}

	if def.DefaultSort != nil {
		if !seen[def.DefaultSort.Key] {
			return compiledScreen{}, fmt.Errorf("%w: default sort on unknown column %q", port.ErrInvalidInput, def.DefaultSort.Key)
		}
		def.DefaultSort.Direction = string(tableview.ParseDirection(def.DefaultSort.Direction))
	}
	if err := validateAggregates(def.Aggregates, seen); err != nil {
		return compiledScreen{}, err
	}
	return compiledScreen{def: def, columns: cols}, nil
}

func validateAggregates(aggs []domain.AggregateSpec, columns map[string]bool) error {
	names := make(map[string]bool, len(aggs))
	for _, agg := range aggs {
		if agg.Name == "" || names[agg.Name] {
			return fmt.Errorf("%w: aggregate name %q is empty or duplicated", port.ErrInvalidInput, agg.Name)
		}
		names[agg.Name] = true

		op := tableview.AggregateOp(agg.Op)
		if !op.Valid() {
			return fmt.Errorf("%w: aggregate %q has unknown op %q", port.ErrInvalidInput, agg.Name, agg.Op)
		}
		if op != tableview.OpCount && !columns[agg.Key] {
			return fmt.Errorf("%w: aggregate %q on unknown column %q", port.ErrInvalidInput, agg.Name, agg.Key)
		}
		if op == tableview.OpRatio && !columns[agg.Of] {
			return fmt.Errorf("%w: aggregate %q divides by unknown column %q", port.ErrInvalidInput, agg.Name, agg.Of)
		}
	}
	return nil
}

func validateSource(src domain.ScreenSource) error {
	switch {
	case src.Dataset != "" && src.URL != "":
		return fmt.Errorf("%w: source has both a dataset and a url", port.ErrInvalidInput)
	case src.Dataset != "":
		if !slices.Contains(domain.Datasets, src.Dataset) {
			return fmt.Errorf("%w: unknown dataset %q", port.ErrInvalidInput, src.Dataset)
		}
		return nil
	case src.URL != "":
		u, err := url.Parse(src.URL)
		if err != nil {
			return fmt.Errorf("%w: source url: %v", port.ErrInvalidInput, err)
		}
		switch u.Scheme {
		case "http", "https", "file":
			return nil
		}
		return fmt.Errorf("%w: unsupported source scheme %q", port.ErrInvalidInput, u.Scheme)
	}
	return fmt.Errorf("%w: source needs a dataset or a url", port.ErrInvalidInput)
}
