// file: internal/service/view/view.go
package view

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"GestionBC/internal/observe"
	"GestionBC/internal/tableview"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = 10 * time.Minute
	// PagerWidth is how many page numbers the pager shows around the current page.
	PagerWidth = 5
)

// Options tunes the store cache.
type Options struct {
	CacheSize       int
	CacheTTL        time.Duration
	DefaultPageSize int
}

// Service keeps one tableview.Store per screen and scope in an expirable LRU.
type Service struct {
	registry port.ScreenRegistry
	source   port.RowSource

	storesMu sync.Mutex
	stores   *lru.LRU[string, *tableview.Store]
	loads    singleflight.Group

	defaultPageSize int
}

var _ port.ViewInvalidator = (*Service)(nil)

func NewService(registry port.ScreenRegistry, source port.RowSource, opts Options) (*Service, error) {
	if registry == nil || source == nil {
		return nil, errors.New("view service: registry and source must not be nil")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = tableview.DefaultPageSize
	}
	return &Service{
		registry:        registry,
		source:          source,
		stores:          lru.NewLRU[string, *tableview.Store](opts.CacheSize, nil, opts.CacheTTL),
		defaultPageSize: opts.DefaultPageSize,
	}, nil
}

// Query is one request against a screen.
type Query struct {
	Search  string
	Filters tableview.Filters
	Sort    *tableview.Sort
	Page    int
	Size    int
	Scope   port.Scope
	Format  bool
}

// RowsPage is one rendered page of a screen.
type RowsPage struct {
	Data         []tableview.Row             `json:"data"`
	Cells        []map[string]tableview.Cell `json:"cells,omitempty"`
	Total        int                         `json:"total"`
	Page         int                         `json:"page"`
	Size         int                         `json:"size"`
	PageCount    int                         `json:"page_count"`
	DisplayPages int                         `json:"display_pages"`
	PageWindow   []int                       `json:"page_window"`
	Stats        map[string]float64          `json:"stats,omitempty"`
	Sort         *tableview.Sort             `json:"sort,omitempty"`
	Generation   uint64                      `json:"generation"`
	LoadedAt     time.Time                   `json:"loaded_at"`
}

// ColumnDescriptor is the public form of a screen column.
type ColumnDescriptor struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Filterable bool   `json:"filterable"`
	Computed   bool   `json:"computed,omitempty"`
}

// ScreenInfo summarises a screen for the screen list.
type ScreenInfo struct {
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	Dataset     string           `json:"dataset,omitempty"`
	Remote      bool             `json:"remote"`
	Scoped      bool             `json:"scoped"`
	PageSize    int              `json:"page_size"`
	DefaultSort *domain.SortSpec `json:"default_sort,omitempty"`
}

// RefreshResult reports the store state after an explicit refresh.
type RefreshResult struct {
	Screen     string    `json:"screen"`
	Generation uint64    `json:"generation"`
	Total      int       `json:"total"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Screens lists every screen, sorted by name.
func (s *Service) Screens() []ScreenInfo {
	names := s.registry.ScreenNames()
	out := make([]ScreenInfo, 0, len(names))
	for _, name := range names {
		def, _, err := s.registry.Screen(name)
		if err != nil {
			continue
		}
		out = append(out, ScreenInfo{
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Dataset:     def.Source.Dataset,
			Remote:      def.Source.URL != "",
			Scoped:      def.Source.Scoped,
			PageSize:    s.pageSize(def, 0),
			DefaultSort: def.DefaultSort,
		})
	}
	return out
}

// Columns returns the column descriptors of a screen.
func (s *Service) Columns(screen string) ([]ColumnDescriptor, error) {
	def, cols, err := s.registry.Screen(screen)
	if err != nil {
		return nil, err
	}
	specs := make(map[string]domain.ColumnSpec, len(def.Columns))
	for _, spec := range def.Columns {
		specs[spec.Key] = spec
	}
	out := make([]ColumnDescriptor, 0, len(cols))
	for _, c := range cols {
		spec := specs[c.Key]
		out = append(out, ColumnDescriptor{
			Key:        c.Key,
			Label:      c.Label,
			Type:       string(c.Type),
			Filterable: spec.Filterable,
			Computed:   spec.Computed != "",
		})
	}
	return out, nil
}

// Rows runs search, filters, sort and pagination over the unfiltered store of the
// screen. The store is loaded on first use.
func (s *Service) Rows(ctx context.Context, screen string, q Query) (*RowsPage, error) {
	def, cols, err := s.registry.Screen(screen)
	if err != nil {
		return nil, err
	}
	for key := range q.Filters {
		if findColumn(cols, key) == nil {
			return nil, fmt.Errorf("%w: %q on screen %q", port.ErrUnknownColumn, key, screen)
		}
	}
	snap, err := s.loaded(ctx, def, q.Scope)
	if err != nil {
		return nil, err
	}

	st := tableview.State{
		Search:  strings.TrimSpace(q.Search),
		Filters: q.Filters,
		Sort:    q.Sort,
		Page:    tableview.Page{Index: q.Page, Size: s.pageSize(def, q.Size)},
	}
	if st.Sort == nil && def.DefaultSort != nil {
		st.Sort = &tableview.Sort{Key: def.DefaultSort.Key, Direction: tableview.ParseDirection(def.DefaultSort.Direction)}
	}
	res := tableview.Apply(snap.Rows, cols, st)

	displayPages := max(res.PageCount, 1)
	page := &RowsPage{
		Data:         res.Rows,
		Total:        res.Total,
		Page:         res.Page.Index,
		Size:         res.Page.Size,
		PageCount:    res.PageCount,
		DisplayPages: displayPages,
		PageWindow:   tableview.PageWindow(res.Page.Index, displayPages, PagerWidth),
		Sort:         st.Sort,
		Generation:   snap.Generation,
		LoadedAt:     snap.LoadedAt,
	}
	if len(def.Aggregates) > 0 {
		page.Stats = tableview.Summarize(res.Filtered, aggregates(def, cols))
	}
	if q.Format {
		page.Cells = make([]map[string]tableview.Cell, len(res.Rows))
		for i, row := range res.Rows {
			page.Cells[i] = tableview.FormatRow(row, cols)
		}
	}
	return page, nil
}

// Values returns the filter candidates of a column, computed from the unfiltered
// store. term narrows the list only.
func (s *Service) Values(ctx context.Context, screen, key, term string, scope port.Scope) ([]string, error) {
	def, cols, err := s.registry.Screen(screen)
	if err != nil {
		return nil, err
	}
	col := findColumn(cols, key)
	if col == nil {
		return nil, fmt.Errorf("%w: %q on screen %q", port.ErrUnknownColumn, key, screen)
	}
	snap, err := s.loaded(ctx, def, scope)
	if err != nil {
		return nil, err
	}
	return tableview.NarrowCandidates(tableview.Candidates(snap.Rows, *col), term), nil
}

// Refresh re-fetches the store of a screen. On failure the previous rows stay in
// place and the error wraps port.ErrFetchFailed.
func (s *Service) Refresh(ctx context.Context, screen string, scope port.Scope) (*RefreshResult, error) {
	def, _, err := s.registry.Screen(screen)
	if err != nil {
		return nil, err
	}
	key := cacheKey(def, scope)
	store := s.store(key)
	_, err = store.Refresh(ctx, s.fetch(def, scope))
	snap := store.Snapshot()
	switch {
	case errors.Is(err, tableview.ErrStaleResponse):
		observe.ViewLoads.WithLabelValues(def.Name, "stale").Inc()
	case err != nil:
		observe.ViewLoads.WithLabelValues(def.Name, "error").Inc()
		slog.Warn("view refresh failed", "screen", def.Name, "error", err)
		return nil, fetchError(def.Name, err)
	default:
		observe.ViewLoads.WithLabelValues(def.Name, "ok").Inc()
	}
	return &RefreshResult{Screen: def.Name, Generation: snap.Generation, Total: len(snap.Rows), LoadedAt: snap.LoadedAt}, nil
}

// InvalidateDatasets drops the cached stores of every screen sourced from one of
// datasets, and of screens that no longer exist.
func (s *Service) InvalidateDatasets(datasets ...string) {
	s.invalidate(func(def *domain.ScreenDefinition) bool {
		return def.Source.Dataset != "" && slices.Contains(datasets, def.Source.Dataset)
	})
}

// InvalidateScreens drops the cached stores of the named screens.
func (s *Service) InvalidateScreens(names []string) {
	s.invalidate(func(def *domain.ScreenDefinition) bool {
		return slices.Contains(names, def.Name)
	})
}

func (s *Service) invalidate(match func(def *domain.ScreenDefinition) bool) {
	s.storesMu.Lock()
	defer s.storesMu.Unlock()
	for _, key := range s.stores.Keys() {
		def, _, err := s.registry.Screen(screenOf(key))
		if err != nil || match(def) {
			s.stores.Remove(key)
		}
	}
}

// CachedStores reports how many stores are held.
func (s *Service) CachedStores() int {
	return s.stores.Len()
}

func (s *Service) pageSize(def *domain.ScreenDefinition, requested int) int {
	switch {
	case requested > 0:
		return requested
	case def.PageSize > 0:
		return def.PageSize
	}
	return s.defaultPageSize
}

// store returns the cached store for key, creating it when missing.
func (s *Service) store(key string) *tableview.Store {
	s.storesMu.Lock()
	defer s.storesMu.Unlock()
	if st, ok := s.stores.Get(key); ok {
		return st
	}
	st := tableview.NewStore()
	s.stores.Add(key, st)
	return st
}

func (s *Service) fetch(def *domain.ScreenDefinition, scope port.Scope) tableview.FetchFunc {
	return func(ctx context.Context) ([]tableview.Row, error) {
		return s.source.Rows(ctx, def, scope)
	}
}

// loaded returns the snapshot of the screen's store, loading it once when empty.
// Concurrent first requests share one fetch.
func (s *Service) loaded(ctx context.Context, def *domain.ScreenDefinition, scope port.Scope) (tableview.Snapshot, error) {
	key := cacheKey(def, scope)
	store := s.store(key)
	if snap := store.Snapshot(); snap.Loaded {
		return snap, nil
	}

	_, err, _ := s.loads.Do(key, func() (any, error) {
		if store.Snapshot().Loaded {
			return nil, nil
		}
		started := time.Now()
		gen, err := store.Refresh(context.WithoutCancel(ctx), s.fetch(def, scope))
		if err == nil {
			observe.ViewLoads.WithLabelValues(def.Name, "ok").Inc()
			slog.Debug("view store loaded", "screen", def.Name, "generation", gen, "elapsed", time.Since(started))
		}
		return nil, err
	})
	snap := store.Snapshot()
	if errors.Is(err, tableview.ErrStaleResponse) && !snap.Loaded {
		// A refresh superseded the first load: read its result instead.
		var werr error
		if snap, werr = store.Wait(ctx); werr != nil {
			return tableview.Snapshot{}, werr
		}
		if !snap.Loaded && snap.LastError != nil {
			err = snap.LastError
		}
	}
	if err != nil {
		if errors.Is(err, tableview.ErrStaleResponse) && snap.Loaded {
			return snap, nil
		}
		observe.ViewLoads.WithLabelValues(def.Name, "error").Inc()
		slog.Warn("view load failed", "screen", def.Name, "error", err)
		return tableview.Snapshot{}, fetchError(def.Name, err)
	}
	return snap, nil
}

func fetchError(screen string, err error) error {
	if errors.Is(err, port.ErrFetchFailed) {
		return err
	}
	return fmt.Errorf("%w: screen %q: %w", port.ErrFetchFailed, screen, err)
}

// aggregates binds the screen's summary figures to its compiled columns.
func aggregates(def *domain.ScreenDefinition, cols []tableview.Column) []tableview.Aggregate {
	out := make([]tableview.Aggregate, 0, len(def.Aggregates))
	for _, spec := range def.Aggregates {
		agg := tableview.Aggregate{Name: spec.Name, Op: tableview.AggregateOp(spec.Op)}
		if c := findColumn(cols, spec.Key); c != nil {
			agg.Value = *c
		}
		if c := findColumn(cols, spec.Of); c != nil {
			agg.Weight = *c
		}
		out = append(out, agg)
	}
	return out
}

func findColumn(cols []tableview.Column, key string) *tableview.Column {
	for i := range cols {
		if cols[i].Key == key {
			return &cols[i]
		}
	}
	return nil
}

// cacheKey is "screen|backoffice|coordinator"; unscoped screens share one store.
func cacheKey(def *domain.ScreenDefinition, scope port.Scope) string {
	if !def.Source.Scoped {
		scope = port.Scope{}
	}
	return def.Name + "|" + scope.BackOfficeEmail + "|" + scope.CoordinatorEmail
}

func screenOf(key string) string {
	name, _, _ := strings.Cut(key, "|")
	return name
}
