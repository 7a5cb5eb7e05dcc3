// file: internal/service/view/view_test.go
package view

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"GestionBC/internal/service/view_config"
	"GestionBC/internal/tableview"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned rows per screen and counts the fetches.
type fakeSource struct {
	mu    sync.Mutex
	rows  map[string][]tableview.Row
	err   error
	calls map[string]int
	gate  chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{rows: make(map[string][]tableview.Row), calls: make(map[string]int)}
}

func (f *fakeSource) Rows(ctx context.Context, def *domain.ScreenDefinition, scope port.Scope) ([]tableview.Row, error) {
	f.mu.Lock()
	f.calls[def.Name+"|"+scope.BackOfficeEmail+"|"+scope.CoordinatorEmail]++
	gate, err := f.gate, f.err
	rows := f.rows[def.Name]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if scope.BackOfficeEmail != "" {
		scoped := make([]tableview.Row, 0, len(rows))
		for _, r := range rows {
			if r["owner"] == scope.BackOfficeEmail {
				scoped = append(scoped, r)
			}
		}
		return scoped, nil
	}
	return rows, nil
}

func (f *fakeSource) set(screen string, rows []tableview.Row, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[screen] = rows
	f.err = err
}

func (f *fakeSource) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func siteRows(n int) []tableview.Row {
	rows := make([]tableview.Row, 0, n)
	for i := 1; i <= n; i++ {
		region := "Tanger"
		if i%2 == 0 {
			region = "Fès"
		}
		rows = append(rows, tableview.Row{
			"codesite": fmt.Sprintf("S-%03d", i),
			"region":   region,
			"zone":     map[string]any{"nom": "Nord"},
		})
	}
	return rows
}

func newTestService(t *testing.T, src *fakeSource) *Service {
	t.Helper()
	reg, err := view_config.NewRegistry("")
	require.NoError(t, err)
	svc, err := NewService(reg, src, Options{})
	require.NoError(t, err)
	return svc
}

func TestService_RowsPipeline(t *testing.T) {
	src := newFakeSource()
	src.set(domain.DatasetSites, siteRows(30), nil)
	svc := newTestService(t, src)
	ctx := context.Background()

	t.Run("screen page size and pager", func(t *testing.T) {
		page, err := svc.Rows(ctx, domain.DatasetSites, Query{Page: 2})
		require.NoError(t, err)
		assert.Equal(t, 30, page.Total)
		assert.Equal(t, 25, page.Size)
		assert.Equal(t, 2, page.PageCount)
		assert.Equal(t, 2, page.DisplayPages)
		assert.Equal(t, []int{1, 2}, page.PageWindow)
		assert.Len(t, page.Data, 5)
		assert.Nil(t, page.Cells)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		page, err := svc.Rows(ctx, domain.DatasetSites, Query{Search: "FÈS"})
		require.NoError(t, err)
		assert.Equal(t, 15, page.Total)
	})

	t.Run("filters and sort", func(t *testing.T) {
		page, err := svc.Rows(ctx, domain.DatasetSites, Query{
			Filters: tableview.Filters{"region": tableview.NewValueSet("Tanger")},
			Sort:    &tableview.Sort{Key: "codesite", Direction: tableview.Desc},
			Size:    5,
		})
		require.NoError(t, err)
		assert.Equal(t, 15, page.Total)
		assert.Equal(t, 3, page.PageCount)
		require.Len(t, page.Data, 5)
		assert.Equal(t, "S-029", page.Data[0]["codesite"])
	})

	t.Run("formatted cells", func(t *testing.T) {
		page, err := svc.Rows(ctx, domain.DatasetSites, Query{Size: 2, Format: true})
		require.NoError(t, err)
		require.Len(t, page.Cells, 2)
		assert.Equal(t, "S-001", page.Cells[0]["codesite"].Text)
		assert.Equal(t, "Nord", page.Cells[0]["zone.nom"].Text)
	})

	t.Run("out of range page", func(t *testing.T) {
		page, err := svc.Rows(ctx, domain.DatasetSites, Query{Page: 9})
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.Equal(t, 30, page.Total)
	})

	assert.Equal(t, 1, src.totalCalls(), "the store is loaded once")
}

func TestService_EmptyViewShowsOnePage(t *testing.T) {
	src := newFakeSource()
	svc := newTestService(t, src)

	page, err := svc.Rows(context.Background(), domain.DatasetSites, Query{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Zero(t, page.PageCount)
	assert.Equal(t, 1, page.DisplayPages)
	assert.Equal(t, []int{1}, page.PageWindow)
}

func TestService_DefaultSort(t *testing.T) {
	src := newFakeSource()
	src.set(domain.DatasetOts, []tableview.Row{{"num_ot": "OT2"}, {"num_ot": "OT3"}, {"num_ot": "OT1"}}, nil)
	svc := newTestService(t, src)

	page, err := svc.Rows(context.Background(), domain.DatasetOts, Query{})
	require.NoError(t, err)
	require.NotNil(t, page.Sort)
	assert.Equal(t, "num_ot", page.Sort.Key)
	assert.Equal(t, tableview.Asc, page.Sort.Direction)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "OT1", page.Data[0]["num_ot"])

	page, err = svc.Rows(context.Background(), domain.DatasetOts, Query{Sort: &tableview.Sort{Key: "num_ot", Direction: tableview.Desc}})
	require.NoError(t, err)
	assert.Equal(t, "OT3", page.Data[0]["num_ot"])
}

func TestService_Errors(t *testing.T) {
	src := newFakeSource()
	src.set(domain.DatasetSites, siteRows(3), nil)
	svc := newTestService(t, src)
	ctx := context.Background()

	_, err := svc.Rows(ctx, "nope", Query{})
	assert.ErrorIs(t, err, port.ErrUnknownScreen)

	_, err = svc.Rows(ctx, domain.DatasetSites, Query{Filters: tableview.Filters{"ghost": tableview.NewValueSet("x")}})
	assert.ErrorIs(t, err, port.ErrUnknownColumn)

	_, err = svc.Values(ctx, domain.DatasetSites, "ghost", "", port.Scope{})
	assert.ErrorIs(t, err, port.ErrUnknownColumn)

	_, err = svc.Columns("nope")
	assert.ErrorIs(t, err, port.ErrUnknownScreen)
}

func TestService_Values(t *testing.T) {
	src := newFakeSource()
	src.set(domain.DatasetSites, siteRows(4), nil)
	svc := newTestService(t, src)
	ctx := context.Background()

	values, err := svc.Values(ctx, domain.DatasetSites, "region", "", port.Scope{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fès", "Tanger"}, values)

	values, err = svc.Values(ctx, domain.DatasetSites, "region", "TAN", port.Scope{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tanger"}, values)

	// Candidates ignore the active filters: they come from the unfiltered store.
	_, err = svc.Rows(ctx, domain.DatasetSites, Query{Filters: tableview.Filters{"region": tableview.NewValueSet("Fès")}})
	require.NoError(t, err)
	values, err = svc.Values(ctx, domain.DatasetSites, "codesite", "", port.Scope{})
	require.NoError(t, err)
	assert.Len(t, values, 4)
}

func TestService_Columns(t *testing.T) {
	svc := newTestService(t, newFakeSource())
	cols, err := svc.Columns(domain.DatasetSuivi)
	require.NoError(t, err)

	byKey := make(map[string]ColumnDescriptor, len(cols))
	for _, c := range cols {
		byKey[c.Key] = c
	}
	assert.Equal(t, "Qté Réalisée", byKey["qte_realise"].Label)
	assert.Equal(t, "quantity", byKey["qte_realise"].Type)
	assert.True(t, byKey["qte_realise"].Filterable)
	assert.True(t, byKey["montant_realise"].Computed)
	assert.False(t, byKey["montant_realise"].Filterable)

	screens := svc.Screens()
	require.Len(t, screens, len(domain.Datasets))
	for i := 1; i < len(screens); i++ {
		assert.Less(t, screens[i-1].Name, screens[i].Name)
	}
}

func TestService_FetchFailureAndRefresh(t *testing.T) {
	src := newFakeSource()
	src.set(domain.DatasetSites, nil, errors.New("upstream down"))
	svc := newTestService(t, src)
	ctx := context.Background()

	_, err := svc.Rows(ctx, domain.DatasetSites, Query{})
	require.ErrorIs(t, err, port.ErrFetchFailed)
	assert.Contains(t, err.Error(), "upstream down")

	src.set(domain.DatasetSites, siteRows(2), nil)
	page, err := svc.Rows(ctx, domain.DatasetSites, Query{})
	require.NoError(t, err, "the next request tries again")
	assert.Equal(t, 2, page.Total)
	firstGen := page.Generation

	src.set(domain.DatasetSites, siteRows(5), nil)
	res, err := svc.Refresh(ctx, domain.DatasetSites, port.Scope{})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Greater(t, res.Generation, firstGen)

	src.set(domain.DatasetSites, nil, errors.New("upstream down again"))
	_, err = svc.Refresh(ctx, domain.DatasetSites, port.Scope{})
	require.ErrorIs(t, err, port.ErrFetchFailed)

	page, err = svc.Rows(ctx, domain.DatasetSites, Query{})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total, "previous rows survive a failed refresh")

	_, err = svc.Refresh(ctx, "nope", port.Scope{})
	assert.ErrorIs(t, err, port.ErrUnknownScreen)
}

func TestService_ScopedStores(t *testing.T) {
	src := newFakeSource()
	src.set(domain.DatasetSuivi, []tableview.Row{
		{"num_bc": "BC1", "owner": "a@example.com"},
		{"num_bc": "BC2", "owner": "b@example.com"},
		{"num_bc": "BC3", "owner": "b@example.com"},
	}, nil)
	src.set(domain.DatasetSites, siteRows(2), nil)
	svc := newTestService(t, src)
	ctx := context.Background()

	a, err := svc.Rows(ctx, domain.DatasetSuivi, Query{Scope: port.Scope{BackOfficeEmail: "a@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Total)
	b, err := svc.Rows(ctx, domain.DatasetSuivi, Query{Scope: port.Scope{BackOfficeEmail: "b@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Total)

	// Unscoped screens ignore the scope and share one store.
	_, err = svc.Rows(ctx, domain.DatasetSites, Query{Scope: port.Scope{BackOfficeEmail: "a@example.com"}})
	require.NoError(t, err)
	_, err = svc.Rows(ctx, domain.DatasetSites, Query{Scope: port.Scope{BackOfficeEmail: "b@example.com"}})
	require.NoError(t, err)

	assert.Equal(t, 3, src.totalCalls())
	assert.Equal(t, 3, svc.CachedStores())
}

func TestService_Invalidation(t *testing.T) {
	src := newFakeSource()
	src.set(domain.DatasetSites, siteRows(2), nil)
	src.set(domain.DatasetOts, []tableview.Row{{"num_ot": "OT1"}}, nil)
	svc := newTestService(t, src)
	ctx := context.Background()

	for _, screen := range []string{domain.DatasetSites, domain.DatasetOts} {
		_, err := svc.Rows(ctx, screen, Query{})
		require.NoError(t, err)
	}
	require.Equal(t, 2, svc.CachedStores())

	svc.InvalidateDatasets(domain.DatasetOts, domain.DatasetBcSummary)
	assert.Equal(t, 1, svc.CachedStores())

	_, err := svc.Rows(ctx, domain.DatasetOts, Query{})
	require.NoError(t, err)
	assert.Equal(t, 3, src.totalCalls(), "invalidated screen reloads")

	svc.InvalidateScreens([]string{domain.DatasetSites})
	assert.Equal(t, 1, svc.CachedStores())
}

func TestService_ConcurrentFirstLoadSharesFetch(t *testing.T) {
	src := newFakeSource()
	src.set(domain.DatasetSites, siteRows(3), nil)
	src.gate = make(chan struct{})
	svc := newTestService(t, src)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Rows(context.Background(), domain.DatasetSites, Query{})
			errs <- err
		}()
	}
	close(src.gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, src.totalCalls())
}

func TestService_FirstLoadSurvivesConcurrentRefresh(t *testing.T) {
	src := newFakeSource()
	src.set(domain.DatasetSites, siteRows(3), nil)
	src.gate = make(chan struct{})
	svc := newTestService(t, src)
	ctx := context.Background()

	type result struct {
		page *RowsPage
		err  error
	}
	rowsDone := make(chan result, 1)
	go func() {
		page, err := svc.Rows(ctx, domain.DatasetSites, Query{})
		rowsDone <- result{page, err}
	}()
	require.Eventually(t, func() bool { return src.totalCalls() == 1 }, time.Second, 5*time.Millisecond)

	refreshDone := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(ctx, domain.DatasetSites, port.Scope{})
		refreshDone <- err
	}()
	require.Eventually(t, func() bool { return src.totalCalls() == 2 }, time.Second, 5*time.Millisecond)
	close(src.gate)

	require.NoError(t, <-refreshDone)
	res := <-rowsDone
	require.NoError(t, res.err, "the reader gets the rows of the superseding refresh")
	assert.Equal(t, 3, res.page.Total)
	assert.Equal(t, 2, src.totalCalls())
}

func TestService_StatsCoverFilteredRows(t *testing.T) {
	src := newFakeSource()
	src.set(domain.DatasetBcSummary, []tableview.Row{
		{"num_bc": "BC1", "code_projet": "P1", "montant_ht": 1000.0, "montant_cloture": 400.0, "taux_realisation": 0.4},
		{"num_bc": "BC2", "code_projet": "P1", "montant_ht": 500.0, "montant_cloture": 500.0, "taux_realisation": 1.0},
		{"num_bc": "BC3", "code_projet": "P2", "montant_ht": 250.0, "montant_cloture": 0.0, "taux_realisation": 0.0},
	}, nil)
	svc := newTestService(t, src)
	ctx := context.Background()

	page, err := svc.Rows(ctx, domain.DatasetBcSummary, Query{
		Filters: tableview.Filters{"code_projet": tableview.NewValueSet("P1")},
		Size:    1,
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 1, "stats are computed before pagination")
	assert.Equal(t, 2.0, page.Stats["total_bcs"])
	assert.Equal(t, 1500.0, page.Stats["total_montant_ht"])
	assert.Equal(t, 900.0, page.Stats["total_montant_cloture"])
	assert.InDelta(t, 0.7, page.Stats["avg_taux_realisation"], 1e-9)

	page, err = svc.Rows(ctx, domain.DatasetBcSummary, Query{Search: "nothing matches"})
	require.NoError(t, err)
	assert.Zero(t, page.Stats["total_bcs"])
	assert.Zero(t, page.Stats["avg_taux_realisation"])

	src.set(domain.DatasetSites, siteRows(2), nil)
	page, err = svc.Rows(ctx, domain.DatasetSites, Query{})
	require.NoError(t, err)
	assert.Nil(t, page.Stats, "screens without aggregates carry no stats")
}
