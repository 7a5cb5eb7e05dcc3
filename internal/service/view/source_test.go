// file: internal/service/view/source_test.go
package view

import (
	"GestionBC/internal/adapter/datasource/sqlite"
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"GestionBC/internal/service"
	"GestionBC/internal/service/view_config"
	"GestionBC/internal/tableview"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRemote struct {
	got  domain.ScreenSource
	rows []tableview.Row
}

func (s *stubRemote) Rows(_ context.Context, src domain.ScreenSource) ([]tableview.Row, error) {
	s.got = src
	return s.rows, nil
}

func newSQLiteRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	db, err := sql.Open(sqlite.DriverName, sqlite.DSN(filepath.Join(t.TempDir(), "view.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, service.InitDomainTables(db))
	repo, err := sqlite.NewRepository(db)
	require.NoError(t, err)
	return repo
}

func TestSource_BuiltinDataset(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	zoneID, err := repo.CreateZone(ctx, "Sud")
	require.NoError(t, err)
	require.NoError(t, repo.CreateSite(ctx, &domain.Site{CodeSite: "S-900", Region: "Agadir", ZoneID: &zoneID}))

	src := NewSource(Repositories{Catalog: repo, Bcs: repo, Reports: repo, Suivi: repo, Ots: repo}, nil)
	reg, err := view_config.NewRegistry("")
	require.NoError(t, err)
	svc, err := NewService(reg, src, Options{})
	require.NoError(t, err)

	page, err := svc.Rows(ctx, domain.DatasetSites, Query{Format: true})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "S-900", page.Data[0]["codesite"])
	assert.Equal(t, "Sud", page.Cells[0]["zone.nom"].Text)

	for _, screen := range domain.Datasets {
		_, err := svc.Rows(ctx, screen, Query{Scope: port.Scope{BackOfficeEmail: "nobody@example.com"}})
		assert.NoError(t, err, screen)
	}
}

func TestSource_RemoteAndUnknown(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{rows: []tableview.Row{{"id": 1.0}}}
	src := NewSource(Repositories{}, remote)

	def := &domain.ScreenDefinition{Name: "externe", Source: domain.ScreenSource{URL: "https://example.com/rows", Token: "t0k"}}
	rows, err := src.Rows(ctx, def, port.Scope{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "t0k", remote.got.Token)

	_, err = NewSource(Repositories{}, nil).Rows(ctx, def, port.Scope{})
	assert.ErrorIs(t, err, port.ErrFetchFailed)

	_, err = src.Rows(ctx, &domain.ScreenDefinition{Name: "x", Source: domain.ScreenSource{Dataset: "nowhere"}}, port.Scope{})
	assert.ErrorIs(t, err, port.ErrUnknownScreen)
}
