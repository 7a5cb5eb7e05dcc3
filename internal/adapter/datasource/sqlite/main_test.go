// file: internal/adapter/datasource/sqlite/main_test.go
package sqlite

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/service"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// ============================================================================
//  Shared test helpers
// ============================================================================

// newTestRepo opens a fresh database file with the application schema.
func newTestRepo(t *testing.T) (*Repository, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gestionbc.db")

	db, err := sql.Open(DriverName, DSN(path))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, service.InitDomainTables(db))

	repo, err := NewRepository(db)
	require.NoError(t, err)
	return repo, db
}

// fixture holds the ids of the reference data seeded by seedFixture.
type fixture struct {
	ZoneID       int64
	SiteID       int64
	FamilleID    int64
	ServiceID    int64
	BackOffice   domain.User
	Coordinateur domain.User
	Chef         domain.User
}

func ptr[T any](v T) *T { return &v }

// seedFixture inserts one zone, site, famille, service (prix 100) and one user per role.
func seedFixture(t *testing.T, repo *Repository) fixture {
	t.Helper()
	ctx := context.Background()
	var fx fixture
	var err error

	fx.ZoneID, err = repo.CreateZone(ctx, "Nord")
	require.NoError(t, err)

	site := domain.Site{CodeSite: "S-001", Region: "Tanger", ZoneID: &fx.ZoneID}
	require.NoError(t, repo.CreateSite(ctx, &site))
	fx.SiteID = site.ID

	fam, err := repo.CreateFamille(ctx, "Energie")
	require.NoError(t, err)
	fx.FamilleID = fam.ID

	svc := domain.Service{FamilleID: &fx.FamilleID, RefAuxigene: "AUX-1", Description: "Pose armoire", Unite: "U", Prix: 100}
	require.NoError(t, repo.CreateService(ctx, &svc))
	fx.ServiceID = svc.ID

	fx.BackOffice = domain.User{Nom: "Back", Email: "bo@example.com", Role: domain.RoleBackOffice}
	require.NoError(t, repo.CreateUser(ctx, &fx.BackOffice))
	fx.Coordinateur = domain.User{Nom: "Coord", Email: "coord@example.com", Role: domain.RoleCoordinateur, ZoneID: &fx.ZoneID}
	require.NoError(t, repo.CreateUser(ctx, &fx.Coordinateur))
	fx.Chef = domain.User{Nom: "Chef", Email: "chef@example.com", Role: domain.RoleChefProjet}
	require.NoError(t, repo.CreateUser(ctx, &fx.Chef))

	return fx
}

// seedBc creates BC1 with one line of 10 units of the fixture service.
func seedBc(t *testing.T, repo *Repository, fx fixture) *domain.BonDeCommande {
	t.Helper()
	bc := &domain.BonDeCommande{
		NumBc:          "BC1",
		DivisionProjet: "DIV",
		CodeProjet:     "CP-1",
		Description:    "Armoires Nord",
		DateEdition:    ptr("2024-03-15"),
		BackOfficeID:   &fx.BackOffice.ID,
		Prestations: []domain.Prestation{
			{NumLigne: 1, Famille: "Energie", Description: "Pose", QteBc: 10, ServiceID: &fx.ServiceID},
		},
	}
	require.NoError(t, repo.CreateBonDeCommande(context.Background(), bc))
	return bc
}
