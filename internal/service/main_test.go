// file: internal/service/main_test.go
package service

import (
	"GestionBC/internal/adapter/datasource/sqlite"
	"GestionBC/internal/core/domain"
	"context"
	"database/sql"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================================
//  Shared test helpers
// ============================================================================

// recordingInvalidator remembers every dataset it was asked to drop.
type recordingInvalidator struct {
	mu   sync.Mutex
	seen map[string]int
}

func newRecordingInvalidator() *recordingInvalidator {
	return &recordingInvalidator{seen: make(map[string]int)}
}

func (r *recordingInvalidator) InvalidateDatasets(datasets ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range datasets {
		r.seen[d]++
	}
}

func (r *recordingInvalidator) datasets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.seen))
	for d := range r.seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (r *recordingInvalidator) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = make(map[string]int)
}

// recordingMailer keeps the messages instead of sending them.
type recordingMailer struct {
	mu   sync.Mutex
	sent [][]string
}

func (m *recordingMailer) Send(_ context.Context, to []string, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, append([]string(nil), to...))
	return nil
}

type env struct {
	repo         *sqlite.Repository
	views        *recordingInvalidator
	zoneID       int64
	siteID       int64
	serviceID    int64
	backOffice   domain.User
	coordinateur domain.User
	chef         domain.User
}

func ptr[T any](v T) *T { return &v }

// newEnv opens a fresh database and seeds one zone, site, famille "Energie",
// service (prix 100) and one user per role.
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db, err := sql.Open(sqlite.DriverName, sqlite.DSN(filepath.Join(t.TempDir(), "gestionbc.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitDomainTables(db))

	repo, err := sqlite.NewRepository(db)
	require.NoError(t, err)
	e := &env{repo: repo, views: newRecordingInvalidator()}

	e.zoneID, err = repo.CreateZone(ctx, "Nord")
	require.NoError(t, err)
	site := domain.Site{CodeSite: "S-001", Region: "Tanger", ZoneID: &e.zoneID}
	require.NoError(t, repo.CreateSite(ctx, &site))
	e.siteID = site.ID

	fam, err := repo.CreateFamille(ctx, "Energie")
	require.NoError(t, err)
	svc := domain.Service{FamilleID: &fam.ID, RefAuxigene: "AUX-1", Description: "Pose armoire", Unite: "U", Prix: 100}
	require.NoError(t, repo.CreateService(ctx, &svc))
	e.serviceID = svc.ID

	e.backOffice = domain.User{Nom: "Back", Email: "bo@example.com", Role: domain.RoleBackOffice}
	require.NoError(t, repo.CreateUser(ctx, &e.backOffice))
	e.coordinateur = domain.User{Nom: "Coord", Email: "coord@example.com", Role: domain.RoleCoordinateur, ZoneID: &e.zoneID}
	require.NoError(t, repo.CreateUser(ctx, &e.coordinateur))
	e.chef = domain.User{Nom: "Chef", Email: "chef@example.com", Role: domain.RoleChefProjet}
	require.NoError(t, repo.CreateUser(ctx, &e.chef))
	return e
}

func (e *env) bcService(t *testing.T) *BonDeCommandeService {
	t.Helper()
	s, err := NewBonDeCommandeService(e.repo, e.repo, e.repo, e.views)
	require.NoError(t, err)
	return s
}

// bcRequest orders 10 units of the seeded service for bo@example.com.
func (e *env) bcRequest(numBc string) *domain.BonDeCommandeRequest {
	return &domain.BonDeCommandeRequest{
		NumBc:           numBc,
		DivisionProjet:  "DIV",
		CodeProjet:      "CP-1",
		Description:     "Armoires Nord",
		DateEdition:     ptr("2024-03-15"),
		BackOfficeEmail: e.backOffice.Email,
		Prestations: []domain.PrestationRequest{
			{Famille: "Energie", Description: "Pose", QteBc: 10, ServiceID: &e.serviceID},
		},
	}
}
