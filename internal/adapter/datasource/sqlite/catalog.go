// Package sqlite file: internal/adapter/datasource/sqlite/catalog.go
package sqlite

import (
	"GestionBC/internal/core/domain"
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

func (r *Repository) ListZones(ctx context.Context) ([]domain.Zone, error) {
	zones := []domain.Zone{}
	if err := r.db.SelectContext(ctx, &zones, `SELECT id, nom FROM zones ORDER BY nom`); err != nil {
		return nil, mapError(err, "list zones")
	}
	return zones, nil
}

// ListSites returns every site with its zone attached.
func (r *Repository) ListSites(ctx context.Context) ([]domain.Site, error) {
	sites := []domain.Site{}
	if err := r.db.SelectContext(ctx, &sites, `SELECT id, codesite, region, zone_id FROM sites ORDER BY codesite`); err != nil {
		return nil, mapError(err, "list sites")
	}
	zones, err := r.zoneIndex(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sites {
		if sites[i].ZoneID != nil {
			sites[i].Zone = zones[*sites[i].ZoneID]
		}
	}
	return sites, nil
}

func (r *Repository) ListFamilles(ctx context.Context) ([]domain.Famille, error) {
	familles := []domain.Famille{}
	if err := r.db.SelectContext(ctx, &familles, `SELECT id, name FROM familles ORDER BY name`); err != nil {
		return nil, mapError(err, "list familles")
	}
	return familles, nil
}

func (r *Repository) CreateFamille(ctx context.Context, name string) (*domain.Famille, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO familles (name) VALUES (?)`, strings.TrimSpace(name))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("create famille %q", name))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create famille %q: %w", name, err)
	}
	return &domain.Famille{ID: id, Name: strings.TrimSpace(name)}, nil
}

const serviceColumns = `id, famille_id, ref_auxigene, description, unite, type, prix, remarque,
	modele_technique, type_materiel, specification, famille_technique`

// ListServices returns the catalog, optionally restricted to one famille.
func (r *Repository) ListServices(ctx context.Context, familleID *int64) ([]domain.Service, error) {
	services := []domain.Service{}
	var err error
	if familleID != nil {
		err = r.db.SelectContext(ctx, &services, `SELECT `+serviceColumns+` FROM services WHERE famille_id = ? ORDER BY ref_auxigene`, *familleID)
	} else {
		err = r.db.SelectContext(ctx, &services, `SELECT `+serviceColumns+` FROM services ORDER BY ref_auxigene`)
	}
	if err != nil {
		return nil, mapError(err, "list services")
	}
	if err := r.attachFamilles(ctx, services); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *Repository) CreateService(ctx context.Context, svc *domain.Service) error {
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO services
		(famille_id, ref_auxigene, description, unite, type, prix, remarque, modele_technique, type_materiel, specification, famille_technique)
		VALUES (:famille_id, :ref_auxigene, :description, :unite, :type, :prix, :remarque, :modele_technique, :type_materiel, :specification, :famille_technique)`, svc)
	if err != nil {
		return mapError(err, fmt.Sprintf("create service %q", svc.RefAuxigene))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create service %q: %w", svc.RefAuxigene, err)
	}
	svc.ID = id
	return nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT id, nom, email, role, zone_id FROM utilisateurs WHERE email = ?`, email)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("find user %q", email))
	}
	return &u, nil
}

func (r *Repository) ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users := []domain.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT id, nom, email, role, zone_id FROM utilisateurs WHERE role = ? ORDER BY id`, string(role)); err != nil {
		return nil, mapError(err, "list users")
	}
	return users, nil
}

// CreateUser inserts a user; used for seeding.
func (r *Repository) CreateUser(ctx context.Context, u *domain.User) error {
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO utilisateurs (nom, email, role, zone_id) VALUES (:nom, :email, :role, :zone_id)`, u)
	if err != nil {
		return mapError(err, fmt.Sprintf("create user %q", u.Email))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// CreateZone and CreateSite are used for seeding reference data.
func (r *Repository) CreateZone(ctx context.Context, nom string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO zones (nom) VALUES (?)`, nom)
	if err != nil {
		return 0, mapError(err, fmt.Sprintf("create zone %q", nom))
	}
	return res.LastInsertId()
}

func (r *Repository) CreateSite(ctx context.Context, s *domain.Site) error {
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO sites (codesite, region, zone_id) VALUES (:codesite, :region, :zone_id)`, s)
	if err != nil {
		return mapError(err, fmt.Sprintf("create site %q", s.CodeSite))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r *Repository) zoneIndex(ctx context.Context) (map[int64]*domain.Zone, error) {
	zones, err := r.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[int64]*domain.Zone, len(zones))
	for i := range zones {
		idx[zones[i].ID] = &zones[i]
	}
	return idx, nil
}

func (r *Repository) siteIndex(ctx context.Context) (map[int64]*domain.Site, error) {
	sites, err := r.ListSites(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[int64]*domain.Site, len(sites))
	for i := range sites {
		idx[sites[i].ID] = &sites[i]
	}
	return idx, nil
}

func (r *Repository) attachFamilles(ctx context.Context, services []domain.Service) error {
	if len(services) == 0 {
		return nil
	}
	familles, err := r.ListFamilles(ctx)
	if err != nil {
		return err
	}
	idx := make(map[int64]*domain.Famille, len(familles))
	for i := range familles {
		idx[familles[i].ID] = &familles[i]
	}
	for i := range services {
		if services[i].FamilleID != nil {
			services[i].Famille = idx[*services[i].FamilleID]
		}
	}
	return nil
}

// servicesByID loads the given services with their familles.
func (r *Repository) servicesByID(ctx context.Context, ids []int64) (map[int64]*domain.Service, error) {
	out := make(map[int64]*domain.Service)
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+serviceColumns+` FROM services WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	services := []domain.Service{}
	if err := r.db.SelectContext(ctx, &services, r.db.Rebind(query), args...); err != nil {
		return nil, mapError(err, "load services")
	}
	if err := r.attachFamilles(ctx, services); err != nil {
		return nil, err
	}
	for i := range services {
		out[services[i].ID] = &services[i]
	}
	return out, nil
}

// usersByID loads the given users.
func (r *Repository) usersByID(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	out := make(map[int64]*domain.User)
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT id, nom, email, role, zone_id FROM utilisateurs WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	users := []domain.User{}
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, mapError(err, "load users")
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// collectIDs gathers the distinct non-nil ids.
func collectIDs[T any](items []T, get func(*T) *int64) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for i := range items {
		if id := get(&items[i]); id != nil {
			if _, dup := seen[*id]; !dup {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	return ids
}
