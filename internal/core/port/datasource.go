// Package port file: internal/core/port/datasource.go
package port

import (
	"GestionBC/internal/core/domain"
	"context"
	"errors"
)

// Standard errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrConflict      = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnknownScreen = errors.New("unknown screen")
	ErrUnknownColumn = errors.New("unknown column")
	ErrFetchFailed   = errors.New("data source fetch failed")
)

// Scope restricts a listing to one back-office or coordinator e-mail. The zero value
// means no restriction.
type Scope struct {
	BackOfficeEmail  string
	CoordinatorEmail string
}

// IsZero reports whether s carries no restriction.
func (s Scope) IsZero() bool {
	return s.BackOfficeEmail == "" && s.CoordinatorEmail == ""
}

// CatalogRepository covers zones, sites, familles, services and users.
type CatalogRepository interface {
	ListZones(ctx context.Context) ([]domain.Zone, error)
	ListSites(ctx context.Context) ([]domain.Site, error)
	ListFamilles(ctx context.Context) ([]domain.Famille, error)
	CreateFamille(ctx context.Context, name string) (*domain.Famille, error)
	ListServices(ctx context.Context, familleID *int64) ([]domain.Service, error)
	CreateService(ctx context.Context, svc *domain.Service) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// BonDeCommandeRepository persists bons de commande with their prestation lines.
type BonDeCommandeRepository interface {
	CreateBonDeCommande(ctx context.Context, bc *domain.BonDeCommande) error
	ListBonDeCommandes(ctx context.Context, scope Scope) ([]domain.BonDeCommande, error)
	GetBonDeCommande(ctx context.Context, numBc string) (*domain.BonDeCommande, error)
	UpdateBonDeCommande(ctx context.Context, bc *domain.BonDeCommande) error
	DeleteBonDeCommande(ctx context.Context, numBc string) error
	ListPrestations(ctx context.Context, numBc string) ([]domain.Prestation, error)
	ListServicesOfBc(ctx context.Context, numBc string) ([]domain.ServiceSummary, error)
}

// ReportRepository runs the aggregate queries. An empty email aggregates everything.
type ReportRepository interface {
	BcSummaries(ctx context.Context, email string) ([]domain.BcSummary, error)
	BcDetails(ctx context.Context, email string) ([]domain.BcDetail, error)
	TableauDeBord(ctx context.Context, email string) ([]domain.TableauDeBord, error)
	OtMetrics(ctx context.Context, email string) (*domain.OtMetrics, error)
}

// SuiviRepository persists suivi de prestation rows. Field maps use column names.
type SuiviRepository interface {
	ListSuivi(ctx context.Context, scope Scope) ([]domain.SuiviPrestation, error)
	GetSuivi(ctx context.Context, id int64) (*domain.SuiviPrestation, error)
	CreateSuivi(ctx context.Context, prestationID string, fields map[string]any) (int64, error)
	UpdateSuivi(ctx context.Context, id int64, fields map[string]any) error
	BulkUpdateSuivi(ctx context.Context, items []domain.SuiviBulkItem) error
}

// OtRepository persists ordres de travail.
type OtRepository interface {
	CreateOt(ctx context.Context, ot *domain.Ot) error
	ListOts(ctx context.Context, scope Scope) ([]domain.Ot, error)
	GetOt(ctx context.Context, numOt string) (*domain.Ot, error)
	UpdateOt(ctx context.Context, ot *domain.Ot) error
	BulkUpdateOts(ctx context.Context, items []domain.OtBulkItem) error
	LinkOts(ctx context.Context, numBc string, numOts []string) (int64, error)
}

// NotificationRepository stores user notifications and the delay bookkeeping.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, userID int64, message string) error
	ListNotifications(ctx context.Context, email string, unreadOnly bool) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	DelayCandidates(ctx context.Context, kind string, before string) ([]domain.DelayCandidate, error)
	// RecordDelay notifies userIDs and marks kind as sent for suiviID in one transaction.
	RecordDelay(ctx context.Context, suiviID int64, kind string, userIDs []int64, message string) error
}

// DashboardRepository persists daily metrics.
type DashboardRepository interface {
	MetricsComputed(ctx context.Context, backOfficeID int64, date string) (bool, error)
	SaveMetrics(ctx context.Context, metrics []domain.DashboardMetric) error
	ListMetrics(ctx context.Context, backOfficeID int64, famille, start, end string) ([]domain.DashboardMetric, error)
}
