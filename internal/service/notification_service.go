// file: internal/service/notification_service.go
package service

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultDelayThreshold is how long a step may stay open before the next one is chased.
const DefaultDelayThreshold = 7 * 24 * time.Hour

// NotificationService lists user notifications and chases overdue receptions.
type NotificationService struct {
	repo      port.NotificationRepository
	catalog   port.CatalogRepository
	mailer    port.Mailer
	threshold time.Duration
	now       func() time.Time
}

// NewNotificationService wires the service. mailer may be nil; threshold <= 0 means
// DefaultDelayThreshold.
func NewNotificationService(repo port.NotificationRepository, catalog port.CatalogRepository, mailer port.Mailer, threshold time.Duration) (*NotificationService, error) {
	if repo == nil || catalog == nil {
		return nil, errors.New("NotificationService: repositories must not be nil")
	}
	if threshold <= 0 {
		threshold = DefaultDelayThreshold
	}
	return &NotificationService{repo: repo, catalog: catalog, mailer: mailer, threshold: threshold, now: time.Now}, nil
}

func (s *NotificationService) List(ctx context.Context, email string, unreadOnly bool) ([]domain.Notification, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", port.ErrInvalidInput)
	}
	return s.repo.ListNotifications(ctx, email, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, id int64) error {
	return s.repo.MarkNotificationRead(ctx, id)
}

type delayRecipients struct {
	ids    []int64
	emails []string
}

func (d *delayRecipients) add(id *int64, email *string) {
	if id == nil {
		return
	}
	d.ids = append(d.ids, *id)
	if email != nil && *email != "" {
		d.emails = append(d.emails, *email)
	}
}

func delayMessage(kind string, c domain.DelayCandidate, days int) string {
	switch kind {
	case domain.NotificationRealisationDelay:
		return fmt.Sprintf("La prestation %s du BC %s est réalisée depuis plus de %d jours sans réception technique.", c.PrestationID, c.NumBc, days)
	default:
		return fmt.Sprintf("La prestation %s du BC %s est réceptionnée techniquement depuis plus de %d jours sans réception système.", c.PrestationID, c.NumBc, days)
	}
}

// CheckDelays notifies, once per suivi and kind, the users concerned by an overdue
// technical or system reception. It returns the number of suivi notified.
func (s *NotificationService) CheckDelays(ctx context.Context) (int, error) {
	before := s.now().Add(-s.threshold).Format(domain.DateLayout)
	days := int(s.threshold / (24 * time.Hour))

	chefs, err := s.catalog.ListUsersByRole(ctx, domain.RoleChefProjet)
	if err != nil {
		return 0, fmt.Errorf("load chefs de projet: %w", err)
	}

	sent := 0
	for _, kind := range []string{domain.NotificationRealisationDelay, domain.NotificationTechReceptionDelay} {
		candidates, err := s.repo.DelayCandidates(ctx, kind, before)
		if err != nil {
			return sent, err
		}
		for _, c := range candidates {
			var to delayRecipients
			switch kind {
			case domain.NotificationRealisationDelay:
				to.add(c.CoordinatorID, c.CoordinatorEmail)
				to.add(c.BackOfficeID, c.BackOfficeEmail)
			case domain.NotificationTechReceptionDelay:
				to.add(c.BackOfficeID, c.BackOfficeEmail)
				for i := range chefs {
					to.add(&chefs[i].ID, &chefs[i].Email)
				}
			}
			if len(to.ids) == 0 {
				slog.Warn("overdue suivi has nobody to notify", "suivi", c.SuiviID, "kind", kind)
				continue
			}

			msg := delayMessage(kind, c, days)
			if err := s.repo.RecordDelay(ctx, c.SuiviID, kind, to.ids, msg); err != nil {
				return sent, err
			}
			sent++
			s.mail(ctx, to.emails, msg)
		}
	}
	return sent, nil
}

func (s *NotificationService) mail(ctx context.Context, to []string, msg string) {
	if s.mailer == nil || len(to) == 0 {
		return
	}
	if err := s.mailer.Send(ctx, to, "GestionBC - retard de réception", msg); err != nil {
		slog.Error("send delay e-mail", "to", to, "error", err)
	}
}
