// Package sqlite file: internal/adapter/datasource/sqlite/notification.go
package sqlite

import (
	"GestionBC/internal/core/domain"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func (r *Repository) CreateNotification(ctx context.Context, userID int64, message string) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO notifications (user_id, message) VALUES (?, ?)`, userID, message); err != nil {
		return mapError(err, fmt.Sprintf("notify user %d", userID))
	}
	return nil
}

// ListNotifications returns the notifications of a user, newest first.
func (r *Repository) ListNotifications(ctx context.Context, email string, unreadOnly bool) ([]domain.Notification, error) {
	out := []domain.Notification{}
	err := r.db.SelectContext(ctx, &out, `SELECT n.id, n.user_id, n.message, n.created_at, n.is_read
		FROM notifications n
		JOIN utilisateurs u ON u.id = n.user_id
		WHERE u.email = ? AND (? = 0 OR n.is_read = 0)
		ORDER BY n.created_at DESC, n.id DESC`, email, unreadOnly)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("list notifications of %q", email))
	}
	return out, nil
}

func (r *Repository) MarkNotificationRead(ctx context.Context, id int64) error {
	what := fmt.Sprintf("mark notification %d read", id)
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return mapError(err, what)
	}
	return expectAffected(res, what)
}

// delayCandidateQueries select, per notification kind, the suivi rows whose previous
// step is older than the threshold and whose next step has not happened.
var delayCandidateQueries = map[string]string{
	domain.NotificationRealisationDelay: `sp.date_realisation IS NOT NULL AND sp.date_realisation < ?
		AND sp.date_recep_tech IS NULL`,
	domain.NotificationTechReceptionDelay: `sp.date_recep_tech IS NOT NULL AND sp.date_recep_tech < ?
		AND sp.date_recep_sys IS NULL`,
}

// DelayCandidates lists the overdue suivi rows not yet notified for kind.
// before is a date in storage layout.
func (r *Repository) DelayCandidates(ctx context.Context, kind string, before string) ([]domain.DelayCandidate, error) {
	cond, ok := delayCandidateQueries[kind]
	if !ok {
		return nil, fmt.Errorf("unknown notification kind %q", kind)
	}
	out := []domain.DelayCandidate{}
	err := r.db.SelectContext(ctx, &out, `SELECT
			sp.id              AS suivi_id,
			sp.prestation_id   AS prestation_id,
			p.bc_id            AS num_bc,
			c.id               AS coordinator_user_id,
			bo.id              AS back_office_user_id,
			c.email            AS coordinator_email,
			bo.email           AS back_office_email
		FROM suivi_prestation sp
		JOIN prestations p ON p.id = sp.prestation_id
		JOIN bon_de_commande bc ON bc.num_bc = p.bc_id
		LEFT JOIN utilisateurs c ON c.id = sp.coordinateur_id
		LEFT JOIN utilisateurs bo ON bo.id = bc.back_office_id
		WHERE `+cond+`
			AND NOT EXISTS (SELECT 1 FROM suivi_notifications sn
				WHERE sn.suivi_id = sp.id AND sn.notification_type = ?)
		ORDER BY sp.id`, before, kind)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("delay candidates %s", kind))
	}
	return out, nil
}

// RecordDelay claims (suiviID, kind) and notifies userIDs. A pair that was already
// claimed is skipped silently, so concurrent runs notify once.
func (r *Repository) RecordDelay(ctx context.Context, suiviID int64, kind string, userIDs []int64, message string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO suivi_notifications (suivi_id, notification_type) VALUES (?, ?)`, suiviID, kind)
		if err != nil {
			return mapError(err, fmt.Sprintf("record %s for suivi %d", kind, suiviID))
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		seen := make(map[int64]bool, len(userIDs))
		for _, uid := range userIDs {
			if seen[uid] {
				continue
			}
			seen[uid] = true
			if _, err := tx.ExecContext(ctx, `INSERT INTO notifications (user_id, message) VALUES (?, ?)`, uid, message); err != nil {
				return mapError(err, fmt.Sprintf("notify user %d", uid))
			}
		}
		return nil
	})
}
