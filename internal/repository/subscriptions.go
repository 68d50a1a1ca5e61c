package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/riverwatch/go-flood-routes/internal/models"
)

func (s *SQLiteDB) AddSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.LastNotified == "" {
		sub.LastNotified = models.RiskLevelLow
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, email, latitude, longitude, last_notified, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Email, sub.Latitude, sub.Longitude, string(sub.LastNotified), sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error adding subscription %s: %w", sub.ID, err)
	}
	return nil
}

func (s *SQLiteDB) DeleteSubscription(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting subscription %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("subscription not found: %s", id)
	}
	return nil
}

func (s *SQLiteDB) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, latitude, longitude, last_notified, created_at
		 FROM subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("error listing subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		var level string
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Latitude, &sub.Longitude, &level, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning subscription: %w", err)
		}
		sub.LastNotified = models.RiskLevel(level)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *SQLiteDB) SetLastNotified(ctx context.Context, id string, level models.RiskLevel) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE subscriptions SET last_notified = ? WHERE id = ?`, string(level), id)
	if err != nil {
		return fmt.Errorf("error updating last_notified for %s: %w", id, err)
	}
	return nil
}
