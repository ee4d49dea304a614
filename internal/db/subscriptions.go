package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Subscription asks for alert emails about one place
type Subscription struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"-"`
	Name          string     `json:"name"`
	Country       string     `json:"country"`
	Admin1        string     `json:"admin1"`
	Lat           float64    `json:"lat"`
	Lon           float64    `json:"lon"`
	Timezone      string     `json:"timezone"`
	MinSeverity   string     `json:"min_severity"`
	Types         []string   `json:"types"`
	LastSentAt    *time.Time `json:"-"`
	LastAlertHash string     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`

	// Email of the owning user, filled by AllSubscriptions
	Email string `json:"-"`
}

const subscriptionColumns = `s.id, s.user_id, s.name, s.country, s.admin1, s.lat, s.lon, s.timezone,
	s.min_severity, s.types, s.last_sent_at, s.last_alert_hash, s.created_at`

// ListSubscriptions returns a user's subscriptions, newest first
func (db *DB) ListSubscriptions(ctx context.Context, userID int64) ([]Subscription, error) {
	rows, err := db.query(ctx,
		"SELECT "+subscriptionColumns+" FROM alert_subscriptions s WHERE s.user_id = ? ORDER BY s.created_at DESC, s.id DESC",
		userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list subscriptions")
	}
	defer rows.Close()

	subs := []Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, errors.Wrap(rows.Err(), "failed to list subscriptions")
}

// AllSubscriptions returns every subscription with its owner's email
func (db *DB) AllSubscriptions(ctx context.Context) ([]Subscription, error) {
	rows, err := db.query(ctx,
		"SELECT "+subscriptionColumns+", u.email FROM alert_subscriptions s JOIN users u ON u.id = s.user_id ORDER BY s.id")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list subscriptions")
	}
	defer rows.Close()

	subs := []Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows, "email")
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, errors.Wrap(rows.Err(), "failed to list subscriptions")
}

func scanSubscription(rows *sql.Rows, extra ...string) (Subscription, error) {
	var (
		s        Subscription
		types    string
		lastSent sql.NullTime
	)
	dest := []any{&s.ID, &s.UserID, &s.Name, &s.Country, &s.Admin1, &s.Lat, &s.Lon, &s.Timezone,
		&s.MinSeverity, &types, &lastSent, &s.LastAlertHash, &s.CreatedAt}
	if len(extra) > 0 {
		dest = append(dest, &s.Email)
	}
	if err := rows.Scan(dest...); err != nil {
		return s, errors.Wrap(err, "failed to scan subscription")
	}
	if err := json.Unmarshal([]byte(types), &s.Types); err != nil {
		return s, errors.Wrapf(err, "subscription %d has invalid types", s.ID)
	}
	if lastSent.Valid {
		t := lastSent.Time
		s.LastSentAt = &t
	}
	return s, nil
}

// CreateSubscription inserts s. Subscribing to the same coordinates twice
// yields ErrConflict.
func (db *DB) CreateSubscription(ctx context.Context, s *Subscription) error {
	if s.Timezone == "" {
		s.Timezone = "auto"
	}
	if s.MinSeverity == "" {
		s.MinSeverity = "info"
	}
	types, err := json.Marshal(s.Types)
	if err != nil {
		return errors.Wrap(err, "failed to encode subscription types")
	}
	s.CreatedAt = time.Now().UTC()
	err = db.queryRow(ctx,
		`INSERT INTO alert_subscriptions (user_id, name, country, admin1, lat, lon, timezone, min_severity, types, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		s.UserID, s.Name, s.Country, s.Admin1, s.Lat, s.Lon, s.Timezone, s.MinSeverity, string(types), s.CreatedAt,
	).Scan(&s.ID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return errors.Wrap(err, "failed to create subscription")
}

// DeleteSubscription removes one of a user's subscriptions
func (db *DB) DeleteSubscription(ctx context.Context, userID, id int64) error {
	return db.deleteOwned(ctx, "alert_subscriptions", userID, id)
}

// MarkSubscriptionSent records the hash and time of the last email
func (db *DB) MarkSubscriptionSent(ctx context.Context, id int64, hash string, at time.Time) error {
	res, err := db.exec(ctx,
		"UPDATE alert_subscriptions SET last_alert_hash = ?, last_sent_at = ? WHERE id = ?",
		hash, at.UTC(), id)
	if err != nil {
		return errors.Wrap(err, "failed to mark subscription sent")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
