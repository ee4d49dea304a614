package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Preferences are a user's display settings
type Preferences struct {
	UserID     int64     `json:"-"`
	Unit       string    `json:"unit"`
	Theme      string    `json:"theme"`
	TimeFormat string    `json:"time_format"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultPreferences returns the settings a new user starts with
func DefaultPreferences(userID int64) Preferences {
	return Preferences{UserID: userID, Unit: "C", Theme: "light", TimeFormat: "24"}
}

// Preferences loads a user's settings, creating the defaults on first access
func (db *DB) Preferences(ctx context.Context, userID int64) (*Preferences, error) {
	p := Preferences{UserID: userID}
	err := db.queryRow(ctx,
		"SELECT unit, theme, time_format, updated_at FROM user_preferences WHERE user_id = ?", userID,
	).Scan(&p.Unit, &p.Theme, &p.TimeFormat, &p.UpdatedAt)
	if err == nil {
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to load preferences")
	}

	p = DefaultPreferences(userID)
	if err := db.SavePreferences(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePreferences writes p, replacing any existing row
func (db *DB) SavePreferences(ctx context.Context, p *Preferences) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := db.exec(ctx,
		`INSERT INTO user_preferences (user_id, unit, theme, time_format, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET unit = excluded.unit, theme = excluded.theme,
		time_format = excluded.time_format, updated_at = excluded.updated_at`,
		p.UserID, p.Unit, p.Theme, p.TimeFormat, p.UpdatedAt)
	return errors.Wrap(err, "failed to save preferences")
}
