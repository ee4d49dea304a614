package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// SavedLocation is a place a user bookmarked
type SavedLocation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Admin1    string    `json:"admin1"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLocations returns a user's saved locations, newest first
func (db *DB) ListLocations(ctx context.Context, userID int64) ([]SavedLocation, error) {
	rows, err := db.query(ctx,
		`SELECT id, user_id, name, country, admin1, lat, lon, timezone, created_at
		FROM saved_locations WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list saved locations")
	}
	defer rows.Close()

	locations := []SavedLocation{}
	for rows.Next() {
		var l SavedLocation
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Country, &l.Admin1, &l.Lat, &l.Lon, &l.Timezone, &l.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan saved location")
		}
		locations = append(locations, l)
	}
	return locations, errors.Wrap(rows.Err(), "failed to list saved locations")
}

// CreateLocation inserts l. Saving the same coordinates twice yields ErrConflict.
func (db *DB) CreateLocation(ctx context.Context, l *SavedLocation) error {
	if l.Timezone == "" {
		l.Timezone = "auto"
	}
	l.CreatedAt = time.Now().UTC()
	err := db.queryRow(ctx,
		`INSERT INTO saved_locations (user_id, name, country, admin1, lat, lon, timezone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		l.UserID, l.Name, l.Country, l.Admin1, l.Lat, l.Lon, l.Timezone, l.CreatedAt,
	).Scan(&l.ID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return errors.Wrap(err, "failed to save location")
}

// DeleteLocation removes one of a user's saved locations
func (db *DB) DeleteLocation(ctx context.Context, userID, id int64) error {
	return db.deleteOwned(ctx, "saved_locations", userID, id)
}
