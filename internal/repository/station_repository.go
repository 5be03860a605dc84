package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/railway-reservation/internal/model"
)

// StationRepo manages the stations reference table. Stations are
// never deleted; trains reference them as source and destination.
type StationRepo struct{ db *sql.DB }

func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{db: db} }

// Create inserts a station and returns its ID.
func (r *StationRepo) Create(ctx context.Context, name string) (uint64, error) {
	name = strings.TrimSpace(name)
	res, err := r.db.ExecContext(ctx, "INSERT INTO stations (name) VALUES (?)", name)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByName resolves a station by its display name. Returns
// ErrStationNotFound on a miss.
func (r *StationRepo) GetByName(ctx context.Context, name string) (model.Station, error) {
	var s model.Station
	err := r.db.QueryRowContext(ctx,
		"SELECT id,name FROM stations WHERE name=? LIMIT 1",
		strings.TrimSpace(name)).Scan(&s.ID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Station{}, ErrStationNotFound
	}
	return s, err
}

// ExistsByID reports whether a station row exists, used to validate
// train foreign keys before insert or update.
func (r *StationRepo) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM stations WHERE id=? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// List returns all stations ordered by name.
func (r *StationRepo) List(ctx context.Context) ([]model.Station, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id,name FROM stations ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stations := make([]model.Station, 0)
	for rows.Next() {
		var s model.Station
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}
