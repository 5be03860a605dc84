package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/railway-reservation/internal/model"
)

// TrainRepo manages the trains reference table. Reads resolve the
// source and destination station names with joins instead of issuing
// follow-up lookups per train. Deletion is guarded: a train with
// active bookings cannot be removed.
type TrainRepo struct{ db *sql.DB }

func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

// TrainView is the display shape of a train with station names
// resolved. It is what search and list endpoints return.
type TrainView struct {
	ID            uint64 `json:"id"`
	Number        string `json:"number"`
	Name          string `json:"name"`
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	TravelDays    string `json:"travel_days"`
}

// TrainPatch carries a partial update. A nil field means "leave
// unchanged"; a non-nil field is applied even when it points at an
// empty string, which lets callers clear free-form fields
// explicitly.
type TrainPatch struct {
	Name          *string
	SourceID      *uint64
	DestinationID *uint64
	DepartureTime *string
	ArrivalTime   *string
	TravelDays    *string
}

const trainViewSelect = `SELECT t.id, t.train_number, t.name,
       src.name, dst.name,
       t.departure_time, t.arrival_time, t.travel_days
FROM trains t
JOIN stations src ON src.id = t.source_id
JOIN stations dst ON dst.id = t.destination_id`

// Create inserts a train. Station foreign keys must already be
// validated by the caller; a duplicate train number maps to
// ErrTrainNumberExists.
func (r *TrainRepo) Create(ctx context.Context, t *model.Train) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO trains (train_number, name, source_id, destination_id, departure_time, arrival_time, travel_days)
		 VALUES (?,?,?,?,?,?,?)`,
		strings.TrimSpace(t.Number), strings.TrimSpace(t.Name),
		t.SourceID, t.DestinationID,
		t.DepartureTime, t.ArrivalTime, t.TravelDays)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrTrainNumberExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches the raw train row, used as the base for partial
// updates. Returns ErrTrainNotFound on a miss.
func (r *TrainRepo) GetByID(ctx context.Context, id uint64) (model.Train, error) {
	var t model.Train
	err := r.db.QueryRowContext(ctx,
		`SELECT id, train_number, name, source_id, destination_id, departure_time, arrival_time, travel_days
		 FROM trains WHERE id=? LIMIT 1`, id).
		Scan(&t.ID, &t.Number, &t.Name, &t.SourceID, &t.DestinationID,
			&t.DepartureTime, &t.ArrivalTime, &t.TravelDays)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Train{}, ErrTrainNotFound
	}
	return t, err
}

// GetByNumber resolves a train view by its public number. Returns
// ErrTrainNotFound on a miss.
func (r *TrainRepo) GetByNumber(ctx context.Context, number string) (TrainView, error) {
	var v TrainView
	err := r.db.QueryRowContext(ctx, trainViewSelect+` WHERE t.train_number = ? LIMIT 1`,
		strings.TrimSpace(number)).
		Scan(&v.ID, &v.Number, &v.Name, &v.Source, &v.Destination,
			&v.DepartureTime, &v.ArrivalTime, &v.TravelDays)
	if errors.Is(err, sql.ErrNoRows) {
		return TrainView{}, ErrTrainNotFound
	}
	return v, err
}

// SearchByRoute returns all trains running between two station names.
// Station resolution happens in the same query; an unresolved name
// simply yields an empty result.
func (r *TrainRepo) SearchByRoute(ctx context.Context, source, destination string) ([]TrainView, error) {
	rows, err := r.db.QueryContext(ctx,
		trainViewSelect+` WHERE src.name = ? AND dst.name = ? ORDER BY t.train_number`,
		strings.TrimSpace(source), strings.TrimSpace(destination))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrainViews(rows)
}

// List returns all trains with station names resolved, ordered by
// train number.
func (r *TrainRepo) List(ctx context.Context) ([]TrainView, error) {
	rows, err := r.db.QueryContext(ctx, trainViewSelect+` ORDER BY t.train_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrainViews(rows)
}

func scanTrainViews(rows *sql.Rows) ([]TrainView, error) {
	views := make([]TrainView, 0)
	for rows.Next() {
		var v TrainView
		if err := rows.Scan(&v.ID, &v.Number, &v.Name, &v.Source, &v.Destination,
			&v.DepartureTime, &v.ArrivalTime, &v.TravelDays); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// Update applies a partial update to a train. Only non-nil patch
// fields are written. Returns ErrTrainNotFound when the train does
// not exist and ErrNoChange when the patch carries no fields.
func (r *TrainRepo) Update(ctx context.Context, id uint64, p TrainPatch) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	if p.Name != nil {
		set = append(set, "name = ?")
		args = append(args, strings.TrimSpace(*p.Name))
	}
	if p.SourceID != nil {
		set = append(set, "source_id = ?")
		args = append(args, *p.SourceID)
	}
	if p.DestinationID != nil {
		set = append(set, "destination_id = ?")
		args = append(args, *p.DestinationID)
	}
	if p.DepartureTime != nil {
		set = append(set, "departure_time = ?")
		args = append(args, *p.DepartureTime)
	}
	if p.ArrivalTime != nil {
		set = append(set, "arrival_time = ?")
		args = append(args, *p.ArrivalTime)
	}
	if p.TravelDays != nil {
		set = append(set, "travel_days = ?")
		args = append(args, *p.TravelDays)
	}
	if len(set) == 0 {
		return ErrNoChange
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		"UPDATE trains SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing row from an update that wrote the
		// same values back.
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM trains WHERE id=? LIMIT 1", id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTrainNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a train unless active bookings still reference it.
// The existence check, the guard and the delete run in a single
// transaction. Bookings already cancelled do not block deletion.
// Returns ErrTrainNotFound or ErrHasActiveBookings accordingly.
func (r *TrainRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM trains WHERE id=? LIMIT 1", id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTrainNotFound
		}
		return err
	}

	var active int
	if err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE train_id = ? AND status = ?",
		id, model.BookingActive).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return ErrHasActiveBookings
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM trains WHERE id = ?", id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
