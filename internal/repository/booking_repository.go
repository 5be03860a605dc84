package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/railway-reservation/internal/model"
	"github.com/iliyamo/railway-reservation/internal/pnr"
)

// pnrAttempts bounds the retry loop when a freshly drawn reservation
// code collides with an existing booking.
const pnrAttempts = 5

// BookingRepo implements the booking transaction engine: atomic
// creation of a booking with its tickets, the cancellation workflow
// and the status query. Every multi-row write runs in a single
// transaction; concurrent requests never observe a booking without
// tickets or a cancelled booking without its cancellation row.
type BookingRepo struct {
	db *sql.DB
	// genPNR draws candidate reservation codes. Swappable in tests;
	// defaults to pnr.Generate.
	genPNR func() (string, error)
}

func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db, genPNR: pnr.Generate}
}

// Passenger is the input shape for one ticket under a new booking.
type Passenger struct {
	Name   string `json:"name"`
	Age    uint8  `json:"age"`
	Gender string `json:"gender"`
}

// PassengerView is a ticket as returned by the status query, in
// insertion order.
type PassengerView struct {
	Name   string `json:"name"`
	Age    uint8  `json:"age"`
	Gender string `json:"gender"`
}

// BookingDetail is the full view of a booking for display: the
// booking summary, the train it references and the ordered list of
// passengers.
type BookingDetail struct {
	ID          uint64          `json:"id"`
	PNR         string          `json:"pnr"`
	TrainNumber string          `json:"train_number"`
	TrainName   string          `json:"train_name"`
	TravelDate  string          `json:"travel_date"`
	BookingDate string          `json:"booking_date"`
	Status      string          `json:"status"`
	Passengers  []PassengerView `json:"passengers"`
}

// validatePassengers rejects an empty list and any entry with a blank
// name or gender or a non-positive age. Validation happens before a
// transaction is opened so invalid requests never touch the tables.
func validatePassengers(passengers []Passenger) error {
	if len(passengers) == 0 {
		return ErrNoPassengers
	}
	for _, p := range passengers {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Gender) == "" || p.Age == 0 {
			return ErrInvalidPassenger
		}
	}
	return nil
}

// Create books a train for one or more passengers. It validates the
// passenger list and both foreign keys, then inside one transaction
// draws a unique PNR (bounded retry, unique column as backstop),
// inserts the booking with status ACTIVE and bulk-inserts one ticket
// per passenger. On success it returns the new booking ID and its
// PNR; on any failure the transaction is rolled back and no partial
// rows persist.
func (r *BookingRepo) Create(ctx context.Context, userID, trainID uint64, travelDate, bookingDate string, passengers []Passenger) (uint64, string, error) {
	if err := validatePassengers(passengers); err != nil {
		return 0, "", err
	}

	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=? LIMIT 1", userID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrUserNotFound
		}
		return 0, "", err
	}
	err = r.db.QueryRowContext(ctx, "SELECT 1 FROM trains WHERE id=? LIMIT 1", trainID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrTrainNotFound
		}
		return 0, "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	bookingID, code, err := r.insertBookingTx(ctx, tx, userID, trainID, travelDate, bookingDate)
	if err != nil {
		return 0, "", err
	}
	if err = r.insertTicketsTx(ctx, tx, bookingID, passengers); err != nil {
		return 0, "", err
	}
	if err = tx.Commit(); err != nil {
		return 0, "", err
	}
	committed = true
	return bookingID, code, nil
}

// insertBookingTx draws a reservation code, verifies it is unused
// within the same transaction and inserts the booking row. Both the
// in-transaction probe and the UNIQUE constraint on the pnr column
// trigger a retry; after pnrAttempts draws it gives up with
// ErrPNRExhausted.
func (r *BookingRepo) insertBookingTx(ctx context.Context, tx *sql.Tx, userID, trainID uint64, travelDate, bookingDate string) (uint64, string, error) {
	for attempt := 0; attempt < pnrAttempts; attempt++ {
		code, err := r.genPNR()
		if err != nil {
			return 0, "", err
		}
		var one int
		err = tx.QueryRowContext(ctx, "SELECT 1 FROM bookings WHERE pnr=? LIMIT 1", code).Scan(&one)
		if err == nil {
			continue // code already taken, draw again
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, "", err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO bookings (user_id, train_id, pnr, booking_date, travel_date, status) VALUES (?,?,?,?,?,?)",
			userID, trainID, code, bookingDate, travelDate, model.BookingActive)
		if err != nil {
			if isDuplicateKey(err) {
				continue // lost a race on the unique column, draw again
			}
			return 0, "", err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, "", err
		}
		return uint64(id), code, nil
	}
	return 0, "", ErrPNRExhausted
}

// insertTicketsTx bulk-inserts one tickets row per passenger in a
// single statement, all linked to the given booking.
func (r *BookingRepo) insertTicketsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, passengers []Passenger) error {
	query := "INSERT INTO tickets (booking_id, passenger_name, age, gender) VALUES "
	args := make([]interface{}, 0, len(passengers)*4)
	for i, p := range passengers {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, bookingID, strings.TrimSpace(p.Name), p.Age, strings.TrimSpace(p.Gender))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Cancel marks the booking identified by code as CANCELLED and writes
// its cancellation row, both in one transaction. The booking row is
// locked for the duration so two concurrent cancels cannot both pass
// the status check. Returns ErrBookingNotFound when the code does not
// resolve and ErrAlreadyCancelled when the booking has already been
// cancelled; a booking never carries two cancellation rows.
func (r *BookingRepo) Cancel(ctx context.Context, code, reason, cancelledOn string) error {
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

	var bookingID uint64
	var status string
	err = tx.QueryRowContext(ctx,
		"SELECT id, status FROM bookings WHERE pnr=? LIMIT 1 FOR UPDATE", code).
		Scan(&bookingID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		return err
	}
	if status == model.BookingCancelled {
		return ErrAlreadyCancelled
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=?",
		model.BookingCancelled, bookingID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO cancellations (booking_id, cancelled_on, reason) VALUES (?,?,?)",
		bookingID, cancelledOn, reason); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByPNR reconstructs the full booking view: summary and train in a
// single join, then the tickets in insertion order. Returns
// ErrBookingNotFound when the code does not resolve.
func (r *BookingRepo) GetByPNR(ctx context.Context, code string) (*BookingDetail, error) {
	const q = `SELECT b.id, b.pnr, t.train_number, t.name, b.travel_date, b.booking_date, b.status
	           FROM bookings b
	           JOIN trains t ON t.id = b.train_id
	           WHERE b.pnr = ?`
	var det BookingDetail
	err := r.db.QueryRowContext(ctx, q, code).Scan(
		&det.ID, &det.PNR, &det.TrainNumber, &det.TrainName,
		&det.TravelDate, &det.BookingDate, &det.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT passenger_name, age, gender FROM tickets WHERE booking_id = ? ORDER BY id", det.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.Passengers = make([]PassengerView, 0)
	for rows.Next() {
		var p PassengerView
		if err := rows.Scan(&p.Name, &p.Age, &p.Gender); err != nil {
			return nil, err
		}
		det.Passengers = append(det.Passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}

// ListByUser returns all bookings of a user, newest first, with their
// passengers populated in one batched query instead of one query per
// booking.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.pnr, t.train_number, t.name, b.travel_date, b.booking_date, b.status
	           FROM bookings b
	           JOIN trains t ON t.id = b.train_id
	           WHERE b.user_id = ?
	           ORDER BY b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]BookingDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(&d.ID, &d.PNR, &d.TrainNumber, &d.TrainName,
			&d.TravelDate, &d.BookingDate, &d.Status); err != nil {
			return nil, err
		}
		d.Passengers = make([]PassengerView, 0)
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	tq := `SELECT booking_id, passenger_name, age, gender FROM tickets
	       WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
	       ORDER BY booking_id, id`
	trows, err := r.db.QueryContext(ctx, tq, ids...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var bid uint64
		var p PassengerView
		if err := trows.Scan(&bid, &p.Name, &p.Age, &p.Gender); err != nil {
			return nil, err
		}
		if idx, ok := index[bid]; ok {
			details[idx].Passengers = append(details[idx].Passengers, p)
		}
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
