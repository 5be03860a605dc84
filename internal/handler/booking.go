package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/pnr"
	"github.com/iliyamo/railway-reservation/internal/queue"
	"github.com/iliyamo/railway-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/railway-reservation/internal/service"
)

// BookingHandler serves booking creation, cancellation and status
// lookup for authenticated users. All methods assume JWT
// authentication has already run; the caller's identity comes from
// the request context, never from server-side state. Multi-row writes
// are delegated to the repository, which runs them in a single
// transaction.
type BookingHandler struct {
	Bookings *repository.BookingRepo
}

func NewBookingHandler(b *repository.BookingRepo) *BookingHandler {
	if b == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: b}
}

type createBookingReq struct {
	TrainID     uint64                 `json:"train_id"`
	TravelDate  string                 `json:"travel_date"`
	BookingDate string                 `json:"booking_date"` // optional, defaults to today
	Passengers  []repository.Passenger `json:"passengers"`
}

type cancelBookingReq struct {
	Reason      string `json:"reason"`
	CancelledOn string `json:"cancelled_on"` // optional, defaults to today
}

// Create handles POST /v1/bookings. It books the given train for the
// authenticated user and the submitted passengers, returning the
// booking ID and its PNR. Validation failures (unknown train, empty
// passenger list, malformed passenger fields or dates) are rejected
// with 400 before any row is written.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TrainID == 0 || !validDate(req.TravelDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "train_id and travel_date (YYYY-MM-DD) required"})
	}
	bookingDate := strings.TrimSpace(req.BookingDate)
	if bookingDate == "" {
		bookingDate = time.Now().UTC().Format(dateLayout)
	} else if !validDate(bookingDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking_date"})
	}

	ctx := c.Request().Context()
	bookingID, code, err := h.Bookings.Create(ctx, userID, req.TrainID, req.TravelDate, bookingDate, req.Passengers)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoPassengers),
			errors.Is(err, repository.ErrInvalidPassenger),
			errors.Is(err, repository.ErrUserNotFound),
			errors.Is(err, repository.ErrTrainNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrPNRExhausted):
			return c.JSON(http.StatusConflict, echo.Map{"error": "could not allocate a reservation code, retry"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
		}
	}

	// Best effort: the booking is committed, a broker outage must not
	// fail the request.
	_ = queue_publisher.PublishBookingEvent(ctx, queue.BookingEvent{
		Type:       queue.EventBookingCreated,
		BookingID:  bookingID,
		PNR:        code,
		UserID:     userID,
		TrainID:    req.TrainID,
		TravelDate: req.TravelDate,
		Passengers: len(req.Passengers),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id": bookingID,
		"pnr":        code,
	})
}

// Cancel handles DELETE /v1/bookings/:pnr. It moves the booking to
// CANCELLED and records the cancellation reason atomically. Unknown
// codes return 404; a booking that is already cancelled returns 409
// and no second cancellation row is written.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	code := c.Param("pnr")
	if !pnr.Valid(code) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pnr"})
	}
	var req cancelBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cancelledOn := strings.TrimSpace(req.CancelledOn)
	if cancelledOn == "" {
		cancelledOn = time.Now().UTC().Format(dateLayout)
	} else if !validDate(cancelledOn) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cancelled_on"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Bookings.Cancel(ctx, code, req.Reason, cancelledOn); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
		}
	}

	_ = queue_publisher.PublishBookingEvent(ctx, queue.BookingEvent{
		Type:        queue.EventBookingCancelled,
		PNR:         code,
		UserID:      userID,
		Reason:      req.Reason,
		CancelledOn: cancelledOn,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"pnr": code, "status": "CANCELLED"})
}

// Get handles GET /v1/bookings/:pnr. It returns the booking summary
// with train details and the ordered passenger list, or 404 when the
// code does not resolve.
func (h *BookingHandler) Get(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	code := c.Param("pnr")
	if !pnr.Valid(code) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pnr"})
	}
	detail, err := h.Bookings.GetByPNR(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

// ListMine handles GET /v1/my-bookings and returns the authenticated
// user's bookings, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}
