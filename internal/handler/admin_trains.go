package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/model"
	"github.com/iliyamo/railway-reservation/internal/repository"
)

type addTrainReq struct {
	Number        string `json:"number"`
	Name          string `json:"name"`
	SourceID      uint64 `json:"source_id"`
	DestinationID uint64 `json:"destination_id"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	TravelDays    string `json:"travel_days"`
}

// patchTrainReq mirrors repository.TrainPatch on the wire: absent
// fields stay nil and are left unchanged, present fields are applied
// even when empty. This distinguishes "not provided" from
// "explicitly cleared".
type patchTrainReq struct {
	Name          *string `json:"name"`
	SourceID      *uint64 `json:"source_id"`
	DestinationID *uint64 `json:"destination_id"`
	DepartureTime *string `json:"departure_time"`
	ArrivalTime   *string `json:"arrival_time"`
	TravelDays    *string `json:"travel_days"`
}

// AddTrain handles POST /v1/admin/trains. Both station references are
// validated before the insert so the foreign keys always resolve.
func (h *AdminHandler) AddTrain(c echo.Context) error {
	var req addTrainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Number = strings.TrimSpace(req.Number)
	req.Name = strings.TrimSpace(req.Name)
	if req.Number == "" || req.Name == "" || req.SourceID == 0 || req.DestinationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number, name, source_id and destination_id required"})
	}

	ctx := c.Request().Context()
	for _, stationID := range []uint64{req.SourceID, req.DestinationID} {
		ok, err := h.Stations.ExistsByID(ctx, stationID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "station lookup failed"})
		}
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown station"})
		}
	}

	id, err := h.Trains.Create(ctx, &model.Train{
		Number:        req.Number,
		Name:          req.Name,
		SourceID:      req.SourceID,
		DestinationID: req.DestinationID,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		TravelDays:    req.TravelDays,
	})
	if err != nil {
		if errors.Is(err, repository.ErrTrainNumberExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "train number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// UpdateTrain handles PATCH /v1/admin/trains/:id with a partial
// update. Station references included in the patch are validated
// first.
func (h *AdminHandler) UpdateTrain(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req patchTrainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	for _, stationID := range []*uint64{req.SourceID, req.DestinationID} {
		if stationID == nil {
			continue
		}
		ok, err := h.Stations.ExistsByID(ctx, *stationID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "station lookup failed"})
		}
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown station"})
		}
	}

	patch := repository.TrainPatch{
		Name:          req.Name,
		SourceID:      req.SourceID,
		DestinationID: req.DestinationID,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		TravelDays:    req.TravelDays,
	}
	if err := h.Trains.Update(ctx, id, patch); err != nil {
		switch {
		case errors.Is(err, repository.ErrTrainNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		case errors.Is(err, repository.ErrNoChange):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteTrain handles DELETE /v1/admin/trains/:id. A train with
// active bookings is protected; the delete fails with 409 and the row
// stays intact. Cancelled bookings do not block.
func (h *AdminHandler) DeleteTrain(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Trains.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrTrainNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		case errors.Is(err, repository.ErrHasActiveBookings):
			return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete train with active bookings"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// AddStation handles POST /v1/admin/stations.
func (h *AdminHandler) AddStation(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	id, err := h.Stations.Create(c.Request().Context(), req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "station already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}
