package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/repository"
)

// PublicHandler exposes the unauthenticated browse endpoints: train
// search and the station/train listings. These routes sit behind the
// Redis response cache.
type PublicHandler struct {
	Trains   *repository.TrainRepo
	Stations *repository.StationRepo
}

func NewPublicHandler(t *repository.TrainRepo, s *repository.StationRepo) *PublicHandler {
	if t == nil || s == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Trains: t, Stations: s}
}

// ListTrains handles GET /v1/trains and returns every train with its
// station names resolved.
func (h *PublicHandler) ListTrains(c echo.Context) error {
	views, err := h.Trains.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trains"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// SearchTrains handles GET /v1/trains/search. With ?number= it
// resolves at most one train; with ?source=&destination= it lists all
// trains on that route. An unresolved station name yields an empty
// list, matching the lookup-miss-is-not-an-error contract.
func (h *PublicHandler) SearchTrains(c echo.Context) error {
	ctx := c.Request().Context()

	if number := strings.TrimSpace(c.QueryParam("number")); number != "" {
		v, err := h.Trains.GetByNumber(ctx, number)
		if err != nil {
			if errors.Is(err, repository.ErrTrainNotFound) {
				return c.JSON(http.StatusOK, echo.Map{"items": []repository.TrainView{}})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": []repository.TrainView{v}})
	}

	source := strings.TrimSpace(c.QueryParam("source"))
	destination := strings.TrimSpace(c.QueryParam("destination"))
	if source == "" || destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide number or source and destination"})
	}
	views, err := h.Trains.SearchByRoute(ctx, source, destination)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// ListStations handles GET /v1/stations.
func (h *PublicHandler) ListStations(c echo.Context) error {
	stations, err := h.Stations.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load stations"})
	}
	items := make([]echo.Map, 0, len(stations))
	for _, s := range stations {
		items = append(items, echo.Map{"id": s.ID, "name": s.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
