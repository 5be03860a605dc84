package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/railway-reservation/internal/repository"
)

func newPublicTestDeps(t *testing.T) (*PublicHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPublicHandler(repository.NewTrainRepo(db), repository.NewStationRepo(db)), mock
}

func getCtx(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func trainRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "train_number", "name", "src", "dst", "departure_time", "arrival_time", "travel_days"})
}

func TestListTrains(t *testing.T) {
	h, mock := newPublicTestDeps(t)
	e := echo.New()

	mock.ExpectQuery("SELECT t.id, t.train_number, t.name").
		WillReturnRows(trainRows().
			AddRow(7, "12431", "Rajdhani Express", "New Delhi", "Mumbai Central", "16:10", "10:20", "Mon,Wed,Fri"))

	c, rec := getCtx(e, "/v1/trains")
	assert.NoError(t, h.ListTrains(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Rajdhani Express"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchTrainsByNumber(t *testing.T) {
	h, mock := newPublicTestDeps(t)
	e := echo.New()

	mock.ExpectQuery("SELECT t.id, t.train_number, t.name").
		WithArgs("12431").
		WillReturnRows(trainRows().
			AddRow(7, "12431", "Rajdhani Express", "New Delhi", "Mumbai Central", "16:10", "10:20", "Mon,Wed,Fri"))

	c, rec := getCtx(e, "/v1/trains/search?number=12431")
	assert.NoError(t, h.SearchTrains(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"12431"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A miss is not an error: an unknown number yields an empty list.
func TestSearchTrainsByNumberMiss(t *testing.T) {
	h, mock := newPublicTestDeps(t)
	e := echo.New()

	mock.ExpectQuery("SELECT t.id, t.train_number, t.name").
		WithArgs("99999").
		WillReturnRows(trainRows())

	c, rec := getCtx(e, "/v1/trains/search?number=99999")
	assert.NoError(t, h.SearchTrains(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchTrainsByRoute(t *testing.T) {
	h, mock := newPublicTestDeps(t)
	e := echo.New()

	mock.ExpectQuery("SELECT t.id, t.train_number, t.name").
		WithArgs("New Delhi", "Mumbai Central").
		WillReturnRows(trainRows().
			AddRow(7, "12431", "Rajdhani Express", "New Delhi", "Mumbai Central", "16:10", "10:20", "Mon,Wed,Fri").
			AddRow(9, "12952", "Tejas Express", "New Delhi", "Mumbai Central", "17:15", "09:45", "Daily"))

	c, rec := getCtx(e, "/v1/trains/search?source=New+Delhi&destination=Mumbai+Central")
	assert.NoError(t, h.SearchTrains(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Tejas Express"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchTrainsMissingParams(t *testing.T) {
	h, _ := newPublicTestDeps(t)
	e := echo.New()

	for _, target := range []string{"/v1/trains/search", "/v1/trains/search?source=New+Delhi", "/v1/trains/search?destination=Mumbai+Central"} {
		c, rec := getCtx(e, target)
		assert.NoError(t, h.SearchTrains(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target: %s", target)
	}
}

func TestListStations(t *testing.T) {
	h, mock := newPublicTestDeps(t)
	e := echo.New()

	mock.ExpectQuery("SELECT id,name FROM stations ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Mumbai Central").
			AddRow(2, "New Delhi"))

	c, rec := getCtx(e, "/v1/stations")
	assert.NoError(t, h.ListStations(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"New Delhi"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
