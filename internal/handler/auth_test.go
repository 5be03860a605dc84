package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/railway-reservation/internal/config"
	"github.com/iliyamo/railway-reservation/internal/repository"
	"github.com/iliyamo/railway-reservation/internal/utils"
)

func newAuthTestDeps(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, BcryptCost: 4}
	return NewAuthHandler(cfg, repository.NewUserRepo(db)), mock
}

func postJSON(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegister(t *testing.T) {
	h, mock := newAuthTestDeps(t)
	e := echo.New()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, password_hash, is_admin) VALUES (?,?,0)")).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))

	c, rec := postJSON(e, "/v1/auth/register", `{"username":"alice","password":"s3cret"}`)
	assert.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"USER"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterMissingFields(t *testing.T) {
	h, _ := newAuthTestDeps(t)
	e := echo.New()

	for _, body := range []string{`{}`, `{"username":"alice"}`, `{"password":"x"}`, `{"username":"  ","password":"x"}`} {
		c, rec := postJSON(e, "/v1/auth/register", body)
		assert.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	h, mock := newAuthTestDeps(t)
	e := echo.New()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'alice' for key 'uq_users_username'"))

	c, rec := postJSON(e, "/v1/auth/register", `{"username":"alice","password":"s3cret"}`)
	assert.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func userRow(t *testing.T, id uint64, username, password string, isAdmin bool) *sqlmock.Rows {
	hash, err := utils.HashPassword(password, 4)
	assert.NoError(t, err)
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "is_admin", "created_at", "updated_at"}).
		AddRow(id, username, hash, isAdmin, now, now)
}

func TestLoginUser(t *testing.T) {
	h, mock := newAuthTestDeps(t)
	e := echo.New()

	mock.ExpectQuery("SELECT id,username,password_hash").
		WithArgs("alice").
		WillReturnRows(userRow(t, 3, "alice", "s3cret", false))

	c, rec := postJSON(e, "/v1/auth/login", `{"username":"alice","password":"s3cret"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User struct {
			ID   uint64 `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(3), resp.User.ID)
	assert.Equal(t, RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.Access.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginAdmin(t *testing.T) {
	h, mock := newAuthTestDeps(t)
	e := echo.New()

	mock.ExpectQuery("SELECT id,username,password_hash").
		WithArgs("root").
		WillReturnRows(userRow(t, 1, "root", "tops3cret", true))

	c, rec := postJSON(e, "/v1/auth/login", `{"username":"root","password":"tops3cret","role":"admin"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ADMIN"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A regular account must not authenticate through the admin role, and
// the rejection is indistinguishable from a wrong password.
func TestLoginRoleMismatch(t *testing.T) {
	h, mock := newAuthTestDeps(t)
	e := echo.New()

	mock.ExpectQuery("SELECT id,username,password_hash").
		WithArgs("alice").
		WillReturnRows(userRow(t, 3, "alice", "s3cret", false))

	c, rec := postJSON(e, "/v1/auth/login", `{"username":"alice","password":"s3cret","role":"admin"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := newAuthTestDeps(t)
	e := echo.New()

	mock.ExpectQuery("SELECT id,username,password_hash").
		WithArgs("alice").
		WillReturnRows(userRow(t, 3, "alice", "s3cret", false))

	c, rec := postJSON(e, "/v1/auth/login", `{"username":"alice","password":"wrong"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownUser(t *testing.T) {
	h, mock := newAuthTestDeps(t)
	e := echo.New()

	mock.ExpectQuery("SELECT id,username,password_hash").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "is_admin", "created_at", "updated_at"}))

	c, rec := postJSON(e, "/v1/auth/login", `{"username":"nobody","password":"x"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
