package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetops/internal/apperr"
)

func testContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	return c, w
}

func TestBindJSON(t *testing.T) {
	var dst struct {
		Name  string `json:"Name" binding:"notblank"`
		Seats int    `json:"Seats" binding:"gt=0"`
	}

	c, _ := testContext(http.MethodPost, "/", `{"Name":"x","Seats":2}`)
	require.NoError(t, bindJSON(c, &dst))
	assert.Equal(t, "x", dst.Name)

	c, _ = testContext(http.MethodPost, "/", `{"Name":"x","Seats":2,"Extra":1}`)
	err := bindJSON(c, &dst)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "Extra")

	c, _ = testContext(http.MethodPost, "/", ``)
	assert.EqualError(t, bindJSON(c, &dst), "request body is required")

	c, _ = testContext(http.MethodPost, "/", `{"Name":" ","Seats":2}`)
	assert.EqualError(t, bindJSON(c, &dst), "Name: is required")

	c, _ = testContext(http.MethodPost, "/", `{"Name":"x","Seats":0}`)
	assert.EqualError(t, bindJSON(c, &dst), "Seats: must be greater than 0")
}

func TestListMaintenanceWorksRejectsUnknownPriority(t *testing.T) {
	c, w := testContext(http.MethodGet, "/works?priority=Urgent", "")
	(&Handler{}).ListMaintenanceWorks(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Priority: must be one of Low, Medium, High, Critical")
}

func TestBindOptionalJSONAcceptsEmptyBody(t *testing.T) {
	var dst struct {
		Reason string `json:"Reason"`
	}
	c, _ := testContext(http.MethodPost, "/", ``)
	require.NoError(t, bindOptionalJSON(c, &dst))

	c, _ = testContext(http.MethodPost, "/", `{"Why":"x"}`)
	assert.True(t, apperr.IsValidation(bindOptionalJSON(c, &dst)))
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	c, w := testContext(http.MethodGet, "/", "")
	respondError(c, apperr.Internal("db exploded", errors.New("pq: connection reset")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")

	c, w = testContext(http.MethodGet, "/", "")
	respondError(c, apperr.Conflict("bus assignment", "bus BUS-1 is already assigned"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "BUS-1")
}

func TestQueryTime(t *testing.T) {
	c, _ := testContext(http.MethodGet, "/?from=2025-06-01&to=2025-06-01&at=2025-06-01T08:30:00%2B08:00&bad=yesterday", "")

	from, err := queryTime(c, "from", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), from)

	to, err := queryTime(c, "to", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC), to)

	at, err := queryTime(c, "at", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 30, 0, 0, time.UTC), at)

	_, err = queryTime(c, "bad", false)
	assert.True(t, apperr.IsValidation(err))

	missing, err := queryTime(c, "missing", false)
	require.NoError(t, err)
	assert.True(t, missing.IsZero())
}

func TestValidateAndNormalizeRole(t *testing.T) {
	role, err := validateAndNormalizeRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleOperator, role)

	role, err = validateAndNormalizeRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = validateAndNormalizeRole("driver")
	assert.True(t, apperr.IsValidation(err))
}
