package event

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func passThrough(c *fiber.Ctx) error {
	c.Locals("operator_id", "op-1")
	return c.Next()
}

func TestEventHandlersCreateGet(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs(pgxmock.AnyArg(), "Tour A", []string{"Beijing", "Shanghai"}, pgxmock.AnyArg(), pgxmock.AnyArg(), "desc", "op-1").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	start := time.Now()
	mock.ExpectQuery(`SELECT id, name, cities, start_date, end_date, description, created_by, created_at`).
		WithArgs("ev-1").
		WillReturnRows(pgxmock.NewRows(eventColumns).
			AddRow("ev-1", "Tour A", []string{"Beijing", "Shanghai"}, &start, &start, "desc", "op-1", createdAt))

	app := fiber.New()
	RegisterRoutes(app.Group("/events"), NewService(mock), passThrough)

	body, _ := json.Marshal(Event{Name: "Tour A", Cities: []string{"Beijing", "Shanghai"}, Description: "desc"})
	req := httptest.NewRequest(http.MethodPost, "/events/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %v %d", err, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/events/ev-1", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get status: %v", err)
	}
}

func TestEventHandlersBadRequest(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/events"), NewService(nil), func(c *fiber.Ctx) error { return c.Next() })

	req := httptest.NewRequest(http.MethodPost, "/events/", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}

	req = httptest.NewRequest(http.MethodPost, "/events/", bytes.NewReader([]byte(`{"name":"x","created_by":"op","cities":["A","A"]}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for duplicate city")
	}
}

func TestEventHandlersRouteUpdateDelete(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	RegisterRoutes(app.Group("/events"), NewService(mock), passThrough)

	mock.ExpectQuery(`SELECT cities FROM events`).
		WithArgs("ev-1").
		WillReturnRows(pgxmock.NewRows([]string{"cities"}).AddRow([]string{"Beijing"}))
	req := httptest.NewRequest(http.MethodGet, "/events/ev-1/route", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("route status: %v", err)
	}

	start := time.Now()
	mock.ExpectQuery(`SELECT id, name, cities, start_date, end_date, description, created_by, created_at`).
		WithArgs("ev-1").
		WillReturnRows(pgxmock.NewRows(eventColumns).
			AddRow("ev-1", "Tour", []string{"Beijing"}, &start, &start, "desc", "op-1", time.Now()))
	mock.ExpectExec(`UPDATE events`).
		WithArgs("ev-1", "Tour Updated", []string{"Beijing"}, pgxmock.AnyArg(), pgxmock.AnyArg(), "desc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updateBody, _ := json.Marshal(Event{Name: "Tour Updated"})
	req = httptest.NewRequest(http.MethodPut, "/events/ev-1", bytes.NewReader(updateBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("update status: %v", err)
	}

	mock.ExpectExec(`DELETE FROM events`).WithArgs("ev-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	req = httptest.NewRequest(http.MethodDelete, "/events/ev-1", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status: %v", err)
	}

	mock.ExpectExec(`DELETE FROM events`).WithArgs("ev-2").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	req = httptest.NewRequest(http.MethodDelete, "/events/ev-2", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found on delete")
	}
}

func TestEventHandlersGetError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, cities`).WithArgs("broken").WillReturnError(errQuery)

	app := fiber.New()
	RegisterRoutes(app.Group("/events"), NewService(mock), passThrough)

	req := httptest.NewRequest(http.MethodGet, "/events/broken", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected internal error")
	}
}
