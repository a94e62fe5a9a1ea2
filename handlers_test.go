package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/herdlink/livestock_backend/workflow"
	"github.com/sirupsen/logrus/hooks/test"
)

func testContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, recorder
}

func TestRespondErrorStatusAndGinErrors(t *testing.T) {
	c, recorder := testContext(t, "/")
	respondError(c, utils.ErrorRecordNotFound)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
	if len(c.Errors) != 1 {
		t.Fatalf("expected the error to be recorded on the context, got %d", len(c.Errors))
	}

	c, recorder = testContext(t, "/")
	respondError(c, utils.ErrorConflictingTerminalEvents)
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", recorder.Code)
	}
}

func TestStatusFilterQuery(t *testing.T) {
	cases := []struct {
		query  string
		want   models.AnimalStatus
		wantOk bool
	}{
		{"", models.AnimalStatusActive, true},
		{"?status=active", models.AnimalStatusActive, true},
		{"?status=sold", models.AnimalStatusSold, true},
		{"?status=dead", models.AnimalStatusDead, true},
		{"?status=all", workflow.StatusFilterAll, true},
		{"?status=banana", "", false},
	}
	for _, tc := range cases {
		c, recorder := testContext(t, "/"+tc.query)
		got, ok := statusFilterQuery(c)
		if ok != tc.wantOk {
			t.Fatalf("query %q: expected ok=%v, got %v", tc.query, tc.wantOk, ok)
		}
		if got != tc.want {
			t.Fatalf("query %q: expected filter %q, got %q", tc.query, tc.want, got)
		}
		if !tc.wantOk && recorder.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400, got %d", tc.query, recorder.Code)
		}
	}
}

func TestErrorLoggerIncludesCorrelationId(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(correlationMiddleware())
	r.Use(customErrorLogger(logger))
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, errors.New("storage unavailable"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("x-correlation-id", "cid-123")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected an error log entry")
	}
	if entry.Data["correlationId"] != "cid-123" {
		t.Fatalf("expected correlationId cid-123, got %v", entry.Data["correlationId"])
	}
}

func TestSublocationNameFrom(t *testing.T) {
	location := &models.Location{
		ID:   4,
		Name: "Pasture North",
		Sublocations: []*models.Sublocation{
			{ID: 7, Name: "Paddock A"},
			{ID: 8, Name: "Paddock B"},
		},
	}

	if got := sublocationNameFrom(nil, utils.IntPtr(7)); got != nil {
		t.Fatalf("expected nil for missing location, got %q", *got)
	}
	if got := sublocationNameFrom(location, nil); got != nil {
		t.Fatalf("expected nil for missing sublocation id, got %q", *got)
	}
	if got := sublocationNameFrom(location, utils.IntPtr(99)); got != nil {
		t.Fatalf("expected nil for unknown sublocation id, got %q", *got)
	}
	got := sublocationNameFrom(location, utils.IntPtr(8))
	if got == nil || *got != "Paddock B" {
		t.Fatalf("expected Paddock B, got %v", got)
	}
}
