package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/paperkart/paperkart-sales-service/internal/config"
	"github.com/paperkart/paperkart-sales-service/internal/errors"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Health(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}

	if resp["service"] != "sales-service" {
		t.Errorf("Expected service 'sales-service', got %v", resp["service"])
	}
}

func TestReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Ready(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestLive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Live(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestDebug(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{config: config.Load()}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Debug(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", errors.ErrNotFound, http.StatusNotFound},
		{"validation error", errors.NewValidationError("customer_id", "customer ID is required"), http.StatusBadRequest},
		{"internal error", errAny{}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestHandleError_ValidationFieldInBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	handleError(c, errors.NewValidationError("discount_percent", "discount must be between 0 and 100"))

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["field"] != "discount_percent" {
		t.Errorf("Expected field 'discount_percent', got %v", resp["field"])
	}
}

func TestDeriveRate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	tests := []struct {
		name          string
		query         string
		wantStatus    int
		wantEffective float64
		wantOverride  bool
	}{
		{"derives from benchmark", "benchmark_rate=4400&width=63", http.StatusOK, 6300, false},
		{"reference width passthrough", "benchmark_rate=4400&width=44", http.StatusOK, 4400, false},
		{"override wins", "benchmark_rate=4400&width=63&override=6000", http.StatusOK, 6000, true},
		{"explicit zero override", "benchmark_rate=4400&width=63&override=0", http.StatusOK, 0, true},
		{"blank override derives", "benchmark_rate=4400&width=63&override=", http.StatusOK, 6300, false},
		{"garbage override derives", "benchmark_rate=4400&width=63&override=abc", http.StatusOK, 6300, false},
		{"missing benchmark", "width=63", http.StatusBadRequest, 0, false},
		{"missing width", "benchmark_rate=4400", http.StatusBadRequest, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/quotes/rate?"+tt.query, nil)

			h.DeriveRate(c)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}

			if resp["effective_rate"] != tt.wantEffective {
				t.Errorf("Expected effective rate %g, got %v", tt.wantEffective, resp["effective_rate"])
			}
			if resp["overridden"] != tt.wantOverride {
				t.Errorf("Expected overridden %v, got %v", tt.wantOverride, resp["overridden"])
			}
		})
	}
}

type errAny struct{}

func (errAny) Error() string { return "boom" }
