// Package unit contains unit tests for individual components of the Nexus
// chat server.
//
// These tests focus on testing specific functions and methods in isolation,
// using mocks and stubs where necessary to avoid dependencies on external
// systems. Unit tests ensure that each component behaves correctly under
// various conditions.
package unit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Tyrowin/nexus-chat-server/internal/server"
)

// TestHealthHandlerUnit tests the health handler function in isolation.
// It verifies that the handler responds correctly to different HTTP methods
// and returns the expected status code and response body.
func TestHealthHandlerUnit(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "GET request to health endpoint",
			method:         "GET",
			expectedStatus: http.StatusOK,
			expectedBody:   "Nexus chat server is running!",
		},
		{
			name:           "POST request to health endpoint",
			method:         "POST",
			expectedStatus: http.StatusOK,
			expectedBody:   "Nexus chat server is running!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, "/", http.NoBody)
			if err != nil {
				t.Fatal(err)
			}

			rr := httptest.NewRecorder()

			server.HealthHandler(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					status, tt.expectedStatus)
			}

			if rr.Body.String() != tt.expectedBody {
				t.Errorf("handler returned unexpected body: got %v want %v",
					rr.Body.String(), tt.expectedBody)
			}
		})
	}
}

// TestSetupRoutes tests the route setup function.
// It verifies that SetupRoutes returns a properly configured ServeMux
// with the expected routes and handlers properly registered.
func TestSetupRoutes(t *testing.T) {
	mux := server.SetupRoutes()

	// Test that the mux is not nil
	if mux == nil {
		t.Fatal("SetupRoutes returned nil mux")
	}

	// Test that the root route is properly configured
	req, err := http.NewRequest("GET", "/", http.NoBody)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v",
			status, http.StatusOK)
	}

	expected := "Nexus chat server is running!"
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: got %v want %v",
			rr.Body.String(), expected)
	}
}

// TestTestPageRoute verifies that the built-in test page is served as HTML.
func TestTestPageRoute(t *testing.T) {
	mux := server.SetupRoutes()

	req, err := http.NewRequest("GET", "/test", http.NoBody)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v",
			status, http.StatusOK)
	}

	contentType := rr.Header().Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		t.Errorf("Expected Content-Type to contain 'text/html', got %q", contentType)
	}

	if !strings.Contains(rr.Body.String(), "WebSocket") {
		t.Error("Test page does not mention WebSocket")
	}
}

// TestCreateServer tests the server creation function.
// It verifies that CreateServer returns an HTTP server with the correct
// configuration including address, handler, and timeout settings.
func TestCreateServer(t *testing.T) {
	port := ":8080"
	mux := server.SetupRoutes()

	srv := server.CreateServer(port, mux)

	// Test server configuration
	if srv.Addr != port {
		t.Errorf("Expected server addr %s, got %s", port, srv.Addr)
	}

	if srv.Handler != mux {
		t.Error("Server handler not set correctly")
	}

	// Test timeout settings
	expectedReadTimeout := 15 * time.Second
	expectedWriteTimeout := 15 * time.Second
	expectedIdleTimeout := 60 * time.Second

	if srv.ReadTimeout != expectedReadTimeout {
		t.Errorf("Expected ReadTimeout %v, got %v", expectedReadTimeout, srv.ReadTimeout)
	}

	if srv.WriteTimeout != expectedWriteTimeout {
		t.Errorf("Expected WriteTimeout %v, got %v", expectedWriteTimeout, srv.WriteTimeout)
	}

	if srv.IdleTimeout != expectedIdleTimeout {
		t.Errorf("Expected IdleTimeout %v, got %v", expectedIdleTimeout, srv.IdleTimeout)
	}
}

// TestNewConfig tests the configuration creation function.
// It verifies that NewConfig returns a properly initialized Config
// struct with the expected default values.
func TestNewConfig(t *testing.T) {
	config := server.NewConfig()

	if config == nil {
		t.Fatal("NewConfig returned nil")
	}

	if config.Port != ":8080" {
		t.Errorf("Expected default port :8080, got %s", config.Port)
	}

	if config.MaxMessageSize != 4096 {
		t.Errorf("Expected default max message size 4096, got %d", config.MaxMessageSize)
	}

	if config.RateLimit.Burst != 5 {
		t.Errorf("Expected default rate limit burst 5, got %d", config.RateLimit.Burst)
	}

	if config.RateLimit.RefillInterval != time.Second {
		t.Errorf("Expected default refill interval 1s, got %v", config.RateLimit.RefillInterval)
	}

	if config.HistoryLimit != 100 {
		t.Errorf("Expected default history limit 100, got %d", config.HistoryLimit)
	}

	if config.HistoryReplay != 50 {
		t.Errorf("Expected default history replay 50, got %d", config.HistoryReplay)
	}
}

// TestNewConfigFromEnv verifies that environment variables override the
// defaults and that unset variables fall back to them.
func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9191")
	t.Setenv("MAX_MESSAGE_SIZE", "2048")
	t.Setenv("HISTORY_LIMIT", "20")
	t.Setenv("HISTORY_REPLAY", "10")
	t.Setenv("RATE_LIMIT_BURST", "7")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "250ms")

	config := server.NewConfigFromEnv()

	if config.Port != ":9191" {
		t.Errorf("Expected port :9191, got %s", config.Port)
	}
	if config.MaxMessageSize != 2048 {
		t.Errorf("Expected max message size 2048, got %d", config.MaxMessageSize)
	}
	if config.HistoryLimit != 20 {
		t.Errorf("Expected history limit 20, got %d", config.HistoryLimit)
	}
	if config.HistoryReplay != 10 {
		t.Errorf("Expected history replay 10, got %d", config.HistoryReplay)
	}
	if config.RateLimit.Burst != 7 {
		t.Errorf("Expected rate limit burst 7, got %d", config.RateLimit.Burst)
	}
	if config.RateLimit.RefillInterval != 250*time.Millisecond {
		t.Errorf("Expected refill interval 250ms, got %v", config.RateLimit.RefillInterval)
	}

	// AllowedOrigins was not set, so the default should survive
	if len(config.AllowedOrigins) != 1 || config.AllowedOrigins[0] != "http://localhost:8080" {
		t.Errorf("Expected default allowed origins, got %v", config.AllowedOrigins)
	}
}
