// Package testhelpers provides common utilities and helper functions for
// testing the Nexus chat server.
//
// This package contains reusable test utilities that are shared across unit
// and integration tests. It provides functions for creating test servers,
// speaking the event-envelope protocol over WebSocket connections, and
// asserting response properties to reduce code duplication in test files.
package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// Envelope mirrors the wire frame exchanged with the server: a named event
// plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// CreateTestServer creates a test HTTP server with the given handler.
// It returns a running httptest.Server that should be closed after use.
func CreateTestServer(handler http.Handler) *httptest.Server {
	return httptest.NewServer(handler)
}

// CreateTestServerWithConfig creates a test server with custom timeout
// configuration. It allows specifying custom read, write, and idle timeouts
// for testing server behavior under different timeout conditions.
func CreateTestServerWithConfig(
	handler http.Handler,
	readTimeout, writeTimeout, idleTimeout time.Duration,
) *httptest.Server {
	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	testServer := httptest.NewUnstartedServer(handler)
	testServer.Config = server
	testServer.Start()
	return testServer
}

// AssertStatusCode checks if the HTTP response has the expected status
// code. It fails the test with a descriptive error message if the status
// codes don't match.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// AssertContentType checks if the HTTP response has the expected
// Content-Type header. It fails the test with a descriptive error message
// if the content types don't match.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	contentType := resp.Header.Get("Content-Type")
	if contentType != expected {
		t.Errorf("Expected content type %s, got %s", expected, contentType)
	}
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot
// be created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// ConnectWebSocket creates a WebSocket connection to the specified URL with
// the given Origin header. It returns the connection or an error if the
// connection fails.
func ConnectWebSocket(url, origin string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// SendEvent writes one event-envelope frame to the connection.
func SendEvent(conn *websocket.Conn, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}
	return conn.WriteJSON(Envelope{Event: event, Data: payload})
}

// SendChatMessage sends a broadcast chat message with the given text.
func SendChatMessage(conn *websocket.Conn, text string) error {
	return SendEvent(conn, "message", map[string]string{"text": text})
}

// Join claims an identity on the connection. It does not wait for the
// server's response; pair it with ReadUntilEvent.
func Join(conn *websocket.Conn, username, avatar string) error {
	return SendEvent(conn, "join", map[string]string{"username": username, "avatar": avatar})
}

// ReadEvent reads the next event-envelope frame from the connection.
func ReadEvent(conn *websocket.Conn) (Envelope, error) {
	var env Envelope
	err := conn.ReadJSON(&env)
	return env, err
}

// ReadUntilEvent reads frames until one with the named event arrives,
// returning its decoded payload as a generic map. Frames for other events
// are discarded. It fails the test if the deadline passes first.
func ReadUntilEvent(t *testing.T, conn *websocket.Conn, event string, timeout time.Duration) map[string]any {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	for {
		env, err := ReadEvent(conn)
		if err != nil {
			t.Fatalf("Did not receive %q event: %v", event, err)
		}
		if env.Event != event {
			continue
		}

		data := map[string]any{}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatalf("Failed to decode %q payload: %v", event, err)
			}
		}
		return data
	}
}

// ExpectNoEvent asserts that no frame with the named event arrives before
// the timeout. Frames for other events are discarded.
func ExpectNoEvent(t *testing.T, conn *websocket.Conn, event string, timeout time.Duration) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	for {
		env, err := ReadEvent(conn)
		if err != nil {
			return
		}
		if env.Event == event {
			t.Fatalf("Expected no %q event, but received one", event)
		}
	}
}

// SendRawMessage sends a raw byte message over the WebSocket connection.
func SendRawMessage(conn *websocket.Conn, messageType int, data []byte) error {
	return conn.WriteMessage(messageType, data)
}

// ReceiveRawMessage reads a raw message from the WebSocket connection.
func ReceiveRawMessage(conn *websocket.Conn) (int, []byte, error) {
	return conn.ReadMessage()
}

// CloseWebSocket gracefully closes a WebSocket connection.
func CloseWebSocket(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}
