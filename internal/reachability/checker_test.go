package reachability_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/veilbox/veil/internal/reachability"
)

func TestCheck_HTTPReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := reachability.NewChecker()
	result, err := checker.Check(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if !result.Reachable {
		t.Error("Expected server to be reachable")
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", result.StatusCode)
	}
}

func TestCheck_HTTPAuthWallStillCountsAsUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	checker := reachability.NewChecker()
	result, err := checker.Check(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !result.Reachable {
		t.Error("401 proves a listener; expected reachable")
	}
}

func TestCheck_HTTPServerErrorIsDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	checker := reachability.NewChecker()
	result, err := checker.Check(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if result.Reachable {
		t.Error("5xx should not count as reachable")
	}
}

func TestCheck_HeadRejected_FallsBackToGet(t *testing.T) {
	var sawGet bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sawGet = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := reachability.NewChecker()
	result, err := checker.Check(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !result.Reachable || !sawGet {
		t.Errorf("Expected GET fallback to succeed (reachable=%v, sawGet=%v)", result.Reachable, sawGet)
	}
}

func TestCheck_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := server.URL
	server.Close()

	checker := reachability.NewChecker()
	result, err := checker.Check(context.Background(), dead)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if result.Reachable {
		t.Error("Closed port reported as reachable")
	}
}

func TestCheck_Websocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	checker := reachability.NewChecker()
	result, err := checker.Check(context.Background(), wsURL)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !result.Reachable {
		t.Error("Expected websocket endpoint to be reachable")
	}
}

func TestCheck_UnsupportedScheme(t *testing.T) {
	checker := reachability.NewChecker()

	_, err := checker.Check(context.Background(), "ftp://example.com/file")
	if !errors.Is(err, reachability.ErrUnsupportedScheme) {
		t.Errorf("Check error = %v, want ErrUnsupportedScheme", err)
	}
}
