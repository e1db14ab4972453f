package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/healpointhq/clinic-platform/internal/assistant"
	"github.com/healpointhq/clinic-platform/internal/booking"
	"github.com/healpointhq/clinic-platform/internal/directory"
	"github.com/healpointhq/clinic-platform/internal/gate"
	httpmiddleware "github.com/healpointhq/clinic-platform/internal/http/middleware"
	"github.com/healpointhq/clinic-platform/internal/state"
	"github.com/healpointhq/clinic-platform/internal/store"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.New("error")
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	container := state.New(store.New(client, logger))
	if err := container.Load(context.Background()); err != nil {
		t.Fatalf("failed to load state: %v", err)
	}

	service := directory.NewService(container, logger, nil)
	workflow := booking.NewWorkflow(container, logger, nil)
	bridge := assistant.NewBridge(nil, container, logger, nil)
	g := gate.New("AkotaHospital", logger, nil)

	cfg := &Config{
		Logger:           logger,
		DirectoryHandler: directory.NewHandler(service, container, logger),
		BookingHandler:   booking.NewHandler(workflow, container, logger),
		AssistantHandler: assistant.NewHandler(bridge, logger),
		GateHandler:      gate.NewHandler(g, logger),
		Gate:             g,
	}

	return New(cfg)
}

func do(router http.Handler, method, path, session, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(httpmiddleware.SessionHeader, session)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := do(router, http.MethodGet, "/health", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/doctors", "/specialties", "/settings", "/appointments", "/assistant/messages"} {
		rr := do(router, http.MethodGet, path, "s1", "")
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s: expected status %d, got %d", path, http.StatusOK, rr.Code)
		}
	}
}

func TestRouterMintsSessionID(t *testing.T) {
	router := newTestRouter(t)

	rr := do(router, http.MethodGet, "/doctors", "", "")
	if rr.Header().Get(httpmiddleware.SessionHeader) == "" {
		t.Error("expected the response to echo a minted session id")
	}
}

func TestRouterAdminGate(t *testing.T) {
	router := newTestRouter(t)

	// Management routes are locked until the session logs in.
	rr := do(router, http.MethodPost, "/admin/doctors", "s1", `{"name": "Dr. New"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}

	rr = do(router, http.MethodPost, "/admin/login", "s1", `{"password": "AkotaHospital"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected status %d, got %d", http.StatusOK, rr.Code)
	}

	rr = do(router, http.MethodPost, "/admin/doctors", "s1", `{"name": "Dr. New"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
	}

	// The login endpoint itself stays reachable while locked.
	rr = do(router, http.MethodGet, "/admin/session", "s2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("session probe: expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterBookingFlow(t *testing.T) {
	router := newTestRouter(t)

	rr := do(router, http.MethodPost, "/bookings", "s1", `{"doctorId": "1"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("begin: expected status %d, got %d", http.StatusCreated, rr.Code)
	}

	rr = do(router, http.MethodPost, "/bookings/confirm", "s1",
		`{"patientName": "Pat", "contactNumber": "555-0100"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("confirm: expected status %d, got %d", http.StatusCreated, rr.Code)
	}
}
