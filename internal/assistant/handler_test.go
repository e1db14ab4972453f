package assistant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healpointhq/clinic-platform/internal/domain"
	hpmiddleware "github.com/healpointhq/clinic-platform/internal/http/middleware"
	"github.com/healpointhq/clinic-platform/internal/state"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

func newTestServer(t *testing.T, gen Generator) (*httptest.Server, *state.Container) {
	t.Helper()
	bridge, container := newTestBridge(t, gen)
	r := chi.NewRouter()
	r.Use(hpmiddleware.Session)
	r.Mount("/assistant", NewHandler(bridge, logging.New("error")).Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, container
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, session, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(hpmiddleware.SessionHeader, session)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGetTranscriptSeedsGreeting(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})

	resp := doRequest(t, srv, http.MethodGet, "/assistant/messages", "s1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var messages []Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
	require.Len(t, messages, 1)
	assert.Equal(t, RoleAssistant, messages[0].Role)
	assert.Contains(t, messages[0].Content, "HealPoint Assistant")
}

func TestSendMessage(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{reply: "You should see a Cardiologist."})

	resp := doRequest(t, srv, http.MethodPost, "/assistant/messages", "s1",
		`{"message": "chest pain"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var messages []Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
	require.Len(t, messages, 3) // greeting, user turn, reply
	assert.Equal(t, RoleUser, messages[1].Role)
	assert.Equal(t, "chest pain", messages[1].Content)
	assert.Equal(t, "You should see a Cardiologist.", messages[2].Content)
}

func TestSendEmptyMessageRejected(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})

	resp := doRequest(t, srv, http.MethodPost, "/assistant/messages", "s1",
		`{"message": "   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListSpecialties(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})

	resp := doRequest(t, srv, http.MethodGet, "/assistant/specialties", "s1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var specialties []domain.Specialty
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&specialties))
	assert.Equal(t, domain.DefaultSpecialties(), specialties)
}

func TestApplySpecialtySetsSessionFilter(t *testing.T) {
	srv, container := newTestServer(t, &stubGenerator{})

	resp := doRequest(t, srv, http.MethodPost, "/assistant/specialty", "s1",
		`{"specialty": "Neurologist"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var filter state.Filter
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&filter))
	assert.Equal(t, domain.Specialty("Neurologist"), filter.Specialty)
	assert.Equal(t, filter, container.SessionFilter("s1"))

	// Other sessions keep their own filter.
	assert.Equal(t, domain.AllSpecialties, container.SessionFilter("s2").Specialty)
}
