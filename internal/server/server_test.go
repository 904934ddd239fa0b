package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/open-event-systems/interview/internal/config"
	"github.com/open-event-systems/interview/internal/logging"
	"github.com/open-event-systems/interview/pkg/logic"
	"github.com/open-event-systems/interview/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScript = `
interviews:
  registration:
    questions:
      age:
        fields:
          - set: age
            type: number
            label: "How old are you?"
            integer: true
    steps:
      - ask: age
      - exit: "Sorry"
        when: "age < 18"
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ev := logic.NewEvaluator(0)
	interviews, err := config.ParseInterviews([]byte(testScript), ev)
	require.NoError(t, err)

	handler := NewHandler(interviews, memory.New(), logging.NewNop())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestStartAndUpdateInterview(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/interviews/registration", map[string]any{
		"target": "cart-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	key, _ := body["state"].(string)
	require.NotEmpty(t, key)
	assert.Equal(t, false, body["completed"])

	// First update with no responses yields the age question.
	resp, body = postJSON(t, srv.URL+"/update-interview", map[string]any{
		"state": key,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	content, _ := body["content"].(map[string]any)
	require.NotNil(t, content)
	assert.Equal(t, "question", content["type"])
	key, _ = body["state"].(string)
	require.NotEmpty(t, key)

	// Answering as an adult completes the interview.
	resp, body = postJSON(t, srv.URL+"/update-interview", map[string]any{
		"state":     key,
		"responses": map[string]any{"field_0": 30},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, "cart-1", body["target"])
	assert.Nil(t, body["content"])
}

func TestUpdateInterviewExit(t *testing.T) {
	srv := newTestServer(t)

	_, body := postJSON(t, srv.URL+"/interviews/registration", map[string]any{})
	key := body["state"].(string)

	_, body = postJSON(t, srv.URL+"/update-interview", map[string]any{"state": key})
	key = body["state"].(string)

	resp, body := postJSON(t, srv.URL+"/update-interview", map[string]any{
		"state":     key,
		"responses": map[string]any{"field_0": 12},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["completed"])
	content, _ := body["content"].(map[string]any)
	require.NotNil(t, content)
	assert.Equal(t, "exit", content["type"])
	assert.Equal(t, "Sorry", content["message"])
}

func TestStartUnknownInterview(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := postJSON(t, srv.URL+"/interviews/nope", map[string]any{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateUnknownState(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := postJSON(t, srv.URL+"/update-interview", map[string]any{
		"state": "missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateValidationError(t *testing.T) {
	srv := newTestServer(t)

	_, body := postJSON(t, srv.URL+"/interviews/registration", map[string]any{})
	key := body["state"].(string)

	_, body = postJSON(t, srv.URL+"/update-interview", map[string]any{"state": key})
	key = body["state"].(string)

	// A non-numeric answer to the age question is user error.
	resp, body := postJSON(t, srv.URL+"/update-interview", map[string]any{
		"state":     key,
		"responses": map[string]any{"field_0": "old"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestStateKeysAreSingleUseSnapshots(t *testing.T) {
	srv := newTestServer(t)

	_, body := postJSON(t, srv.URL+"/interviews/registration", map[string]any{})
	key := body["state"].(string)

	_, first := postJSON(t, srv.URL+"/update-interview", map[string]any{"state": key})
	_, second := postJSON(t, srv.URL+"/update-interview", map[string]any{"state": key})

	// Replaying the same key is allowed; each update stores a new snapshot
	// under a distinct key.
	assert.NotEqual(t, first["state"], second["state"])
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
