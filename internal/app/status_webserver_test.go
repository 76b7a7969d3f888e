package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	testApp, _, _ := SetupCaseTest(t, map[string]string{"case.hcl": searchCase})
	recorder := httptest.NewRecorder()

	testApp.healthHandler(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "OK\n", recorder.Body.String())
}

func TestStatusHandler_ReflectsLatestEvaluation(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	testApp, _, _ := SetupCaseTest(t, map[string]string{"case.hcl": searchCase})
	testApp.status.setPhase("searching")
	testApp.status.observed(3, 1750, 1.00452, 0.00132)
	recorder := httptest.NewRecorder()

	// --- Act ---
	testApp.statusHandler(recorder, httptest.NewRequest(http.MethodGet, "/status", nil))

	// --- Assert ---
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var snapshot statusSnapshot
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &snapshot))
	require.Equal(t, "searching", snapshot.Phase)
	require.Equal(t, int64(3), snapshot.Evaluation)
	require.Equal(t, 1750.0, snapshot.Guess)
	require.InDelta(t, 1.00452, snapshot.Keff, 1e-9)
}

func TestStatus_InitialPhase(t *testing.T) {
	t.Parallel()

	st := newStatus()

	require.Equal(t, "starting", st.snapshot().Phase)
}
