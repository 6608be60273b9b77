package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/dropcalc/internal/models"
)

func setupTestServer(t *testing.T) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var response any
		switch r.URL.Path {
		case "/api/mocadrop/projects/":
			response = map[string]any{"data": []map[string]any{
				{"name": "Alpha", "urlSlug": "alpha", "tokenTicker": "ALP", "tokensOffered": 1000000, "registrationEndDate": "2024-01-01T00:00:00.000000Z", "mode": "flexible"},
				{"name": "Beta", "urlSlug": "beta", "tokenTicker": "BET", "tokensOffered": 5000, "registrationEndDate": "2099-01-01T00:00:00.000000Z", "mode": "fixed"},
			}}
		case "/api/mocadrop/projects/alpha":
			response = map[string]any{"stakingPowerBurnt": 500000, "registrationEndDate": "2024-01-01T00:00:00.000000Z", "mode": "flexible"}
		case "/api/mocadrop/projects/beta":
			response = map[string]any{"registrationEndDate": "2099-01-01T00:00:00.000000Z", "mode": "fixed", "tierConfig": []map[string]any{
				{"name": "Gold", "tokenAllocation": 50},
			}}
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(server.Close)

	t.Setenv("DROPCALC_API_BASE_URL", server.URL)
	t.Setenv("DROPCALC_API_RETRY_COUNT", "0")
	t.Setenv("DROPCALC_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	calcPrice, calcSP = "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProjectsCommand(t *testing.T) {
	setupTestServer(t)

	out, err := run(t, "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "2 projects")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "1,000,000")
	assert.Contains(t, out, "ended")
	assert.Contains(t, out, "open")
}

func TestCalcCommand_Flexible(t *testing.T) {
	setupTestServer(t)

	out, err := run(t, "calc", "Alpha", "--price", "0.10", "--sp", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "500,000")
	assert.Contains(t, out, "2024-01-01 00:00:00 UTC")
	assert.Contains(t, out, "200.00")
}

func TestCalcCommand_MalformedPrice(t *testing.T) {
	setupTestServer(t)

	out, err := run(t, "calc", "Alpha", "--price", "abc", "--sp", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "No calculation")
}

func TestCalcCommand_Fixed(t *testing.T) {
	setupTestServer(t)

	out, err := run(t, "calc", "Beta", "--price", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Gold")
	assert.Contains(t, out, "100.00")
}

func TestPoolCommand_UnknownProject(t *testing.T) {
	setupTestServer(t)

	_, err := run(t, "pool", "Gamma")
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestResolveCommand_Address(t *testing.T) {
	setupTestServer(t)

	out, err := run(t, "resolve", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	require.NoError(t, err)
	assert.Contains(t, out, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")

	out, err = run(t, "resolve", "not-a-name")
	require.Error(t, err)
	assert.Contains(t, out, "Invalid input. Please enter a valid ENS name or EVM address.")
}
