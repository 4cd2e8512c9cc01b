package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketdesk/pkg/models"
)

func TestReport_HTML(t *testing.T) {
	srv := testServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "Trade Surveillance")
	assert.Contains(t, body, "Risk-Off")

	// Every analysis in the report is audited.
	assert.Equal(t, 4, srv.AuditLog().Len())
}

func TestReport_TextSections(t *testing.T) {
	srv := testServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/report?format=text&sections=regime", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "■ MARKET REGIME")
	assert.NotContains(t, body, "■ CLIENT BRIEF")
}

func TestReport_JSON(t *testing.T) {
	srv := testServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/report?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var b models.DeskBundle
	env := decodeData(t, rec, &b)
	assert.True(t, env.Success)
	assert.Equal(t, models.ModeMock, b.Mode)
	require.NotNil(t, b.Brief)
	assert.NotEmpty(t, b.Brief.TalkingPoints)
}

func TestReport_BadRequests(t *testing.T) {
	srv := testServer(t, nil)

	for _, path := range []string{
		"/api/v1/report?format=pdf",
		"/api/v1/report?sections=weather",
		"/api/v1/report?mode=turbo",
	} {
		rec := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	assert.Zero(t, srv.AuditLog().Len())
}
