package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertJSONError checks status and that the body is exactly {"error": message}.
func AssertJSONError(t *testing.T, resp *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	require.Equal(t, status, resp.Code, "body: %s", resp.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), "decode error response")
	require.Equal(t, map[string]any{"error": message}, body)
}

func AssertHTTPStatus(t *testing.T, resp *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, resp.Code, "body: %s", resp.Body.String())
}
