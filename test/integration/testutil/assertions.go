//go:build integration

package testutil

import (
	"encoding/json"
	"net/http"
	"testing"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertError checks the status and the {"error", "code"} body of a failed request.
func AssertError(t *testing.T, resp *http.Response, status int, code string) string {
	t.Helper()
	AssertStatus(t, resp, status)
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	DecodeJSON(t, resp, &body)
	if body.Code != code {
		t.Errorf("expected error code %q, got %q (%s)", code, body.Code, body.Error)
	}
	if body.Error == "" {
		t.Errorf("expected a non-empty error message")
	}
	return body.Error
}
