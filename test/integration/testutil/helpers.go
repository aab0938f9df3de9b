//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// Do performs a request with an optional JSON body, bearer token and extra headers.
func (env *TestEnv) Do(method, path string, body interface{}, token string, headers ...string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, "")
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPost, path, body, token)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, token)
}

// AuthPUT performs an authenticated PUT request.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPut, path, body, token)
}

// AuthDELETE performs an authenticated DELETE request.
func (env *TestEnv) AuthDELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodDelete, path, nil, token)
}

// RegisterUser creates a new account with generated credentials and returns its token and ID.
func (env *TestEnv) RegisterUser() (token string, userID uuid.UUID) {
	env.t.Helper()
	token, userID, _, _ = env.RegisterUserWithCredentials()
	return token, userID
}

// RegisterUserWithCredentials is RegisterUser that also returns the generated credentials.
func (env *TestEnv) RegisterUserWithCredentials() (token string, userID uuid.UUID, email, password string) {
	env.t.Helper()
	email, password = env.Data.Email(), env.Data.Password()

	resp := env.POST("/register", map[string]string{"email": email, "password": password}, "")
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		env.t.Fatalf("RegisterUser: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token  string    `json:"token"`
		UserID uuid.UUID `json:"user_id"`
	}
	DecodeJSON(env.t, resp, &result)
	return result.Token, result.UserID, email, password
}

// Bout is the bout shape returned by the event endpoints.
type Bout struct {
	ID             uuid.UUID `json:"id"`
	FighterLeftID  uuid.UUID `json:"fighter_left_id"`
	FighterRightID uuid.UUID `json:"fighter_right_id"`
	LeftName       string    `json:"left_name"`
	RightName      string    `json:"right_name"`
	LeftRecord     string    `json:"left_record"`
	RightRecord    string    `json:"right_record"`
	Result         *struct {
		WinnerID   *uuid.UUID `json:"winner_id"`
		WinnerName string     `json:"winner_name"`
		BetType    string     `json:"bet_type"`
		Round      int        `json:"round"`
		Time       string     `json:"time"`
		Details    string     `json:"details"`
	} `json:"result"`
}

// EventDetail is the event shape returned by GET /events/{id}.
type EventDetail struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Location  string    `json:"location"`
	EventDate *string   `json:"event_date"`
	Concluded bool      `json:"concluded"`
	Bouts     []Bout    `json:"bouts"`
}

// CreateEvent posts an event and returns the created card.
func (env *TestEnv) CreateEvent(token string, body map[string]interface{}) EventDetail {
	env.t.Helper()
	resp := env.POST("/events", body, token)
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		env.t.Fatalf("CreateEvent: expected 201, got %d", resp.StatusCode)
	}
	var detail EventDetail
	DecodeJSON(env.t, resp, &detail)
	return detail
}

// GetEvent fetches an event card and fails the test on a non-200.
func (env *TestEnv) GetEvent(id uuid.UUID) EventDetail {
	env.t.Helper()
	resp := env.GET("/events/" + id.String())
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		env.t.Fatalf("GetEvent: expected 200, got %d", resp.StatusCode)
	}
	var detail EventDetail
	DecodeJSON(env.t, resp, &detail)
	return detail
}
