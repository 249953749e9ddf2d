package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/encounter-tracker/pkg/combatant"
	"github.com/jwebster45206/encounter-tracker/pkg/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// apiClient wraps the tracker API for the console.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(baseURL string, client *http.Client) *apiClient {
	return &apiClient{baseURL: baseURL, client: client}
}

func (a *apiClient) Health() error {
	resp, err := a.client.Get(a.baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (a *apiClient) CreateSession() (session.Session, error) {
	resp, err := a.client.Post(a.baseURL+"/v1/sessions", "application/json", nil)
	if err != nil {
		return session.Session{}, err
	}
	return decodeSession(resp, http.StatusCreated)
}

func (a *apiClient) GetSession(id uuid.UUID) (session.Session, error) {
	resp, err := a.client.Get(a.baseURL + "/v1/sessions/" + id.String())
	if err != nil {
		return session.Session{}, err
	}
	return decodeSession(resp, http.StatusOK)
}

// Dispatch sends one action envelope and returns the next session state.
func (a *apiClient) Dispatch(id uuid.UUID, envelope any) (session.Session, error) {
	body, err := json.Marshal(envelope)
	if err != nil {
		return session.Session{}, err
	}
	resp, err := a.client.Post(a.baseURL+"/v1/sessions/"+id.String()+"/actions", "application/json", bytes.NewReader(body))
	if err != nil {
		return session.Session{}, err
	}
	return decodeSession(resp, http.StatusOK)
}

func (a *apiClient) AddCombatant(id uuid.UUID, c combatant.Combatant) (session.Session, error) {
	return a.Dispatch(id, map[string]any{
		"type":      session.TypeAddCombatant,
		"combatant": c,
	})
}

func (a *apiClient) RemoveCombatant(id, combatantID uuid.UUID) (session.Session, error) {
	return a.Dispatch(id, map[string]any{
		"type": session.TypeRemoveCombatant,
		"id":   combatantID,
	})
}

func (a *apiClient) ExportSession(id uuid.UUID) (string, error) {
	resp, err := a.client.Get(a.baseURL + "/v1/sessions/" + id.String() + "/export")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out["data"], nil
}

func (a *apiClient) ImportSession(id uuid.UUID, data string) (session.Session, error) {
	body, err := json.Marshal(map[string]string{"data": data})
	if err != nil {
		return session.Session{}, err
	}
	resp, err := a.client.Post(a.baseURL+"/v1/sessions/"+id.String()+"/import", "application/json", bytes.NewReader(body))
	if err != nil {
		return session.Session{}, err
	}
	return decodeSession(resp, http.StatusOK)
}

func decodeSession(resp *http.Response, wantStatus int) (session.Session, error) {
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		return session.Session{}, apiError(resp)
	}
	var s session.Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return session.Session{}, err
	}
	return s, nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("%s", apiErr.Error)
	}
	return fmt.Errorf("API returned %d", resp.StatusCode)
}
