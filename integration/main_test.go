//go:build integration
// +build integration

// Package integration exercises a running API instance end to end.
// Start the stack first, then run:
//
//	go test -tags integration ./integration/
//
// API_BASE_URL overrides the default http://localhost:8080.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	apiBaseURL = "http://localhost:8080"
	client     = &http.Client{Timeout: 30 * time.Second}
)

func TestMain(m *testing.M) {
	if url := os.Getenv("API_BASE_URL"); url != "" {
		apiBaseURL = url
	}

	fmt.Printf("Running RPG Script Editor Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", apiBaseURL)

	os.Exit(m.Run())
}

func doJSON(t *testing.T, method, path string, body any, expectedStatus int) []byte {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiBaseURL+path, reader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if resp.StatusCode != expectedStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s",
			method, path, expectedStatus, resp.StatusCode, string(respBody))
	}
	return respBody
}

func TestHealthEndpoint(t *testing.T) {
	body := doJSON(t, http.MethodGet, "/health", nil, http.StatusOK)

	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("Failed to parse health response: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("Expected healthy status, got %q", health.Status)
	}
}

// testProject is a minimal playable document: a town, one regular combat
// and the boss finale.
var testProject = map[string]any{
	"worldSettings": map[string]any{
		"title":        "Integration Realm",
		"description":  "A throwaway world for end-to-end runs.",
		"mainConflict": "The build is broken.",
		"keyLocations": "The Pipeline",
	},
	"stages": []any{
		map[string]any{
			"id":                 "it-stage-1",
			"title":              "Smoke Stage",
			"settingDescription": "A short path.",
			"characters": []any{
				map[string]any{"id": "it-mon-1", "name": "Flaky Test", "type": "regular_monster", "description": "It fails sometimes."},
				map[string]any{"id": "it-boss-1", "name": "Race Condition", "type": "boss_monster", "description": "Hard to reproduce."},
			},
			"scenes": []any{
				map[string]any{"id": "it-sc-1", "stageId": "it-stage-1", "type": "town", "title": "Green Build", "content": "All quiet.", "nextSceneId": "it-sc-2"},
				map[string]any{"id": "it-sc-2", "stageId": "it-stage-1", "type": "regular_combat", "title": "Red Build", "content": "Something fails.",
					"combatDetails": map[string]any{"enemyCharacterIds": []any{"it-mon-1"}, "reward": "Stack Trace"}, "nextSceneId": "it-sc-3"},
				map[string]any{"id": "it-sc-3", "stageId": "it-stage-1", "type": "boss_combat", "title": "The Deadline", "content": "It looms.",
					"combatDetails": map[string]any{"enemyCharacterIds": []any{"it-boss-1"}}},
			},
		},
	},
}

func TestProjectLifecycle(t *testing.T) {
	doJSON(t, http.MethodPut, "/v1/project", testProject, http.StatusOK)

	body := doJSON(t, http.MethodGet, "/v1/project", nil, http.StatusOK)
	var project struct {
		WorldSettings *struct {
			Title string `json:"title"`
		} `json:"worldSettings"`
		Stages []json.RawMessage `json:"stages"`
	}
	if err := json.Unmarshal(body, &project); err != nil {
		t.Fatalf("Failed to parse project: %v", err)
	}
	if project.WorldSettings == nil || project.WorldSettings.Title != "Integration Realm" {
		t.Error("Stored project should round-trip")
	}
	if len(project.Stages) != 1 {
		t.Errorf("Expected 1 stage, got %d", len(project.Stages))
	}

	resp, err := client.Get(apiBaseURL + "/v1/project/export")
	if err != nil {
		t.Fatalf("Export request failed: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if got := resp.Header.Get("Content-Disposition"); got == "" {
		t.Error("Export should set Content-Disposition")
	}
}

func TestPlayWalkthrough(t *testing.T) {
	doJSON(t, http.MethodPut, "/v1/project", testProject, http.StatusOK)

	type playView struct {
		SessionID string `json:"session_id"`
		Scene     *struct {
			ID string `json:"id"`
		} `json:"scene"`
		RepeatOffer *struct {
			Reward string `json:"reward"`
		} `json:"repeat_offer"`
		Error string `json:"error"`
		Ended bool   `json:"ended"`
	}

	var view playView
	body := doJSON(t, http.MethodPost, "/v1/play",
		map[string]string{"stage_id": "it-stage-1"}, http.StatusCreated)
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("Failed to parse play view: %v", err)
	}
	if view.Error != "" {
		t.Fatalf("Session start failed: %s", view.Error)
	}
	if view.Scene == nil || view.Scene.ID != "it-sc-1" {
		t.Fatalf("Session should start at the town, got %+v", view.Scene)
	}

	act := func(action string) playView {
		t.Helper()
		body := doJSON(t, http.MethodPost, "/v1/play/"+view.SessionID+"/action",
			map[string]string{"action": action}, http.StatusOK)
		var next playView
		if err := json.Unmarshal(body, &next); err != nil {
			t.Fatalf("Failed to parse play view: %v", err)
		}
		return next
	}

	v := act("advance") // into the combat
	if v.Scene == nil || v.Scene.ID != "it-sc-2" {
		t.Fatalf("Expected it-sc-2, got %+v", v.Scene)
	}

	v = act("advance") // win, repeat offer
	if v.RepeatOffer == nil || v.RepeatOffer.Reward != "Stack Trace" {
		t.Fatalf("Expected a repeat offer with the reward, got %+v", v)
	}

	v = act("proceed")
	if v.Scene == nil || v.Scene.ID != "it-sc-3" {
		t.Fatalf("Proceed should land on the boss, got %+v", v.Scene)
	}

	v = act("advance") // clear the final boss
	if !v.Ended {
		t.Fatalf("Expected the session to end, got %+v", v)
	}

	req, _ := http.NewRequest(http.MethodDelete, apiBaseURL+"/v1/play/"+view.SessionID, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to end session: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204 ending the session, got %d", resp.StatusCode)
	}
}
