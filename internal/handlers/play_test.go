package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func startSession(t *testing.T, handler *PlayHandler, stageID string) PlayView {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/play",
		strings.NewReader(`{"stage_id":"`+stageID+`"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var view PlayView
	if err := json.NewDecoder(rr.Body).Decode(&view); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return view
}

func applyAction(t *testing.T, handler *PlayHandler, sessionID, body string) PlayView {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/play/"+sessionID+"/action", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var view PlayView
	if err := json.NewDecoder(rr.Body).Decode(&view); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return view
}

func TestPlayHandler_FullWalkthrough(t *testing.T) {
	handler := NewPlayHandler(seededStorage(t), testLogger())

	view := startSession(t, handler, "stage-1")
	if view.Scene == nil || view.Scene.ID != "sc-1" {
		t.Fatalf("Session should start at the first scene, got %+v", view.Scene)
	}
	if view.StageTitle != "The Sunken Archive" {
		t.Errorf("Unexpected stage title %q", view.StageTitle)
	}

	// Town services only set a message
	view = applyAction(t, handler, view.SessionID, `{"action":"town_service","service":"inn"}`)
	if view.TownMessage == "" {
		t.Error("Inn visit should produce a town message")
	}
	if view.Scene == nil || view.Scene.ID != "sc-1" {
		t.Error("Town services must not move the player")
	}

	// Advance into the regular combat
	view = applyAction(t, handler, view.SessionID, `{"action":"advance"}`)
	if view.Scene == nil || view.Scene.ID != "sc-2" {
		t.Fatalf("Expected sc-2, got %+v", view.Scene)
	}
	if len(view.EnemyNames) != 1 || view.EnemyNames[0] != "Ink Wraith" {
		t.Errorf("Enemy IDs should resolve to names, got %v", view.EnemyNames)
	}

	// Winning a regular combat mid-path offers a repeat
	view = applyAction(t, handler, view.SessionID, `{"action":"advance"}`)
	if view.RepeatOffer == nil {
		t.Fatal("Expected a combat-repeat offer")
	}
	if view.RepeatOffer.Reward != "Dry Page" {
		t.Errorf("Offer should carry the reward, got %q", view.RepeatOffer.Reward)
	}
	if view.Scene != nil {
		t.Error("No scene is current while the offer is pending")
	}

	// Retry re-enters the combat
	view = applyAction(t, handler, view.SessionID, `{"action":"retry"}`)
	if view.Scene == nil || view.Scene.ID != "sc-2" {
		t.Fatalf("Retry should re-enter the combat, got %+v", view.Scene)
	}

	// Proceed past it this time
	view = applyAction(t, handler, view.SessionID, `{"action":"advance"}`)
	view = applyAction(t, handler, view.SessionID, `{"action":"proceed"}`)
	if view.Scene == nil || view.Scene.ID != "sc-3" {
		t.Fatalf("Proceed should land on the boss, got %+v", view.Scene)
	}

	// Defeat returns to the town scene
	view = applyAction(t, handler, view.SessionID, `{"action":"defeat"}`)
	if view.Scene == nil || view.Scene.ID != "sc-1" {
		t.Fatalf("Defeat should return to the nearest town, got %+v", view.Scene)
	}

	// Walk to the end: the final boss of the last stage ends the path
	view = applyAction(t, handler, view.SessionID, `{"action":"advance"}`) // into the combat
	view = applyAction(t, handler, view.SessionID, `{"action":"advance"}`) // offer again
	view = applyAction(t, handler, view.SessionID, `{"action":"proceed"}`)
	view = applyAction(t, handler, view.SessionID, `{"action":"advance"}`)
	if !view.Ended {
		t.Errorf("Expected the session to end, got %+v", view)
	}
}

func TestPlayHandler_SessionPersistsAcrossRequests(t *testing.T) {
	handler := NewPlayHandler(seededStorage(t), testLogger())

	view := startSession(t, handler, "stage-1")
	applyAction(t, handler, view.SessionID, `{"action":"advance"}`)

	// A fresh GET rebuilds the player from the stored snapshot
	req := httptest.NewRequest(http.MethodGet, "/v1/play/"+view.SessionID, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var restored PlayView
	if err := json.NewDecoder(rr.Body).Decode(&restored); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if restored.Scene == nil || restored.Scene.ID != "sc-2" {
		t.Errorf("Restored session should be at sc-2, got %+v", restored.Scene)
	}
}

func TestPlayHandler_StartUnknownStage(t *testing.T) {
	handler := NewPlayHandler(seededStorage(t), testLogger())

	// Entry failures are a visible error state, not an HTTP error
	view := startSession(t, handler, "unknown")
	if view.Error == "" {
		t.Error("Unknown stage should surface as a player error")
	}
	if view.Ended {
		t.Error("An error state is not an ended session")
	}
}

func TestPlayHandler_BadRequests(t *testing.T) {
	handler := NewPlayHandler(seededStorage(t), testLogger())
	view := startSession(t, handler, "stage-1")

	req := httptest.NewRequest(http.MethodPost, "/v1/play/"+view.SessionID+"/action",
		strings.NewReader(`{"action":"dance"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Unknown action should be 400, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/play/not-a-uuid", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Malformed session ID should be 400, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/play/00000000-0000-0000-0000-000000000001", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Missing session should be 404, got %d", rr.Code)
	}
}

func TestPlayHandler_EndSession(t *testing.T) {
	storage := seededStorage(t)
	handler := NewPlayHandler(storage, testLogger())
	view := startSession(t, handler, "stage-1")

	req := httptest.NewRequest(http.MethodDelete, "/v1/play/"+view.SessionID, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/play/"+view.SessionID, nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Deleted session should be gone, got %d", rr.Code)
	}
}
