package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sigco3111/rpg-script-editor/internal/services"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// seedProject returns a small playable project used across handler tests.
func seedProject() *script.Project {
	return &script.Project{
		WorldSettings: &script.WorldSettings{
			Title:        "Aeloria",
			Description:  "A fractured realm held together by fading wards.",
			MainConflict: "The wards are failing.",
			KeyLocations: "The Last Bastion",
		},
		Stages: []script.Stage{
			{
				ID:                 "stage-1",
				Title:              "The Sunken Archive",
				SettingDescription: "A drowned library.",
				Characters: []script.Character{
					{ID: "npc-1", Name: "Archivist Lune", Type: script.CharacterNPC, Description: "The last librarian.", DialogueSeed: "lost books"},
					{ID: "mon-1", Name: "Ink Wraith", Type: script.CharacterRegularMonster, Description: "A living stain."},
					{ID: "boss-1", Name: "The Unbound Codex", Type: script.CharacterBossMonster, Description: "The archive's corrupted heart."},
				},
				Scenes: []script.Scene{
					{ID: "sc-1", StageID: "stage-1", Type: script.SceneTown, Title: "Archive Gate", Content: "A quiet refuge.", NextSceneID: "sc-2"},
					{ID: "sc-2", StageID: "stage-1", Type: script.SceneRegularCombat, Title: "Stacks Ambush", Content: "Ink moves.",
						Combat: &script.CombatDetails{EnemyCharacterIDs: []string{"mon-1"}, Reward: "Dry Page"}, NextSceneID: "sc-3"},
					{ID: "sc-3", StageID: "stage-1", Type: script.SceneBossCombat, Title: "The Reading Room", Content: "The codex opens.",
						Combat: &script.CombatDetails{EnemyCharacterIDs: []string{"boss-1"}, Reward: "Binding Thread"}},
				},
			},
		},
	}
}

func seededStorage(t *testing.T) *services.MockStorage {
	t.Helper()
	storage := services.NewMockStorage()
	if err := storage.SaveProject(context.Background(), seedProject()); err != nil {
		t.Fatal(err)
	}
	return storage
}

func TestProjectHandler_ReadEmpty(t *testing.T) {
	handler := NewProjectHandler(services.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/project", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var project script.Project
	if err := json.NewDecoder(rr.Body).Decode(&project); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if project.WorldSettings != nil {
		t.Error("Empty project should have null world settings")
	}
	if project.Stages == nil || len(project.Stages) != 0 {
		t.Error("Empty project should have an empty stages array")
	}
}

func TestProjectHandler_ReplaceAndRead(t *testing.T) {
	storage := services.NewMockStorage()
	handler := NewProjectHandler(storage, testLogger())

	body, _ := json.Marshal(seedProject())
	req := httptest.NewRequest(http.MethodPut, "/v1/project", strings.NewReader(string(body)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/project", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var project script.Project
	if err := json.NewDecoder(rr.Body).Decode(&project); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if project.WorldSettings == nil || project.WorldSettings.Title != "Aeloria" {
		t.Error("Stored project should round-trip")
	}
	if len(project.Stages) != 1 || len(project.Stages[0].Scenes) != 3 {
		t.Error("Stage content should round-trip")
	}
}

func TestProjectHandler_WorldSettings(t *testing.T) {
	storage := services.NewMockStorage()
	handler := NewProjectHandler(storage, testLogger())

	req := httptest.NewRequest(http.MethodPut, "/v1/project/world",
		strings.NewReader(`{"title":"New World","description":"d","mainConflict":"c","keyLocations":"k"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	stored, _ := storage.LoadProject(context.Background())
	if stored == nil || stored.WorldSettings == nil || stored.WorldSettings.Title != "New World" {
		t.Error("World settings should be persisted")
	}
}

func TestProjectHandler_Import(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "valid document",
			body:           `{"worldSettings":{"title":"Imported"},"stages":[]}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing worldSettings key",
			body:           `{"stages":[]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "stages not an array",
			body:           `{"worldSettings":null,"stages":{}}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not json",
			body:           `not json at all`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := seededStorage(t)
			handler := NewProjectHandler(storage, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/v1/project/import", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}

			stored, _ := storage.LoadProject(context.Background())
			if tt.expectedStatus == http.StatusOK {
				if stored.WorldSettings == nil || stored.WorldSettings.Title != "Imported" {
					t.Error("Imported project should replace the stored one")
				}
			} else {
				// A rejected import must leave the stored project untouched
				if stored.WorldSettings == nil || stored.WorldSettings.Title != "Aeloria" {
					t.Error("Rejected import must not modify the stored project")
				}
			}
		})
	}
}

func TestProjectHandler_Export(t *testing.T) {
	handler := NewProjectHandler(seededStorage(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/project/export", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	disposition := rr.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "Aeloria-project.json") {
		t.Errorf("Export filename should use the world title, got %q", disposition)
	}

	var project script.Project
	if err := json.Unmarshal(rr.Body.Bytes(), &project); err != nil {
		t.Fatalf("Exported document should be valid JSON: %v", err)
	}
	if len(project.Stages) != 1 {
		t.Error("Exported document should contain the stages")
	}
}

func TestProjectHandler_Delete(t *testing.T) {
	storage := seededStorage(t)
	handler := NewProjectHandler(storage, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/v1/project", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}

	stored, _ := storage.LoadProject(context.Background())
	if stored != nil {
		t.Error("Project should be deleted")
	}
}

func TestProjectHandler_MethodNotAllowed(t *testing.T) {
	handler := NewProjectHandler(services.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodPatch, "/v1/project", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected status 405, got %d", rr.Code)
	}
}
