package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sigco3111/rpg-script-editor/internal/services"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

func TestGenerateHandler_StageList(t *testing.T) {
	mockLLM := services.NewMockLLMAPI()
	mockLLM.SetResponse("```json\n" +
		`[{"title":"T1","settingDescription":"D1"},{"title":"T2","settingDescription":"D2"},{"title":"T3","settingDescription":"D3"}]` +
		"\n```")
	handler := NewGenerateHandler(mockLLM, seededStorage(t), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/generate/stages", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response struct {
		Suggestions []struct {
			Title string `json:"title"`
		} `json:"suggestions"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Suggestions) != 3 {
		t.Errorf("Expected 3 suggestions, got %d", len(response.Suggestions))
	}

	_, genCalls := mockLLM.GetCalls()
	if len(genCalls) != 1 || !strings.Contains(genCalls[0], "Aeloria") {
		t.Error("The prompt should be built from the stored world settings")
	}
}

func TestGenerateHandler_RequiresWorldSettings(t *testing.T) {
	storage := services.NewMockStorage()
	handler := NewGenerateHandler(services.NewMockLLMAPI(), storage, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/generate/stages", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
}

func TestGenerateHandler_Character(t *testing.T) {
	mockLLM := services.NewMockLLMAPI()
	mockLLM.SetResponse(`{"name":"Mira","description":"an innkeeper","dialogueSeed":"local rumors"}`)
	storage := seededStorage(t)
	handler := NewGenerateHandler(mockLLM, storage, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/generate/character",
		strings.NewReader(`{"stage_id":"stage-1","character_type":"npc"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	stored, _ := storage.LoadProject(context.Background())
	roster := stored.Stages[0].Characters
	if len(roster) != 4 {
		t.Fatalf("Expected the character to be appended, roster has %d entries", len(roster))
	}
	added := roster[3]
	if added.Name != "Mira" || added.Type != script.CharacterNPC || added.ID == "" {
		t.Errorf("Unexpected committed character %+v", added)
	}
}

func TestGenerateHandler_Scene(t *testing.T) {
	mockLLM := services.NewMockLLMAPI()
	mockLLM.SetResponse(`{"title":"Whispers","content":"A voice calls.","speakerCharacterName":"Archivist Lune"}`)
	storage := seededStorage(t)
	handler := NewGenerateHandler(mockLLM, storage, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/generate/scene",
		strings.NewReader(`{"stage_id":"stage-1","scene_type":"dialogue","context":"after the ambush"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	stored, _ := storage.LoadProject(context.Background())
	scenes := stored.Stages[0].Scenes
	if len(scenes) != 4 {
		t.Fatalf("Expected the scene to be appended, stage has %d scenes", len(scenes))
	}
	added := scenes[3]
	if added.Type != script.SceneDialogue || added.StageID != "stage-1" {
		t.Errorf("Unexpected committed scene %+v", added)
	}
	if len(added.CharacterIDs) != 1 || added.CharacterIDs[0] != "npc-1" {
		t.Errorf("Speaker should resolve against the stage roster, got %v", added.CharacterIDs)
	}
}

func TestGenerateHandler_FullStage(t *testing.T) {
	bundle := `{
		"generatedStageTitle": "The Deep Stacks",
		"generatedStageSettingDescription": "The flooded lower levels.",
		"characters": [
			{"name":"Warden Eel","type":"boss_monster","description":"Coils in the dark."}
		],
		"scenes": [
			{"type":"narration","title":"Descent","content":"The stairs vanish underwater."},
			{"type":"boss_combat","title":"The Warden","content":"It uncoils.","enemyNames":["Warden Eel"],"reward":"Waterlogged Key"}
		]
	}`
	mockLLM := services.NewMockLLMAPI()
	mockLLM.SetResponse(bundle)
	storage := seededStorage(t)
	handler := NewGenerateHandler(mockLLM, storage, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/generate/stage",
		strings.NewReader(`{"theme":"the flooded depths"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var response struct {
		Stage    script.Stage `json:"stage"`
		Warnings []string     `json:"warnings"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Stage.Title != "The Deep Stacks" {
		t.Errorf("Unexpected stage title %q", response.Stage.Title)
	}
	// Two scenes is far below the requested minimum
	if len(response.Warnings) == 0 {
		t.Error("Short stages should surface warnings")
	}

	stored, _ := storage.LoadProject(context.Background())
	if len(stored.Stages) != 2 {
		t.Fatalf("Generated stage should be committed, project has %d stages", len(stored.Stages))
	}
	committed := stored.Stages[1]
	if committed.Scenes[0].NextSceneID != committed.Scenes[1].ID {
		t.Error("Generated scenes should be chained")
	}
	if committed.Scenes[1].Combat == nil || len(committed.Scenes[1].Combat.EnemyCharacterIDs) != 1 {
		t.Error("Boss enemies should resolve to committed character IDs")
	}
}

func TestGenerateHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(*services.MockLLMAPI)
		expectedStatus int
	}{
		{
			name: "invalid json is 422",
			setup: func(m *services.MockLLMAPI) {
				m.SetResponse("sorry, I cannot do that")
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "non-boss finale is 422",
			setup: func(m *services.MockLLMAPI) {
				m.SetResponse(`{"generatedStageTitle":"T","characters":[],"scenes":[{"type":"narration","title":"S","content":"C"}]}`)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "transport failure is 502",
			setup: func(m *services.MockLLMAPI) {
				m.SetGenerateContentError(errors.New("connection refused"))
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLLM := services.NewMockLLMAPI()
			tt.setup(mockLLM)
			storage := seededStorage(t)
			handler := NewGenerateHandler(mockLLM, storage, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/v1/generate/stage", strings.NewReader(`{}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}

			// No partial stage may be committed on failure
			stored, _ := storage.LoadProject(context.Background())
			if len(stored.Stages) != 1 {
				t.Errorf("Failed generation must not modify the project, got %d stages", len(stored.Stages))
			}
		})
	}
}

func TestGenerateHandler_UnknownStage(t *testing.T) {
	handler := NewGenerateHandler(services.NewMockLLMAPI(), seededStorage(t), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/generate/character",
		strings.NewReader(`{"stage_id":"nope","character_type":"npc"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rr.Code)
	}
}
