package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"agent-relay/internal/agent"
	"agent-relay/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewDecideHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDecisionService := mocks.NewMockDecisionService(ctrl)
	handler := NewDecideHandler(mockDecisionService)

	if handler == nil {
		t.Fatal("NewDecideHandler() returned nil")
	}
	if handler.decisionService != mockDecisionService {
		t.Error("NewDecideHandler() decisionService not set correctly")
	}
}

func TestDecideHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	writeFile := agent.Decision{
		Thought: "Create the file.",
		Action: agent.ToolCall{
			ToolName:   agent.ToolWriteFile,
			Parameters: map[string]string{"filepath": "foo.txt", "content": "hi"},
		},
	}

	tests := []struct {
		name         string
		method       string
		body         string
		mockSetup    func(*mocks.MockDecisionService)
		wantStatus   int
		wantDecision *agent.Decision
	}{
		{
			name:   "successful decision",
			method: http.MethodPost,
			body:   `{"history":[{"role":"user","content":"Create a file named foo.txt with content 'hi'"}]}`,
			mockSetup: func(m *mocks.MockDecisionService) {
				m.EXPECT().
					Decide(gomock.Any(), []agent.Message{{Role: "user", Content: "Create a file named foo.txt with content 'hi'"}}).
					Return(writeFile)
			},
			wantStatus:   http.StatusOK,
			wantDecision: &writeFile,
		},
		{
			name:   "fallback decision is still 200",
			method: http.MethodPost,
			body:   `{"history":[{"role":"user","content":"hi"}]}`,
			mockSetup: func(m *mocks.MockDecisionService) {
				m.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(agent.ParseFailureDecision())
			},
			wantStatus:   http.StatusOK,
			wantDecision: ptr(agent.ParseFailureDecision()),
		},
		{
			name:   "tool role passes through",
			method: http.MethodPost,
			body:   `{"history":[{"role":"user","content":"run ls"},{"role":"tool","content":"a.txt"}]}`,
			mockSetup: func(m *mocks.MockDecisionService) {
				m.EXPECT().
					Decide(gomock.Any(), []agent.Message{
						{Role: "user", Content: "run ls"},
						{Role: "tool", Content: "a.txt"},
					}).
					Return(writeFile)
			},
			wantStatus:   http.StatusOK,
			wantDecision: &writeFile,
		},
		{
			name:   "empty history",
			method: http.MethodPost,
			body:   `{"history":[]}`,
			mockSetup: func(m *mocks.MockDecisionService) {
				m.EXPECT().Decide(gomock.Any(), []agent.Message{}).Return(writeFile)
			},
			wantStatus:   http.StatusOK,
			wantDecision: &writeFile,
		},
		{
			name:   "missing history field",
			method: http.MethodPost,
			body:   `{}`,
			mockSetup: func(m *mocks.MockDecisionService) {
				m.EXPECT().Decide(gomock.Any(), gomock.Nil()).Return(writeFile)
			},
			wantStatus:   http.StatusOK,
			wantDecision: &writeFile,
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			mockSetup:  func(m *mocks.MockDecisionService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "invalid JSON body",
			method:     http.MethodPost,
			body:       "invalid json",
			mockSetup:  func(m *mocks.MockDecisionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "history of wrong type",
			method:     http.MethodPost,
			body:       `{"history":"hello"}`,
			mockSetup:  func(m *mocks.MockDecisionService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDecisionService := mocks.NewMockDecisionService(ctrl)
			tt.mockSetup(mockDecisionService)
			handler := NewDecideHandler(mockDecisionService)

			req := httptest.NewRequest(tt.method, "/agent/decide", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}

			if tt.wantDecision != nil {
				var got agent.Decision
				if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if !reflect.DeepEqual(got, *tt.wantDecision) {
					t.Errorf("ServeHTTP() decision = %+v, want %+v", got, *tt.wantDecision)
				}
			} else if tt.wantStatus >= 400 && tt.wantStatus != http.StatusMethodNotAllowed {
				var errResp ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
					t.Fatalf("failed to decode error response: %v", err)
				}
				if errResp.Error == "" {
					t.Error("ServeHTTP() error response should have a message")
				}
			}
		})
	}
}

func TestDecideHandler_ResponseShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDecisionService := mocks.NewMockDecisionService(ctrl)
	mockDecisionService.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(agent.Decision{
		Thought: "Done.",
		Action:  agent.ToolCall{ToolName: agent.ToolFinish, Parameters: map[string]string{"response": "ok"}},
	})

	req := httptest.NewRequest(http.MethodPost, "/agent/decide", strings.NewReader(`{"history":[]}`))
	w := httptest.NewRecorder()
	NewDecideHandler(mockDecisionService).ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := raw["thought"]; !ok {
		t.Error("response missing thought")
	}
	action, ok := raw["action"].(map[string]any)
	if !ok {
		t.Fatal("response missing action object")
	}
	if action["tool_name"] != "finish" {
		t.Errorf("action.tool_name = %v, want finish", action["tool_name"])
	}
	if _, ok := action["parameters"].(map[string]any); !ok {
		t.Error("action.parameters should be an object")
	}
}

func ptr[T any](v T) *T {
	return &v
}
