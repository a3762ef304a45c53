package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8000/v1/", "test-key", "test-model", 30*time.Second)
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8000/v1" {
		t.Errorf("NewClient() BaseURL = %v, want http://localhost:8000/v1", client.BaseURL)
	}
	if client.APIKey != "test-key" {
		t.Errorf("NewClient() APIKey = %v, want test-key", client.APIKey)
	}
	if client.Model != "test-model" {
		t.Errorf("NewClient() Model = %v, want test-model", client.Model)
	}
	if client.client == nil {
		t.Fatal("NewClient() client should not be nil")
	}
	if client.client.Timeout != 30*time.Second {
		t.Errorf("NewClient() timeout = %v, want 30s", client.client.Timeout)
	}
}

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name       string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantReply  string
		wantErr    bool
		wantStatus int
	}{
		{
			name: "successful completion",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/chat/completions" {
					t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
				}
				if r.Header.Get("Authorization") != "Bearer test-key" {
					t.Errorf("Authorization = %q, want Bearer test-key", r.Header.Get("Authorization"))
				}

				resp := ChatResponse{
					ID:     "test-id",
					Object: "chat.completion",
					Choices: []ChatChoice{
						{
							Index: 0,
							Message: ChatChoiceMessage{
								Role:    "assistant",
								Content: `{"thought":"t","action":{"tool_name":"finish"}}`,
							},
							FinishReason: "stop",
						},
					},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantReply: `{"thought":"t","action":{"tool_name":"finish"}}`,
		},
		{
			name: "no choices returned",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(ChatResponse{ID: "test-id", Choices: []ChatChoice{}})
			},
			wantErr: true,
		},
		{
			name: "server error",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("internal server error"))
			},
			wantErr:    true,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "unauthorized",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr:    true,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed response body",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewClient(server.URL+"/v1", "test-key", "test-model", 5*time.Second)
			messages := []Message{{Role: "user", Content: "Hello"}}
			reply, err := client.Complete(context.Background(), messages, ChatParams{})

			if tt.wantErr {
				if err == nil {
					t.Fatal("Complete() expected error, got nil")
				}
				if tt.wantStatus != 0 {
					var statusErr *StatusError
					if !errors.As(err, &statusErr) || statusErr.StatusCode != tt.wantStatus {
						t.Errorf("Complete() error = %v, want StatusError %d", err, tt.wantStatus)
					}
				}
				return
			}

			if err != nil {
				t.Fatalf("Complete() unexpected error: %v", err)
			}
			if reply != tt.wantReply {
				t.Errorf("Complete() reply = %v, want %v", reply, tt.wantReply)
			}
		})
	}
}

func TestClient_Complete_RequestPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			t.Fatalf("request body is not JSON: %v", err)
		}
		if string(fields["temperature"]) != "0" {
			t.Errorf("temperature = %s, want 0", fields["temperature"])
		}
		if string(fields["stream"]) != "false" {
			t.Errorf("stream = %s, want false", fields["stream"])
		}
		if _, ok := fields["max_tokens"]; ok {
			t.Error("max_tokens should be omitted when zero")
		}

		var req ChatRequest
		_ = json.Unmarshal(raw, &req)
		if req.Model != "test-model" {
			t.Errorf("expected model test-model, got %s", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("message order not preserved: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Choices: []ChatChoice{{Message: ChatChoiceMessage{Content: "Response"}}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", 0)
	messages := []Message{
		{Role: "system", Content: "You are a coding agent"},
		{Role: "user", Content: "Hello"},
	}

	reply, err := client.Complete(context.Background(), messages, ChatParams{Temperature: 0})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "Response" {
		t.Errorf("Complete() reply = %v, want Response", reply)
	}
}

func TestClient_Complete_ModelOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "custom-model" {
			t.Errorf("expected model custom-model, got %s", req.Model)
		}
		if req.MaxTokens != 100 {
			t.Errorf("expected max_tokens 100, got %d", req.MaxTokens)
		}
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Choices: []ChatChoice{{Message: ChatChoiceMessage{Content: "ok"}}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", 0)
	_, err := client.Complete(context.Background(), nil, ChatParams{Model: "custom-model", MaxTokens: 100})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestClient_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", 50*time.Millisecond)
	_, err := client.Complete(context.Background(), nil, ChatParams{})
	if err == nil {
		t.Fatal("Complete() expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to send request") {
		t.Errorf("Complete() error = %v, want transport error", err)
	}
}

func TestClient_Complete_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "test-key", "test-model", time.Second)
	if _, err := client.Complete(context.Background(), nil, ChatParams{}); err == nil {
		t.Fatal("Complete() expected error for unreachable server")
	}
}
