package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/v1/models" {
			t.Errorf("expected /v1/models, got %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(ModelsResponse{
			Object: "list",
			Data: []Model{
				{ID: "Qwen/Qwen2.5-VL-7B-Instruct", Object: "model"},
				{ID: "other", Object: "model"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-key", "Qwen/Qwen2.5-VL-7B-Instruct", 0)
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("ListModels() returned %d models, want 2", len(models))
	}
	if models[0].ID != "Qwen/Qwen2.5-VL-7B-Instruct" {
		t.Errorf("ListModels()[0].ID = %v", models[0].ID)
	}
}

func TestClient_HasModel(t *testing.T) {
	tests := []struct {
		name       string
		serverResp func(w http.ResponseWriter, r *http.Request)
		model      string
		want       bool
		wantErr    bool
	}{
		{
			name: "default model served",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(ModelsResponse{Data: []Model{{ID: "test-model"}}})
			},
			want: true,
		},
		{
			name: "named model missing",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(ModelsResponse{Data: []Model{{ID: "test-model"}}})
			},
			model: "missing",
			want:  false,
		},
		{
			name: "empty list",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"object":"list"}`))
			},
			want: false,
		},
		{
			name: "server error",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "test-model", 0)
			got, err := client.HasModel(context.Background(), tt.model)

			if tt.wantErr {
				if err == nil {
					t.Error("HasModel() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("HasModel() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasModel() = %v, want %v", got, tt.want)
			}
		})
	}
}
