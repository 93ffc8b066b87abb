package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobwatch/internal/core/domain"
)

func TestClient_Operation(t *testing.T) {
	// Mock server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/versioned/v1/operations/op-123" {
			t.Errorf("Expected GET /api/versioned/v1/operations/op-123, got %s %s", r.Method, r.URL.Path)
		}

		// Check Authorization header
		auth := r.Header.Get("Authorization")
		if auth != "Bearer test-token" {
			t.Errorf("Expected bearer token header, got %q", auth)
		}

		response := OperationResponse{
			ID:          "op-123",
			RelativeID:  "operations/42",
			Description: "Materialize views to Elastic",
			State:       "RUNNING",
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")

	op, err := client.Operation(context.Background(), "op-123")
	if err != nil {
		t.Fatalf("Operation failed: %v", err)
	}

	if op.ID != "op-123" {
		t.Errorf("Expected ID 'op-123', got %s", op.ID)
	}
	if op.ResourceID != "operations/42" {
		t.Errorf("Expected resource ID 'operations/42', got %s", op.ResourceID)
	}
	if op.State != domain.StateRunning {
		t.Errorf("Expected state RUNNING, got %s", op.State)
	}
	for _, line := range []string{"Job: operations/42", "Description: Materialize views to Elastic", "State: RUNNING"} {
		if !strings.Contains(op.Details, line) {
			t.Errorf("Expected details to contain %q, got:\n%s", line, op.Details)
		}
	}
}

func TestClient_OperationUnknownState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := OperationResponse{ID: "op-1", State: "SPINNING"}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.Operation(context.Background(), "op-1")
	var unknownErr *domain.UnknownStateError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Expected UnknownStateError, got %v", err)
	}
}

func TestClient_OperationAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ErrorResponse{Status: 404, Message: "Operation not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.Operation(context.Background(), "op-404")
	if err == nil {
		t.Fatal("Expected an error for the 404 response")
	}
	if !strings.Contains(err.Error(), "Operation not found") {
		t.Errorf("Expected the API message in the error, got %v", err)
	}
}

func TestClient_Project(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/versioned/v1/projects/proj-1" {
			t.Errorf("Expected GET /api/versioned/v1/projects/proj-1, got %s %s", r.Method, r.URL.Path)
		}

		response := ProjectResponse{
			ID:         "proj-1",
			RelativeID: "projects/7",
			Name:       "Telecom Categorization",
			Type:       "CATEGORIZATION",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	project, err := client.Project(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	if project.ID != "projects/7" {
		t.Errorf("Expected ID 'projects/7', got %s", project.ID)
	}
	if project.Type != domain.ProjectCategorization {
		t.Errorf("Expected type CATEGORIZATION, got %s", project.Type)
	}
}

func TestClient_PipelineStarts(t *testing.T) {
	var gotPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		gotPaths = append(gotPaths, r.URL.Path)

		response := OperationResponse{ID: "op-9", State: "PENDING"}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	ctx := context.Background()

	if _, err := client.RefreshUnifiedDataset(ctx, "proj-1"); err != nil {
		t.Fatalf("RefreshUnifiedDataset failed: %v", err)
	}
	if _, err := client.TrainModel(ctx, "proj-1"); err != nil {
		t.Fatalf("TrainModel failed: %v", err)
	}
	if _, err := client.PredictModel(ctx, "proj-1"); err != nil {
		t.Fatalf("PredictModel failed: %v", err)
	}

	want := []string{
		"/api/versioned/v1/projects/proj-1/unifiedDataset:refresh",
		"/api/versioned/v1/projects/proj-1/model:train",
		"/api/versioned/v1/projects/proj-1/model:predict",
	}
	for i, path := range want {
		if gotPaths[i] != path {
			t.Errorf("Expected path %s, got %s", path, gotPaths[i])
		}
	}
}
