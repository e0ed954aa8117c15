package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedRequestAndResponse(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float64{0.1, 0.2, 0.3},
		})
	}))
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, Model: "test-model", Dimensions: 3})
	vec, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if gotPath != "/api/embeddings" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["model"] != "test-model" || gotBody["prompt"] != "hello world" {
		t.Errorf("request body = %v", gotBody)
	}
	if len(vec) != 3 || vec[1] != float32(0.2) {
		t.Errorf("vec = %v", vec)
	}
	if e.Dimensions() != 3 {
		t.Errorf("Dimensions = %d, want 3", e.Dimensions())
	}
}

func TestEmbedErrorPaths(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer srv.Close()

		if _, err := New(Config{BaseURL: srv.URL}).Embed(context.Background(), "x"); err == nil {
			t.Fatal("status error not propagated")
		}
	})

	t.Run("empty embedding", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float64{}})
		}))
		defer srv.Close()

		if _, err := New(Config{BaseURL: srv.URL}).Embed(context.Background(), "x"); err == nil {
			t.Fatal("empty vector not rejected")
		}
	})

	t.Run("server unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		if _, err := New(Config{BaseURL: srv.URL}).Embed(context.Background(), "x"); err == nil {
			t.Fatal("connection error not propagated")
		}
	})
}

func TestDefaults(t *testing.T) {
	e := New(Config{})
	if e.baseURL != DefaultBaseURL || e.model != DefaultModel || e.dimensions != DefaultDimensions {
		t.Fatalf("defaults not applied: %+v", e)
	}
}
