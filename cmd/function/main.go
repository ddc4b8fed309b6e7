package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/vkoski/wikiviews/internal/config"
	"github.com/vkoski/wikiviews/internal/handlers"
	"github.com/vkoski/wikiviews/internal/repository"
)

func init() {
	// Register HTTP function for scheduled triggers
	functions.HTTP("GenerateReport", GenerateReport)
}

// GenerateReport is the HTTP function for scheduler-driven report generation.
func GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Create server instance
	server, err := handlers.NewServer(cfg)
	if err != nil {
		log.Printf("Failed to create server: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer server.Close()

	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Check Bearer token authentication
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
		return
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
		return
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if cfg.WebhookAuthToken != "" && token != cfg.WebhookAuthToken {
		http.Error(w, "Invalid token", http.StatusForbidden)
		return
	}

	// Parse JSON payload
	var payload struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if payload.Year == 0 {
		http.Error(w, "Missing 'year' in payload", http.StatusBadRequest)
		return
	}

	gen := server.Generator()

	switch r.URL.Path {
	case "/", "/month":
		if payload.Month == 0 {
			http.Error(w, "Missing 'month' in payload", http.StatusBadRequest)
			return
		}

		log.Printf("Generating monthly report via HTTP: %d/%02d", payload.Year, payload.Month)
		rep, err := gen.ProcessMonth(ctx, payload.Year, payload.Month)
		if err != nil {
			writeGenerationError(w, payload.Year, payload.Month, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"path":   rep.Path,
			"rows":   rep.Rows,
		})

	case "/year":
		log.Printf("Generating yearly report via HTTP: %d", payload.Year)
		rep, err := gen.ProcessYear(ctx, payload.Year)
		if err != nil {
			writeGenerationError(w, payload.Year, 0, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"path":   rep.Path,
			"rows":   rep.Rows,
		})

	default:
		http.NotFound(w, r)
	}
}

func writeGenerationError(w http.ResponseWriter, year, month int, err error) {
	if errors.Is(err, repository.ErrNoData) {
		log.Printf("No data available for %d/%02d", year, month)
		http.Error(w, "No data available for the requested period", http.StatusNotFound)
		return
	}
	log.Printf("Report generation failed for %d/%02d: %v", year, month, err)
	http.Error(w, fmt.Sprintf("Report generation failed: %v", err), http.StatusInternalServerError)
}

func main() {
	// This main function is required for Cloud Functions
	// The actual function registration happens in init()
}
