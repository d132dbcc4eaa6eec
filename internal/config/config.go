// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Server holds everything the HTTP server needs to start. DATABASE_URL is
// required; everything else has a sensible default. GEMINI_API_KEY is
// optional: without it AI analysis is disabled and the local skill heuristic
// serves every request.
type Server struct {
	Port        int
	DatabaseURL string

	UploadDir   string
	MaxCVSizeMB int64

	GeminiAPIKey    string
	AnalysisDelay   time.Duration
	AnalysisWorkers int64
}

// LoadServer reads server configuration from environment variables.
func LoadServer() (*Server, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	port, err := envInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	maxCVSize, err := envInt("MAX_CV_SIZE_MB", 5)
	if err != nil {
		return nil, err
	}
	delaySeconds, err := envInt("ANALYSIS_DELAY_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	workers, err := envInt("ANALYSIS_WORKERS", 2)
	if err != nil {
		return nil, err
	}
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	cfg := &Server{
		Port:            port,
		DatabaseURL:     databaseURL,
		UploadDir:       uploadDir,
		MaxCVSizeMB:     int64(maxCVSize),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		AnalysisDelay:   time.Duration(delaySeconds) * time.Second,
		AnalysisWorkers: int64(workers),
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *Server) normalize() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.MaxCVSizeMB < 1 {
		return fmt.Errorf("MAX_CV_SIZE_MB must be at least 1, got: %d", c.MaxCVSizeMB)
	}
	if c.AnalysisWorkers < 1 {
		return fmt.Errorf("ANALYSIS_WORKERS must be at least 1, got: %d", c.AnalysisWorkers)
	}
	if c.AnalysisDelay < 0 {
		return fmt.Errorf("ANALYSIS_DELAY_SECONDS must be non-negative")
	}
	return nil
}

// envInt reads an integer environment variable with a default.
func envInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return value, nil
}
