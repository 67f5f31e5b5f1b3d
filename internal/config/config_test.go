package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Port != "5001" {
		t.Errorf("Port = %q, want 5001", cfg.Port)
	}
	if cfg.InferenceAPIURL != "https://detect.roboflow.com" {
		t.Errorf("InferenceAPIURL = %q", cfg.InferenceAPIURL)
	}
	if cfg.InferenceModelID != "yolov8-3hm9w/1" {
		t.Errorf("InferenceModelID = %q", cfg.InferenceModelID)
	}
	if cfg.MongoDatabase != "UrbanFix" {
		t.Errorf("MongoDatabase = %q", cfg.MongoDatabase)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", cfg.SMTPPort)
	}
	if cfg.TempFileMaxAge != time.Hour {
		t.Errorf("TempFileMaxAge = %s, want 1h", cfg.TempFileMaxAge)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ROBOFLOW_MODEL_ID", "custom-model/3")
	t.Setenv("INFERENCE_TIMEOUT", "5s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.InferenceModelID != "custom-model/3" {
		t.Errorf("InferenceModelID = %q", cfg.InferenceModelID)
	}
	if cfg.InferenceTimeout != 5*time.Second {
		t.Errorf("InferenceTimeout = %s, want 5s", cfg.InferenceTimeout)
	}
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{"non-numeric", "abc"},
		{"zero", "0"},
		{"too large", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			if _, err := LoadFromEnv(); err == nil {
				t.Error("expected error for invalid PORT")
			}
		})
	}
}

func TestLoadFromEnv_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %s, want default 60s", cfg.RequestTimeout)
	}
}

func TestInferenceEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		apiURL  string
		modelID string
		want    string
	}{
		{
			name:    "no trailing slash",
			apiURL:  "https://detect.roboflow.com",
			modelID: "yolov8-3hm9w/1",
			want:    "https://detect.roboflow.com/yolov8-3hm9w/1",
		},
		{
			name:    "trailing slash trimmed",
			apiURL:  "https://detect.roboflow.com/",
			modelID: "yolov8-3hm9w/1",
			want:    "https://detect.roboflow.com/yolov8-3hm9w/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{InferenceAPIURL: tt.apiURL, InferenceModelID: tt.modelID}
			if got := cfg.InferenceEndpoint(); got != tt.want {
				t.Errorf("InferenceEndpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 0.0.0.0 ", Port: "5001"}
	if got := cfg.ServerAddress(); got != "0.0.0.0:5001" {
		t.Errorf("ServerAddress() = %q, want 0.0.0.0:5001", got)
	}
}
