package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("OCR_ENGINE", "ollama")
	t.Setenv("OCR_LANG", "deu")
	t.Setenv("MIN_CONFIDENCE", "75.5")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("MAX_UPLOAD_MB", "25")
	t.Setenv("REQUEST_TIMEOUT_SEC", "30")
	t.Setenv("DEBUG", "1")

	cfg := Load()

	if cfg.Engine != "ollama" {
		t.Errorf("Expected Engine to be 'ollama', got '%s'", cfg.Engine)
	}
	if cfg.Language != "deu" {
		t.Errorf("Expected Language to be 'deu', got '%s'", cfg.Language)
	}
	if cfg.MinConfidence != 75.5 {
		t.Errorf("Expected MinConfidence to be 75.5, got %v", cfg.MinConfidence)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Errorf("unexpected AllowedOrigins %v", cfg.AllowedOrigins)
	}
	if cfg.MaxUploadMB != 25 {
		t.Errorf("Expected MaxUploadMB to be 25, got %d", cfg.MaxUploadMB)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected RequestTimeout to be 30s, got %v", cfg.RequestTimeout)
	}
	if !cfg.Debug {
		t.Error("Expected Debug to be true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"OCR_ENGINE", "OCR_LANG", "MIN_CONFIDENCE", "PORT", "MAX_UPLOAD_MB", "REQUEST_TIMEOUT_SEC", "DEBUG"} {
		t.Setenv(key, "")
	}
	t.Setenv("MIN_CONFIDENCE", "lots")

	cfg := Load()

	if cfg.Engine != "tesseract" || cfg.Language != "eng" || cfg.Port != "8080" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.MinConfidence != 60 {
		t.Errorf("Expected default MinConfidence 60, got %v", cfg.MinConfidence)
	}
	if cfg.MaxUploadMB != 10 || cfg.RequestTimeout != 120*time.Second {
		t.Errorf("unexpected limits %+v", cfg)
	}
}

func TestLoad_NaNConfidence(t *testing.T) {
	t.Setenv("MIN_CONFIDENCE", "NaN")

	cfg := Load()

	if cfg.MinConfidence != 60 {
		t.Errorf("Expected NaN MinConfidence to fall back to 60, got %v", cfg.MinConfidence)
	}
}

func TestParseConfidence(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"", 60, false},
		{"0", 0, false},
		{" 85 ", 85, false},
		{"150", 100, false},
		{"-3", 0, false},
		{"high", 0, true},
		{"NaN", 0, true},
		{"nan", 0, true},
		{"+Inf", 100, false},
	}

	for _, tc := range testCases {
		got, err := ParseConfidence(tc.input, 60)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseConfidence(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.expected {
			t.Errorf("ParseConfidence(%q) = %v, expected %v", tc.input, got, tc.expected)
		}
	}
}
