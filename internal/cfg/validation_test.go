package cfg

import (
	"strings"
	"testing"
	"time"
)

// createValidSettings creates a valid Settings struct for testing
func createValidSettings() *Settings {
	return &Settings{
		PMMLVersion:  "4.2",
		TargetName:   "class",
		TargetValues: []string{"setosa", "versicolor", "virginica"},
		FeatureNames: []string{"sepal_length", "sepal_width", "petal_length", "petal_width"},
		ListenPort:   8080,
		RESTTimeout:  5 * time.Second,
		LogLevel:     "info",
	}
}

func TestValidateSettings_ValidConfig(t *testing.T) {
	settings := createValidSettings()

	if err := validateSettings(settings); err != nil {
		t.Errorf("Expected valid config to pass, got error: %v", err)
	}
}

func TestValidateSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantMsg string
	}{
		{"empty version", func(s *Settings) { s.PMMLVersion = "" }, "PMML version"},
		{"blank target name", func(s *Settings) { s.TargetName = "  " }, "target name"},
		{"empty feature name", func(s *Settings) { s.FeatureNames = []string{"a", ""} }, "feature names cannot be empty"},
		{"duplicate feature", func(s *Settings) { s.FeatureNames = []string{"a", "a"} }, "duplicate feature"},
		{"duplicate target value", func(s *Settings) { s.TargetValues = []string{"y", "y"} }, "duplicate target value"},
		{"port too low", func(s *Settings) { s.ListenPort = 1023 }, "listen port"},
		{"port too high", func(s *Settings) { s.ListenPort = 65536 }, "listen port"},
		{"timeout too short", func(s *Settings) { s.RESTTimeout = 500 * time.Millisecond }, "REST timeout"},
		{"timeout too long", func(s *Settings) { s.RESTTimeout = 2 * time.Minute }, "REST timeout"},
		{"scoring URL without host", func(s *Settings) { s.ScoringURL = "http://" }, "scoring URL"},
		{"bad log level", func(s *Settings) { s.LogLevel = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := createValidSettings()
			tt.mutate(settings)

			err := validateSettings(settings)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestValidateSettings_BoundaryValues(t *testing.T) {
	settings := createValidSettings()
	settings.ListenPort = 1024
	settings.RESTTimeout = time.Second
	settings.ScoringURL = "https://scoring.example.com/openscoring"
	if err := validateSettings(settings); err != nil {
		t.Errorf("Expected lower boundaries to pass, got error: %v", err)
	}

	settings.ListenPort = 65535
	settings.RESTTimeout = time.Minute
	if err := validateSettings(settings); err != nil {
		t.Errorf("Expected upper boundaries to pass, got error: %v", err)
	}
}

func TestValidateSettings_UnknownVersionWarnsOnly(t *testing.T) {
	settings := createValidSettings()
	settings.PMMLVersion = "5.0"

	if err := validateSettings(settings); err != nil {
		t.Errorf("Expected unknown version to be accepted, got error: %v", err)
	}
}
