package config

import (
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// TestConfigDefaultsGoldenFile tests that our defaults match the golden file
func TestConfigDefaultsGoldenFile(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	goldenData, err := os.ReadFile("testdata/defaults.yaml")
	if err != nil {
		t.Fatalf("Failed to read golden defaults file: %v", err)
	}

	var goldenConfig Config
	if err := yaml.Unmarshal(goldenData, &goldenConfig); err != nil {
		t.Fatalf("Failed to parse golden config: %v", err)
	}

	testConfig := &Config{}
	ApplyDefaults(testConfig)

	if *testConfig != goldenConfig {
		t.Errorf("Defaults drifted from testdata/defaults.yaml.\n got: %+v\nwant: %+v", *testConfig, goldenConfig)
	}
}

// TestGeneratedYAMLRoundTrip ensures the output of cmd/generate-config loads back as the defaults
func TestGeneratedYAMLRoundTrip(t *testing.T) {
	cfg := Default()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Failed to marshal defaults: %v", err)
	}

	for _, secret := range []string{"access_key", "secret_key", "redis_password", "clerk"} {
		if strings.Contains(string(data), secret) {
			t.Errorf("Generated config must not contain %q", secret)
		}
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Failed to parse generated YAML: %v", err)
	}
	if loaded != *cfg {
		t.Errorf("Round trip mismatch: got %+v, want %+v", loaded, *cfg)
	}
}

// TestInvalidConfigValidation tests validation using invalid config files
func TestInvalidConfigValidation(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)
	clearConfigEnv(t)

	testCases := []struct {
		name        string
		filename    string
		expectError bool
		errorText   string
	}{
		{
			name:        "Unsupported database driver",
			filename:    "testdata/invalid_driver.yaml",
			expectError: true,
			errorText:   "database.driver",
		},
		{
			name:        "Valid defaults file",
			filename:    "testdata/defaults.yaml",
			expectError: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			originalAppConfig := AppConfig
			defer func() { AppConfig = originalAppConfig }()

			err := LoadConfig(tc.filename)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tc.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
			if tc.expectError && err != nil && tc.errorText != "" {
				if !strings.Contains(err.Error(), tc.errorText) {
					t.Errorf("Expected error to contain %q, got %q", tc.errorText, err.Error())
				}
			}
		})
	}
}
