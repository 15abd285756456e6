package cfg

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"pmml-exporter/internal/common"
	"pmml-exporter/internal/pmml"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	PMMLVersion  string
	TargetName   string
	TargetValues []string
	FeatureNames []string
	ModelName    string
	Description  string
	Copyright    string

	DataPath    string
	ListenPort  int
	ScoringURL  string
	RESTTimeout time.Duration
	LogLevel    string
}

type ConfigFile struct {
	Document struct {
		Version      string   `yaml:"version"`
		TargetName   string   `yaml:"targetName"`
		TargetValues []string `yaml:"targetValues"`
		FeatureNames []string `yaml:"featureNames"`
		ModelName    string   `yaml:"modelName"`
		Description  string   `yaml:"description"`
		Copyright    string   `yaml:"copyright"`
	} `yaml:"document"`

	Scoring struct {
		URL         string `yaml:"url"`
		RESTTimeout string `yaml:"restTimeout"`
	} `yaml:"scoring"`

	System struct {
		DataPath   string `yaml:"dataPath"`
		ListenPort int    `yaml:"listenPort"`
		LogLevel   string `yaml:"logLevel"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	restTimeout, err := time.ParseDuration(getEnvOrDefault(common.EnvRESTTimeout, config.Scoring.RESTTimeout))
	if err != nil {
		restTimeout, _ = time.ParseDuration(common.DefaultRESTTimeout)
	}

	// Override with environment variables if they exist
	settings := Settings{
		PMMLVersion:  getEnvOrDefault(common.EnvPMMLVersion, orDefault(config.Document.Version, common.DefaultPMMLVersion)),
		TargetName:   getEnvOrDefault(common.EnvTargetName, orDefault(config.Document.TargetName, common.DefaultTargetName)),
		TargetValues: getListFromEnvOrConfig(common.EnvTargetValues, config.Document.TargetValues),
		FeatureNames: getListFromEnvOrConfig(common.EnvFeatureNames, config.Document.FeatureNames),
		ModelName:    getEnvOrDefault(common.EnvModelName, config.Document.ModelName),
		Description:  getEnvOrDefault(common.EnvDescription, config.Document.Description),
		Copyright:    getEnvOrDefault(common.EnvCopyright, config.Document.Copyright),
		DataPath:     getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		ListenPort:   getIntFromEnvOrConfig(common.EnvListenPort, config.System.ListenPort, common.DefaultListenPort),
		ScoringURL:   getEnvOrDefault(common.EnvScoringURL, config.Scoring.URL),
		RESTTimeout:  restTimeout,
		LogLevel:     getEnvOrDefault(common.EnvLogLevel, orDefault(config.System.LogLevel, common.DefaultLogLevel)),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	defaultTimeout, _ := time.ParseDuration(common.DefaultRESTTimeout)

	settings := Settings{
		PMMLVersion:  getEnvOrDefault(common.EnvPMMLVersion, common.DefaultPMMLVersion),
		TargetName:   getEnvOrDefault(common.EnvTargetName, common.DefaultTargetName),
		TargetValues: splitOrDefault(os.Getenv(common.EnvTargetValues), nil),
		FeatureNames: splitOrDefault(os.Getenv(common.EnvFeatureNames), nil),
		ModelName:    os.Getenv(common.EnvModelName),
		Description:  os.Getenv(common.EnvDescription),
		Copyright:    os.Getenv(common.EnvCopyright),
		DataPath:     os.Getenv(common.EnvDataPath), // optional
		ListenPort:   getIntOrDefault(common.EnvListenPort, common.DefaultListenPort),
		ScoringURL:   os.Getenv(common.EnvScoringURL), // optional
		RESTTimeout:  getDurationOrDefault(common.EnvRESTTimeout, defaultTimeout),
		LogLevel:     getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, defaultValue string) string {
	if v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func splitOrDefault(v string, def []string) []string {
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func getListFromEnvOrConfig(key string, configValues []string) []string {
	if env := os.Getenv(key); env != "" {
		return splitOrDefault(env, nil)
	}
	return configValues
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.PMMLVersion == "" {
		return fmt.Errorf("PMML version cannot be empty")
	}
	if !pmml.KnownVersion(settings.PMMLVersion) {
		log.Warn().Str("version", settings.PMMLVersion).Msg("Unknown PMML version, documents will use the 4.2 namespace")
	}
	if strings.TrimSpace(settings.TargetName) == "" {
		return fmt.Errorf("target name cannot be empty")
	}
	if err := uniqueNames("feature", settings.FeatureNames); err != nil {
		return err
	}
	if err := uniqueNames("target value", settings.TargetValues); err != nil {
		return err
	}

	if settings.ListenPort < common.MinListenPort || settings.ListenPort > common.MaxListenPort {
		return fmt.Errorf("listen port must be between %d and %d, got %d", common.MinListenPort, common.MaxListenPort, settings.ListenPort)
	}
	if settings.RESTTimeout < time.Second || settings.RESTTimeout > time.Minute {
		return fmt.Errorf("REST timeout must be between 1s and 1m, got %v", settings.RESTTimeout)
	}

	if settings.ScoringURL != "" {
		u, err := url.Parse(settings.ScoringURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("scoring URL must be an absolute URL, got %q", settings.ScoringURL)
		}
	}

	if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}

	return nil
}

func uniqueNames(kind string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("%s names cannot be empty", kind)
		}
		if seen[n] {
			return fmt.Errorf("duplicate %s name %q", kind, n)
		}
		seen[n] = true
	}
	return nil
}
