package common

// Application identity written into every PMML Header.
const (
	ApplicationName = "pmml-exporter"
	Version         = "0.3.0"
)

// Environment variable keys
const (
	EnvConfigFile   = "CONFIG_FILE"
	EnvPMMLVersion  = "PMML_VERSION"
	EnvTargetName   = "TARGET_NAME"
	EnvTargetValues = "TARGET_VALUES"
	EnvFeatureNames = "FEATURE_NAMES"
	EnvModelName    = "MODEL_NAME"
	EnvDescription  = "PMML_DESCRIPTION"
	EnvCopyright    = "PMML_COPYRIGHT"
	EnvDataPath     = "DATA_PATH"
	EnvListenPort   = "LISTEN_PORT"
	EnvScoringURL   = "SCORING_URL"
	EnvRESTTimeout  = "REST_TIMEOUT"
	EnvLogLevel     = "LOG_LEVEL"
)

// Configuration defaults
const (
	DefaultPMMLVersion = "4.2"
	DefaultTargetName  = "class"
	DefaultListenPort  = 8080
	DefaultRESTTimeout = "5s"
	DefaultLogLevel    = "info"
)

// Validation constants
const (
	MinListenPort  = 1024
	MaxListenPort  = 65535
	MaxRequestSize = 32 << 20 // 32 MiB of model dump JSON
)
