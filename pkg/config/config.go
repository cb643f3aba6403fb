package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Env           string
	AWS           AWSConfig
	Bedrock       BedrockConfig
	Transcription TranscriptionConfig
	Artefacts     ArtefactConfig
	Redis         RedisConfig
	OTEL          OTELConfig
}

// AWSConfig holds shared AWS client configuration
type AWSConfig struct {
	Region string
}

// BedrockConfig holds text generation configuration. Model identifiers and
// temperatures are explicit fields so tests and deployments can override them
// without touching process environment.
type BedrockConfig struct {
	// NoteModelID generates the structured note (conservative default).
	NoteModelID string
	// DecisionModelID generates decision support prompts (faster/cheaper default).
	DecisionModelID string
	// PatientModelID generates patient-facing documents.
	PatientModelID string

	NoteTemperature     float64
	DecisionTemperature float64
	PatientTemperature  float64

	NoteMaxTokens     int
	DecisionMaxTokens int
	PatientMaxTokens  int

	RateLimitRPM   int
	RateLimitBurst int
}

// TranscriptionConfig holds audio transcription configuration
type TranscriptionConfig struct {
	S3Bucket      string
	JobNamePrefix string
	Specialty     string
	Type          string
	MaxSpeakers   int
}

// ArtefactConfig holds artefact store configuration
type ArtefactConfig struct {
	OutputDir string
}

// RedisConfig holds Redis configuration for the optional run-event bus
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Env: getEnv("APP_ENV", "development"),
		AWS: AWSConfig{
			Region: getEnv("AWS_REGION", "ap-southeast-2"),
		},
		Bedrock: BedrockConfig{
			NoteModelID:         resolveModelID(getEnv("BEDROCK_NOTE_MODEL_ID", "claude")),
			DecisionModelID:     resolveModelID(getEnv("BEDROCK_DECISION_MODEL_ID", "nova")),
			PatientModelID:      resolveModelID(getEnv("BEDROCK_PATIENT_MODEL_ID", "nova")),
			NoteTemperature:     getEnvAsFloat("BEDROCK_NOTE_TEMPERATURE", 0.2),
			DecisionTemperature: getEnvAsFloat("BEDROCK_DECISION_TEMPERATURE", 0.3),
			PatientTemperature:  getEnvAsFloat("BEDROCK_PATIENT_TEMPERATURE", 0.2),
			NoteMaxTokens:       getEnvAsInt("BEDROCK_NOTE_MAX_TOKENS", 800),
			DecisionMaxTokens:   getEnvAsInt("BEDROCK_DECISION_MAX_TOKENS", 500),
			PatientMaxTokens:    getEnvAsInt("BEDROCK_PATIENT_MAX_TOKENS", 1000),
			RateLimitRPM:        getEnvAsInt("BEDROCK_RATE_LIMIT_RPM", 60),
			RateLimitBurst:      getEnvAsInt("BEDROCK_RATE_LIMIT_BURST", 5),
		},
		Transcription: TranscriptionConfig{
			S3Bucket:      getEnv("TRANSCRIBE_S3_BUCKET", ""),
			JobNamePrefix: getEnv("TRANSCRIBE_JOB_PREFIX", "medscribe"),
			Specialty:     getEnv("TRANSCRIBE_SPECIALTY", "PRIMARYCARE"),
			Type:          getEnv("TRANSCRIBE_TYPE", "CONVERSATION"),
			MaxSpeakers:   getEnvAsInt("TRANSCRIBE_MAX_SPEAKERS", 2),
		},
		Artefacts: ArtefactConfig{
			OutputDir: getEnv("ARTEFACT_OUTPUT_DIR", "data/outputs"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "medscribe"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// modelAliases maps short model names to full Bedrock model identifiers.
// Config values may use either form.
var modelAliases = map[string]string{
	"claude": "anthropic.claude-3-sonnet-20240229-v1:0",
	"nova":   "apac.amazon.nova-lite-v1:0",
}

func resolveModelID(value string) string {
	if full, ok := modelAliases[value]; ok {
		return full
	}
	return value
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
