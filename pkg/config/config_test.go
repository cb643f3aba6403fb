package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ap-southeast-2", cfg.AWS.Region)
	assert.Equal(t, "anthropic.claude-3-sonnet-20240229-v1:0", cfg.Bedrock.NoteModelID)
	assert.Equal(t, 0.2, cfg.Bedrock.NoteTemperature)
	assert.Equal(t, 0.3, cfg.Bedrock.DecisionTemperature)
	assert.Equal(t, 800, cfg.Bedrock.NoteMaxTokens)
	assert.Equal(t, 500, cfg.Bedrock.DecisionMaxTokens)
	assert.Equal(t, 1000, cfg.Bedrock.PatientMaxTokens)
	assert.Equal(t, "PRIMARYCARE", cfg.Transcription.Specialty)
	assert.Equal(t, "CONVERSATION", cfg.Transcription.Type)
	assert.Equal(t, 2, cfg.Transcription.MaxSpeakers)
	assert.Equal(t, "data/outputs", cfg.Artefacts.OutputDir)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.OTEL.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("BEDROCK_DECISION_TEMPERATURE", "0.5")
	t.Setenv("ARTEFACT_OUTPUT_DIR", "/tmp/artefacts")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, 0.5, cfg.Bedrock.DecisionTemperature)
	assert.Equal(t, "/tmp/artefacts", cfg.Artefacts.OutputDir)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_ModelAliases(t *testing.T) {
	t.Setenv("BEDROCK_NOTE_MODEL_ID", "nova")
	t.Setenv("BEDROCK_DECISION_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "apac.amazon.nova-lite-v1:0", cfg.Bedrock.NoteModelID)
	// Full identifiers pass through untouched.
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", cfg.Bedrock.DecisionModelID)
}

func TestLoad_BadNumericFallsBackToDefault(t *testing.T) {
	t.Setenv("BEDROCK_NOTE_MAX_TOKENS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Bedrock.NoteMaxTokens)
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.internal", Port: 6380}
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr())
}
