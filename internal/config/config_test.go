package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnlang/gnls/internal/config"
)

func TestDefault_EverythingEnabled(t *testing.T) {
	c := config.Default()
	assert.True(t, c.BackgroundIndexing)
	assert.True(t, c.ErrorReporting)
	assert.True(t, c.TargetLens)
	assert.True(t, c.ParallelIndexing)
	assert.True(t, c.WorkspaceCompletion)
	assert.Empty(t, c.BinaryPath)
}

func TestApplyJSON_OnlyTouchesPresentKeys(t *testing.T) {
	c := config.Default()
	config.ApplyJSON(c, map[string]any{"backgroundIndexing": false})

	assert.False(t, c.BackgroundIndexing)
	assert.True(t, c.ErrorReporting, "omitted key must not be reset")
	assert.True(t, c.TargetLens)
}

func TestApplyJSON_SetsBinaryPath(t *testing.T) {
	c := config.Default()
	config.ApplyJSON(c, map[string]any{"binaryPath": "/usr/local/bin/gn"})
	assert.Equal(t, "/usr/local/bin/gn", c.BinaryPath)
}

func TestApplyJSON_IgnoresWrongTypedValue(t *testing.T) {
	c := config.Default()
	config.ApplyJSON(c, map[string]any{"backgroundIndexing": "not-a-bool"})
	assert.True(t, c.BackgroundIndexing, "wrong-typed value must not overwrite the current setting")
}

func TestApplyJSON_SetsExperimentalMap(t *testing.T) {
	c := config.Default()
	config.ApplyJSON(c, map[string]any{"experimental": map[string]any{"foo": true}})
	assert.Equal(t, map[string]any{"foo": true}, c.Experimental)
}

func TestOptions_ConfigureIndependently(t *testing.T) {
	c := &config.Config{}
	for _, opt := range []config.Option{
		config.WithBackgroundIndexing(true),
		config.WithTargetLens(false),
		config.WithBinaryPath("/bin/gn"),
	} {
		opt(c)
	}
	assert.True(t, c.BackgroundIndexing)
	assert.False(t, c.TargetLens)
	assert.Equal(t, "/bin/gn", c.BinaryPath)
}
