package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_JSONInDocker(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Config{ServiceName: "paymanager", Env: "docker", Output: &buf})
	require.NoError(t, err)

	logger.Info("hello")
	Sync(logger)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["msg"])
	require.Equal(t, "paymanager", entry["service"])
	require.Equal(t, "docker", entry["env"])
	require.Equal(t, "info", entry["level"])
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Config{ServiceName: "paymanager", Env: "docker", Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("skipped")
	require.Zero(t, buf.Len())
}

func TestNew_InvalidSettings(t *testing.T) {
	_, err := New(Config{Level: "verbose"})
	require.Error(t, err)

	_, err = New(Config{Format: "xml"})
	require.Error(t, err)
}
