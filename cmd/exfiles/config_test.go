package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigValue(t *testing.T) {
	v, err := parseConfigValue("snapshot.path", "/data/exfiles.duckdb")
	require.NoError(t, err)
	assert.Equal(t, "/data/exfiles.duckdb", v)

	v, err = parseConfigValue("report.log_transform", "false")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = parseConfigValue("report.workers", "4")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestParseConfigValue_Rejects(t *testing.T) {
	_, err := parseConfigValue("snapshot.paht", "/data/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")

	_, err = parseConfigValue("report.workers", "many")
	require.Error(t, err)

	_, err = parseConfigValue("report.log_transform", "maybe")
	require.Error(t, err)
}
