package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreUnsetKeyReportsNotOk(t *testing.T) {
	s := New()
	_, ok := s.Bool("nope")
	assert.False(t, ok)
	_, ok = s.Int("nope")
	assert.False(t, ok)
	_, ok = s.String("nope")
	assert.False(t, ok)
}

func TestStoreBindFlagsExposesValues(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("defSecurityName", "alice", "")
	fs.Int("defRetries", 3, "")
	fs.Bool("16bitIDs", true, "")
	require.NoError(t, fs.Parse(nil))

	s := New()
	require.NoError(t, s.BindFlags(fs))

	name, ok := s.String("defSecurityName")
	require.True(t, ok)
	assert.Equal(t, "alice", name)

	retries, ok := s.Int("defRetries")
	require.True(t, ok)
	assert.Equal(t, 3, retries)

	sixteen, ok := s.Bool("16bitIDs")
	require.True(t, ok)
	assert.True(t, sixteen)
}

func TestStoreSetConfigFileRejectsMissingFile(t *testing.T) {
	s := New()
	err := s.SetConfigFile("/nonexistent/path/to/snmp.conf")
	assert.Error(t, err)
}
