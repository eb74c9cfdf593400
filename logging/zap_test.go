package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewWrapsZapLogger(t *testing.T) {
	l := zaptest.NewLogger(t)
	s := New(l)
	assert.NotPanics(t, func() {
		s.Debugf("debug %d", 1)
		s.Infof("info %d", 1)
		s.Warnf("warn %d", 1)
		s.Errorf("error %d", 1)
	})
}

func TestNewDevelopmentBuildsUsableSink(t *testing.T) {
	s, err := NewDevelopment()
	require.NoError(t, err)
	assert.NotPanics(t, func() { s.Infof("hello") })
}

func TestNewProductionBuildsUsableSink(t *testing.T) {
	s, err := NewProduction()
	require.NoError(t, err)
	assert.NotPanics(t, func() { s.Infof("hello") })
}
