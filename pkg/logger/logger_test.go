package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewWithOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithOutput("debug", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("entity_id", "d1").Info("hello")
	assert.Contains(t, buf.String(), `"entity_id":"d1"`)
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, New("loud").GetLevel())
}
