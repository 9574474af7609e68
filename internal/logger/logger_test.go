package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	New(&buf, true).Debug("shown", "platform", "weibo_hot")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "platform=weibo_hot")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	NewJSON(&buf, false).Info("digest written", "type", "noon")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "digest written", line["msg"])
	assert.Equal(t, "noon", line["type"])
	assert.Equal(t, "INFO", line["level"])
}
