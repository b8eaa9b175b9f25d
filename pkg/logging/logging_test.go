package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.WarnLevel)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), prefix)
}

func TestSharedLogger(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	var buf bytes.Buffer
	SetDefault(New(&buf, log.InfoLevel))
	Debug("quiet", "n", 1)
	Info("loud", "n", 2)
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud n=2")

	require.NoError(t, SetLevel("debug"))
	Debug("quiet", "n", 3)
	assert.Contains(t, buf.String(), "quiet n=3")

	For("engine").Error("boom")
	assert.Contains(t, buf.String(), prefix+"/engine")

	assert.Error(t, SetLevel("chatty"))
}

func TestKeyValuesAreRendered(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	var buf bytes.Buffer
	SetDefault(New(&buf, log.InfoLevel))
	Error("brushwork failed", "err", errors.New("script.bw: line 3: boom"))
	Warn("slow", "ms", 250)

	out := buf.String()
	assert.Contains(t, out, `brushwork failed err="script.bw: line 3: boom"`)
	assert.Contains(t, out, "slow ms=250")
	assert.NotContains(t, out, "%!")
}
