package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chazu/brushwork/pkg/brush"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, brush.FormatStandard, c.Format())
	assert.Equal(t, 5*time.Second, c.Timeout())
	assert.Equal(t, log.InfoLevel, c.Level())
	assert.Equal(t, v3.Vec{X: 4096, Y: 4096, Z: 4096}, c.WorldBounds().Max)
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
map_format = "valve"
eval_timeout = "250ms"

[world]
min = [-512, -512, -64]
max = [512, 512, 256]

[defaults]
material = "base/concrete"
scale = [0.5, 2]
rotation = 90
`))
	require.NoError(t, err)
	assert.Equal(t, brush.FormatValve, c.Format())
	assert.Equal(t, 250*time.Millisecond, c.Timeout())
	assert.Equal(t, "info", c.LogLevel, "unset keys keep their default")
	assert.Equal(t, 64, c.PreviewCells)
	assert.Equal(t, v3.Vec{X: -512, Y: -512, Z: -64}, c.WorldBounds().Min)

	a := c.Attributes()
	assert.Equal(t, "base/concrete", a.Material)
	assert.InDelta(t, 0.5, a.Scale.X, 0)
	assert.InDelta(t, 2, a.Scale.Y, 0)
	assert.InDelta(t, 90, a.Rotation, 0)

	b := c.Builder()
	assert.Equal(t, brush.FormatValve, b.Format())
	assert.Equal(t, c.WorldBounds(), b.WorldBounds())
	assert.Equal(t, "rock", b.Attributes("rock").Material)
	assert.InDelta(t, 0.5, b.Attributes("rock").Scale.X, 0)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"unknown key", `colour = "red"`, "unknown keys"},
		{"syntax", `map_format = `, "line 1"},
		{"wrong type", `preview_cells = "many"`, ""},
		{"format", `map_format = "doom3"`, "doom3"},
		{"level", `log_level = "loud"`, "log_level"},
		{"timeout", `eval_timeout = "soon"`, "eval_timeout"},
		{"negative timeout", `eval_timeout = "-1s"`, "not positive"},
		{"preview", `preview_cells = 2`, "preview_cells"},
		{"world", "[world]\nmin = [0, 0, 0]\nmax = [0, 10, 10]", "inverted on axis 0"},
		{"scale", "[defaults]\nscale = [1, 0]", "zero component"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := Default()
	c.MapFormat = "doom3"
	c.PreviewCells = 0
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doom3")
	assert.Contains(t, err.Error(), "preview_cells")

	// Accessors fall back instead of failing.
	assert.Equal(t, brush.FormatStandard, c.Format())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brushwork.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"debug\"\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, c.Level())

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()
	c.MapFormat = brush.FormatQuake3.String()
	c.Defaults.Material = "wall"
	data, err := c.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
