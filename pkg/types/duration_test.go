package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "seconds", input: `"30s"`, expected: 30 * time.Second},
		{name: "minutes", input: `"15m"`, expected: 15 * time.Minute},
		{name: "compound", input: `"1h30m"`, expected: 90 * time.Minute},
		{name: "days", input: `"2d"`, expected: 48 * time.Hour},
		{name: "fractional days", input: `"1.5d"`, expected: 36 * time.Hour},
		{name: "weeks", input: `"1w"`, expected: 7 * 24 * time.Hour},
		{name: "negative days", input: `"-1d"`, expected: -24 * time.Hour},
		{name: "empty means unset", input: `""`, expected: 0},
		{name: "garbage", input: `"soon"`, wantErr: true},
		{name: "unknown suffix", input: `"3y"`, wantErr: true},
		{name: "not a string", input: `[1, 2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg struct {
				Timeout Duration `yaml:"timeout"`
			}
			err := yaml.Unmarshal([]byte("timeout: "+tt.input), &cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Timeout.ToDuration())
		})
	}
}

func TestDuration_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Timeout Duration `yaml:"timeout"`
	}{Timeout: Duration(90 * time.Second)})
	require.NoError(t, err)
	assert.Equal(t, "timeout: 1m30s\n", string(out))
}
