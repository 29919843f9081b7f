package freedvtnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseMode(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Mode
	}{
		{"DATAC1", ModeDATAC1},
		{"datac3", ModeDATAC3},
		{"DataC4", ModeDATAC4},
		{" DATAC1 ", ModeDATAC1},
	} {
		var m, err = ParseMode(tc.in)

		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, m, tc.in)
	}
}

func TestParseMode_Invalid(t *testing.T) {
	for _, in := range []string{"", "DATAC2", "DATAC13", "FT8", "datac"} {
		var _, err = ParseMode(in)

		assert.ErrorIs(t, err, ErrInvalidMode, in)
	}
}

func TestModeNames(t *testing.T) {
	assert.Equal(t, "DATAC1, DATAC3, DATAC4", ModeNames())
}

func TestModeYAML(t *testing.T) {
	var out, err = yaml.Marshal(map[string]Mode{"mode": ModeDATAC3})

	require.NoError(t, err)
	assert.Equal(t, "mode: DATAC3\n", string(out))

	var in map[string]Mode

	require.NoError(t, yaml.Unmarshal([]byte("mode: datac4\n"), &in))
	assert.Equal(t, ModeDATAC4, in["mode"])

	assert.Error(t, yaml.Unmarshal([]byte("mode: bogus\n"), &in))
}

func TestChannelStateString(t *testing.T) {
	assert.Equal(t, "CLEAR", ChannelClear.String())
	assert.Equal(t, "BUSY", ChannelBusy.String())
}
