package freedvtnc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Missing(t *testing.T) {
	var cfg, err = LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Partial(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "tnc.yaml")

	require.NoError(t, os.WriteFile(path, []byte(`
mode: datac3
output_volume: -6
ptt:
  method: gpio
  chip: gpiochip1
  line: 17
`), 0o600))

	var cfg, err = LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, ModeDATAC3, cfg.Mode)
	assert.Equal(t, -6, cfg.OutputVolume)
	assert.Equal(t, DefaultCommandPort, cfg.CommandPort, "unset keys keep their defaults")
	assert.Equal(t, 8000, cfg.Audio.SampleRate)
	assert.Equal(t, PTTConfig{Method: "gpio", Chip: "gpiochip1", Line: 17}, cfg.PTT) //nolint:exhaustruct
}

func TestLoadConfig_BadMode(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "tnc.yaml")

	require.NoError(t, os.WriteFile(path, []byte("mode: DATAC99\n"), 0o600))

	var _, err = LoadConfig(path)

	assert.Error(t, err)
}

func TestConfigStore_Save(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "tnc.yaml")

	var base = DefaultConfig()
	base.CommandPort = 9002
	base.PTT = PTTConfig{Method: "serial", Device: "/dev/ttyUSB0", Signal: "RTS"} //nolint:exhaustruct

	var store = NewConfigStore(path, base)

	var saved, err = store.Save(Settings{Mode: ModeDATAC4, VolumeDB: -3, Follow: true})

	require.NoError(t, err)
	assert.Equal(t, path, saved)

	var cfg Config

	cfg, err = LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ModeDATAC4, cfg.Mode)
	assert.Equal(t, -3, cfg.OutputVolume)
	assert.True(t, cfg.Follow)
	assert.Equal(t, 9002, cfg.CommandPort, "settings other than the live ones are kept")
	assert.Equal(t, base.PTT, cfg.PTT)

	var leftovers, _ = filepath.Glob(path + ".*.tmp")
	assert.Empty(t, leftovers)
}

func TestConfigStore_SaveUnwritable(t *testing.T) {
	var store = NewConfigStore(filepath.Join(t.TempDir(), "missing-dir", "tnc.yaml"), DefaultConfig())

	var _, err = store.Save(Settings{}) //nolint:exhaustruct

	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var _, err = NewLogger(os.Stderr, "debug")
	assert.NoError(t, err)

	_, err = NewLogger(os.Stderr, "")
	assert.NoError(t, err)

	_, err = NewLogger(os.Stderr, "chatty")
	assert.Error(t, err)
}

func TestConfigStore_SaveKeepsPermissions(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "tnc.yaml")

	require.NoError(t, os.WriteFile(path, []byte("mode: DATAC1\n"), 0o600))
	require.NoError(t, os.Chmod(path, 0o640))

	var _, err = NewConfigStore(path, DefaultConfig()).Save(Settings{Mode: ModeDATAC3}) //nolint:exhaustruct
	require.NoError(t, err)

	var info, statErr = os.Stat(path)
	require.NoError(t, statErr)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestConfigStore_SaveNewFileMode(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "tnc.yaml")

	var _, err = NewConfigStore(path, DefaultConfig()).Save(Settings{Mode: ModeDATAC3}) //nolint:exhaustruct
	require.NoError(t, err)

	var info, statErr = os.Stat(path)
	require.NoError(t, statErr)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
