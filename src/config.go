package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:	Read and write the TNC configuration file.
 *
 * Description:	The file is YAML.  Anything not in the file keeps its
 *		default, and command line options can override it again.
 *
 *		SAVE from the command channel writes the current mode,
 *		volume and follow setting back into the file, keeping
 *		everything else as it was loaded.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultConfigFileName = ".freedvtnc.yaml"

// configFileMode is used when SAVE creates the file for the first time.
const configFileMode fs.FileMode = 0o644

// Config is everything the TNC can be configured with.
type Config struct {
	Mode         Mode      `yaml:"mode"`
	OutputVolume int       `yaml:"output_volume"`
	Follow       bool      `yaml:"follow"`
	Address      string    `yaml:"address"`
	CommandPort  int       `yaml:"command_port"`
	LogLevel     string    `yaml:"log_level"`
	DNSSD        bool      `yaml:"dns_sd"`
	DNSSDName    string    `yaml:"dns_sd_name,omitempty"`
	Audio        Audio     `yaml:"audio"`
	PTT          PTTConfig `yaml:"ptt"`
}

// Audio selects the sound devices.  Empty device names mean the system default.
type Audio struct {
	InputDevice   string  `yaml:"input_device,omitempty"`
	OutputDevice  string  `yaml:"output_device,omitempty"`
	SampleRate    int     `yaml:"sample_rate"`
	BusyThreshold float64 `yaml:"busy_threshold_db"`
}

func DefaultConfig() Config {
	return Config{ //nolint:exhaustruct
		Mode:        ModeDATAC1,
		Address:     "0.0.0.0",
		CommandPort: DefaultCommandPort,
		LogLevel:    "info",
		Audio: Audio{ //nolint:exhaustruct
			SampleRate:    8000,
			BusyThreshold: DefaultBusyThresholdDB,
		},
		PTT: PTTConfig{Method: PTTMethodNone}, //nolint:exhaustruct
	}
}

// DefaultConfigPath is ~/.freedvtnc.yaml, or just the file name if there is no home directory.
func DefaultConfigPath() string {
	var home, err = os.UserHomeDir()
	if err != nil {
		return DefaultConfigFileName
	}

	return filepath.Join(home, DefaultConfigFileName)
}

// LoadConfig reads path over the defaults.  A missing file is not an error;
// the defaults are returned.
func LoadConfig(path string) (Config, error) {
	var cfg = DefaultConfig()

	var data, err = os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// WriteConfig replaces path with cfg.  It writes a temporary file in the
// same directory then renames it, so a failure never leaves half a file.
func WriteConfig(path string, cfg Config) error {
	var data, err = yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	var tmp *os.File

	tmp, err = os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("write config: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	// CreateTemp makes the file 0600; keep whatever the file being replaced had.
	var mode fs.FileMode = configFileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// ConfigStore is the ConfigSaver used by SAVE.
type ConfigStore struct {
	mu   sync.Mutex
	path string
	base Config
}

// NewConfigStore remembers base, the configuration as loaded, so that
// saving only changes the live settings.
func NewConfigStore(path string, base Config) *ConfigStore {
	return &ConfigStore{path: path, base: base} //nolint:exhaustruct
}

// Path is the file SAVE writes to, made absolute where possible.
func (c *ConfigStore) Path() string {
	var abs, err = filepath.Abs(c.path)
	if err != nil {
		return c.path
	}

	return abs
}

func (c *ConfigStore) Save(s Settings) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var cfg = c.base
	cfg.Mode = s.Mode
	cfg.OutputVolume = s.VolumeDB
	cfg.Follow = s.Follow

	var path = c.Path()
	if err := WriteConfig(path, cfg); err != nil {
		return "", err
	}

	c.base = cfg

	return path, nil
}
