package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/lookbusy1344/w12-assembler/parser"
)

// Config represents the assembler configuration
type Config struct {
	// Assembler settings. The machine geometry fields are read-only
	// informational values surfaced by the inspector; editing them does
	// not change the machine the assembler targets.
	Assembler struct {
		MemorySize     int `toml:"memory_size"`
		FirstCell      int `toml:"first_cell"`
		MaxLineLength  int `toml:"max_line_length"`
		MaxLabelLength int `toml:"max_label_length"`
		// OutputDir receives the generated files; empty means next to
		// the source file.
		OutputDir string `toml:"output_dir"`
		// KeepIntermediate controls whether the .am expansion is kept
		// for files that assembled cleanly.
		KeepIntermediate bool `toml:"keep_intermediate"`
	} `toml:"assembler"`

	// Display settings
	Display struct {
		ColorOutput bool `toml:"color_output"`
		Verbose     bool `toml:"verbose"`
	} `toml:"display"`

	// Inspector (TUI) settings
	Inspector struct {
		WordsPerPage int    `toml:"words_per_page"`
		NumberFormat string `toml:"number_format"` // octal, dec, both
	} `toml:"inspector"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assembler.MemorySize = parser.MemorySize
	cfg.Assembler.FirstCell = parser.FirstCell
	cfg.Assembler.MaxLineLength = parser.MaxLineLength
	cfg.Assembler.MaxLabelLength = parser.MaxLabelLength
	cfg.Assembler.OutputDir = ""
	cfg.Assembler.KeepIntermediate = true

	cfg.Display.ColorOutput = true
	cfg.Display.Verbose = false

	cfg.Inspector.WordsPerPage = 32
	cfg.Inspector.NumberFormat = "octal"

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\w12asm\config.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "w12asm")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/w12asm/config.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "w12asm")

	default:
		// Unknown platform: use current directory
		return "config.toml"
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0750); err != nil {
		// If we can't create the directory, fall back to current directory
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read and parse config file
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file
	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	// Encode to TOML
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
