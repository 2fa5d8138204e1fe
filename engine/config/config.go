// Package config loads and validates the TOML file describing the window,
// the scene to render and the renderer feature toggles.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/subpasses/engine/core"
)

type Window struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type Features struct {
	UseSubpasses    bool `toml:"use_subpasses"`
	UseTransient    bool `toml:"use_transient"`
	UseSmallGBuffer bool `toml:"use_small_gbuffer"`
}

type UI struct {
	// ReadOnlyToggles renders the feature checkboxes disabled.
	ReadOnlyToggles bool `toml:"read_only_toggles"`
}

type AppConfig struct {
	SceneFile string   `toml:"scene_file"`
	Window    Window   `toml:"window"`
	Features  Features `toml:"features"`
	UI        UI       `toml:"ui"`
}

// Default returns the values used for keys missing from the file.
func Default() AppConfig {
	return AppConfig{
		Features: Features{
			UseSubpasses:    true,
			UseTransient:    true,
			UseSmallGBuffer: true,
		},
	}
}

// Load reads and decodes the file at path. Unknown keys are rejected.
// The result is not validated, see Validate.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", path, err)
	}
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return nil, fmt.Errorf("failed to load config file %q: %w\n%s", path, err, serr.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("failed to load config file %q: line %d column %d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("failed to load config file %q: %w", path, err)
	}
	return &cfg, nil
}

// Validate reports every semantic problem of cfg at once.
func Validate(cfg *AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", core.ErrInvalidConfig)
	}
	var errs []error
	if cfg.Window.Width <= 0 {
		errs = append(errs, fmt.Errorf("window width must be positive, got %d", cfg.Window.Width))
	}
	if cfg.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window height must be positive, got %d", cfg.Window.Height))
	}
	if cfg.SceneFile == "" {
		errs = append(errs, errors.New("scene_file is required"))
	} else if info, err := os.Stat(cfg.SceneFile); err != nil {
		errs = append(errs, fmt.Errorf("scene file %q: %w", cfg.SceneFile, err))
	} else if info.IsDir() {
		errs = append(errs, fmt.Errorf("scene file %q is a directory", cfg.SceneFile))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", core.ErrInvalidConfig, errors.Join(errs...))
}

// LoadAndValidate is Load followed by Validate.
func LoadAndValidate(path string) (*AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", path, err)
	}
	return cfg, nil
}
