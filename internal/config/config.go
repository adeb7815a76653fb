// Package config loads the read-only startup settings: whether sound is on,
// the cosmetic overlays and the audio format.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Settings is passed by value into the startup routine and never mutated.
type Settings struct {
	SoundEnabled    bool   `mapstructure:"sound_enabled"`
	VignetteEnabled bool   `mapstructure:"vignette_enabled"`
	BorderEnabled   bool   `mapstructure:"border_enabled"`
	BorderColor     string `mapstructure:"border_color"`
	BackgroundColor string `mapstructure:"background_color"`
	SampleRate      int    `mapstructure:"sample_rate"`
	RecordingsDir   string `mapstructure:"recordings_dir"`
}

func Default() Settings {
	return Settings{
		SoundEnabled:    true,
		VignetteEnabled: true,
		BorderEnabled:   true,
		BorderColor:     "#ffffff",
		BackgroundColor: "#1e1e2a",
		SampleRate:      48000,
		RecordingsDir:   ".",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("sound_enabled", d.SoundEnabled)
	v.SetDefault("vignette_enabled", d.VignetteEnabled)
	v.SetDefault("border_enabled", d.BorderEnabled)
	v.SetDefault("border_color", d.BorderColor)
	v.SetDefault("background_color", d.BackgroundColor)
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("recordings_dir", d.RecordingsDir)
}

// Load reads settings from path, or from .micfx.yaml in the home directory
// when path is empty. A missing file is not an error. MICFX_* environment
// variables override file values.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("micfx")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".micfx")
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && errors.Is(err, os.ErrNotExist)) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the sample rate and both colors.
func (s Settings) Validate() error {
	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		return fmt.Errorf("sample_rate %d out of range (8000..192000)", s.SampleRate)
	}
	if _, err := ParseColor(s.BorderColor); err != nil {
		return fmt.Errorf("border_color: %w", err)
	}
	if _, err := ParseColor(s.BackgroundColor); err != nil {
		return fmt.Errorf("background_color: %w", err)
	}
	return nil
}

// ParseColor accepts hex colors as rgb, rrggbb or aarrggbb, with or without
// a leading '#'. Eight digits put alpha first, as Godot 3 color strings do,
// so #80ff0000 is half-transparent red.
func ParseColor(code string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(code), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h = "ff" + h
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", code)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", code)
	}
	return color.RGBA{A: uint8(n >> 24), R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// MustColor is ParseColor for values already checked by Validate.
func MustColor(code string) color.RGBA {
	c, err := ParseColor(code)
	if err != nil {
		panic(err)
	}
	return c
}
