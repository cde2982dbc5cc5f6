// Package config handles the monitor configuration record
package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	apperrors "github.com/colortrig/colortrig/internal/errors"
)

// DefaultPath is the config file location relative to the working directory.
const DefaultPath = "config.json"

// CurrentVersion is written into every persisted record.
const CurrentVersion = 1

// Region is the sampled screen rectangle in absolute coordinates.
type Region struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Color is an 8-bit RGB target color.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Config is the single durable configuration record.
type Config struct {
	Version           int     `json:"config_version"`
	Region            Region  `json:"monitor_region"`
	TargetColor       Color   `json:"target_color"`
	ColorTolerance    int     `json:"color_tolerance"`
	ThresholdPercent  float64 `json:"threshold_percentage"`
	PressKey          string  `json:"press_key"`
	PressDelayMs      int     `json:"press_delay_ms"`
	CooldownMs        int     `json:"cooldown_ms"`
	CheckIntervalMs   int     `json:"check_interval_ms"`
	HotkeyStartStop   string  `json:"hotkey_start_stop"`
	HotkeyPauseResume string  `json:"hotkey_pause_resume"`
	HotkeySnapshot    string  `json:"hotkey_screenshot"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Version:           CurrentVersion,
		Region:            Region{Left: 100, Top: 100, Width: 200, Height: 200},
		TargetColor:       Color{R: 255, G: 0, B: 0},
		ColorTolerance:    30,
		ThresholdPercent:  10.0,
		PressKey:          "e",
		PressDelayMs:      0,
		CooldownMs:        100,
		CheckIntervalMs:   10,
		HotkeyStartStop:   "f9",
		HotkeyPauseResume: "f10",
		HotkeySnapshot:    "f8",
	}
}

// fileConfig mirrors Config with optional fields so a load can tell
// "absent" from "zero" and backfill only what is missing.
type fileConfig struct {
	Version           *int        `json:"config_version"`
	Region            *fileRegion `json:"monitor_region"`
	TargetColor       *fileColor  `json:"target_color"`
	ColorTolerance    *int        `json:"color_tolerance"`
	ThresholdPercent  *float64    `json:"threshold_percentage"`
	PressKey          *string     `json:"press_key"`
	PressDelayMs      *int        `json:"press_delay_ms"`
	CooldownMs        *int        `json:"cooldown_ms"`
	CheckIntervalMs   *int        `json:"check_interval_ms"`
	HotkeyStartStop   *string     `json:"hotkey_start_stop"`
	HotkeyPauseResume *string     `json:"hotkey_pause_resume"`
	HotkeySnapshot    *string     `json:"hotkey_screenshot"`
}

type fileRegion struct {
	Left   *int `json:"left"`
	Top    *int `json:"top"`
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

type fileColor struct {
	R *int `json:"r"`
	G *int `json:"g"`
	B *int `json:"b"`
}

// Load reads the record at path, folding defaults into any missing
// field. An absent or corrupt file yields the defaults, which are
// persisted immediately so the next run finds a valid file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Info("config file missing, writing defaults", "path", path)
		cfg := Default()
		if werr := Save(path, cfg); werr != nil {
			return cfg, werr
		}
		return cfg, nil
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		slog.Warn("config file corrupt, writing defaults", "path", path, "error", err)
		cfg := Default()
		if werr := Save(path, cfg); werr != nil {
			return cfg, werr
		}
		return cfg, nil
	}

	return merge(fc), nil
}

// merge folds defaults into every unset field, recursively for the
// nested region and color groups. Present fields are never overwritten.
func merge(fc fileConfig) Config {
	cfg := Default()

	if fc.Version != nil {
		cfg.Version = *fc.Version
	}
	if fc.Region != nil {
		if fc.Region.Left != nil {
			cfg.Region.Left = *fc.Region.Left
		}
		if fc.Region.Top != nil {
			cfg.Region.Top = *fc.Region.Top
		}
		if fc.Region.Width != nil {
			cfg.Region.Width = *fc.Region.Width
		}
		if fc.Region.Height != nil {
			cfg.Region.Height = *fc.Region.Height
		}
	}
	if fc.TargetColor != nil {
		if fc.TargetColor.R != nil {
			cfg.TargetColor.R = *fc.TargetColor.R
		}
		if fc.TargetColor.G != nil {
			cfg.TargetColor.G = *fc.TargetColor.G
		}
		if fc.TargetColor.B != nil {
			cfg.TargetColor.B = *fc.TargetColor.B
		}
	}
	if fc.ColorTolerance != nil {
		cfg.ColorTolerance = *fc.ColorTolerance
	}
	if fc.ThresholdPercent != nil {
		cfg.ThresholdPercent = *fc.ThresholdPercent
	}
	if fc.PressKey != nil {
		cfg.PressKey = *fc.PressKey
	}
	if fc.PressDelayMs != nil {
		cfg.PressDelayMs = *fc.PressDelayMs
	}
	if fc.CooldownMs != nil {
		cfg.CooldownMs = *fc.CooldownMs
	}
	if fc.CheckIntervalMs != nil {
		cfg.CheckIntervalMs = *fc.CheckIntervalMs
	}
	if fc.HotkeyStartStop != nil {
		cfg.HotkeyStartStop = *fc.HotkeyStartStop
	}
	if fc.HotkeyPauseResume != nil {
		cfg.HotkeyPauseResume = *fc.HotkeyPauseResume
	}
	if fc.HotkeySnapshot != nil {
		cfg.HotkeySnapshot = *fc.HotkeySnapshot
	}
	return cfg
}

// Save persists the record as indented JSON.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "encode config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeConfigInvalid, "write config")
	}
	return nil
}

// Validate checks field bounds. It returns the first violation found.
func (c Config) Validate() error {
	if c.Region.Width <= 0 || c.Region.Height <= 0 {
		return apperrors.Newf(apperrors.CodeRegionInvalid, "region %dx%d must have positive dimensions", c.Region.Width, c.Region.Height)
	}
	for _, ch := range []int{c.TargetColor.R, c.TargetColor.G, c.TargetColor.B} {
		if ch < 0 || ch > 255 {
			return apperrors.Newf(apperrors.CodeConfigInvalid, "color channel %d out of range 0-255", ch)
		}
	}
	if c.ColorTolerance < 0 {
		return apperrors.New(apperrors.CodeConfigInvalid, "color tolerance must be >= 0")
	}
	if c.ThresholdPercent < 0 || c.ThresholdPercent > 100 {
		return apperrors.Newf(apperrors.CodeConfigInvalid, "threshold %.1f out of range 0-100", c.ThresholdPercent)
	}
	if c.PressKey == "" {
		return apperrors.New(apperrors.CodeConfigInvalid, "press key must not be empty")
	}
	if c.PressDelayMs < 0 || c.CooldownMs < 0 || c.CheckIntervalMs < 0 {
		return apperrors.New(apperrors.CodeConfigInvalid, "delay, cooldown and interval must be >= 0")
	}
	return nil
}

// CheckInterval returns the target time between iteration starts.
func (c Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMs) * time.Millisecond
}

// Cooldown returns the minimum time between accepted triggers.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMs) * time.Millisecond
}

// PressDelay returns the delay between trigger decision and key action.
func (c Config) PressDelay() time.Duration {
	return time.Duration(c.PressDelayMs) * time.Millisecond
}
