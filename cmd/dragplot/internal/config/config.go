// Package config loads the dragplot.yaml project file consumed by the
// serve, tui and render commands.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/recera/dragplot/pkg/chart"
	"github.com/recera/dragplot/pkg/dragplot"
)

// DefaultFile is the config filename looked up in the working
// directory when --config is not given.
const DefaultFile = "dragplot.yaml"

// Config is the dragplot.yaml document.
type Config struct {
	Chart  ChartConfig    `yaml:"chart,omitempty"`
	Series []SeriesConfig `yaml:"series,omitempty"`
	Drag   DragConfig     `yaml:"drag,omitempty"`
	Serve  ServeConfig    `yaml:"serve,omitempty"`
	Log    LogConfig      `yaml:"log,omitempty"`
}

// ChartConfig sizes the chart and optionally pins the axis domains.
type ChartConfig struct {
	Width   float64      `yaml:"width,omitempty"`
	Height  float64      `yaml:"height,omitempty"`
	Padding float64      `yaml:"padding,omitempty"`
	Ticks   int          `yaml:"ticks,omitempty"`
	XRange  *RangeConfig `yaml:"x_range,omitempty"`
	YRange  *RangeConfig `yaml:"y_range,omitempty"`
}

// RangeConfig fixes one axis domain.
type RangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// SeriesConfig is one line of data points.
type SeriesConfig struct {
	Name   string        `yaml:"name,omitempty"`
	Color  string        `yaml:"color,omitempty"`
	Points []PointConfig `yaml:"points"`
}

// PointConfig is one data value.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// DragConfig selects the drag axis and live-preview policy.
type DragConfig struct {
	// Axis: "both" (default), "x" or "y".
	Axis string `yaml:"axis,omitempty"`
	// LivePreview: "mouse" (default), "off" or "all".
	LivePreview string `yaml:"live_preview,omitempty"`
}

// ServeConfig configures the live server.
type ServeConfig struct {
	Addr           string   `yaml:"addr,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
	// Watch reloads connected pages when the config file changes.
	Watch bool `yaml:"watch,omitempty"`
}

// LogConfig selects the log level: "debug", "info", "warn" or "error".
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Default returns the configuration used when no file exists: a demo
// series so every command works out of the box.
func Default() *Config {
	return &Config{
		Chart: ChartConfig{
			XRange: &RangeConfig{Min: 0, Max: 10},
			YRange: &RangeConfig{Min: 0, Max: 10},
		},
		Series: []SeriesConfig{{
			Name:  "demo",
			Color: "#4a7de2",
			Points: []PointConfig{
				{X: 0, Y: 2}, {X: 2, Y: 5}, {X: 4, Y: 3},
				{X: 6, Y: 7}, {X: 8, Y: 6}, {X: 10, Y: 9},
			},
		}},
		Serve: ServeConfig{Addr: ":5173", Watch: true},
	}
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.DragOptions(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	for i, s := range c.Series {
		if len(s.Points) == 0 {
			return fmt.Errorf("series %d (%q) has no points", i, s.Name)
		}
	}
	return nil
}

// ChartOptions maps the chart section onto chart.Options.
func (c *Config) ChartOptions() *chart.Options {
	opts := &chart.Options{
		Width:   c.Chart.Width,
		Height:  c.Chart.Height,
		Padding: c.Chart.Padding,
		Ticks:   c.Chart.Ticks,
	}
	if r := c.Chart.XRange; r != nil {
		opts.XRange = &chart.Range{Min: r.Min, Max: r.Max}
	}
	if r := c.Chart.YRange; r != nil {
		opts.YRange = &chart.Range{Min: r.Min, Max: r.Max}
	}
	return opts
}

// SeriesData converts the series section into chart data.
func (c *Config) SeriesData() []chart.Series {
	out := make([]chart.Series, len(c.Series))
	for i, s := range c.Series {
		points := make([]chart.Point, len(s.Points))
		for j, p := range s.Points {
			points[j] = chart.Point{X: p.X, Y: p.Y}
		}
		out[i] = chart.Series{Name: s.Name, Color: s.Color, Points: points}
	}
	return out
}

// DragOptions maps the drag section onto dragplot.Options.
func (c *Config) DragOptions() (*dragplot.Options, error) {
	opts := &dragplot.Options{}

	switch c.Drag.Axis {
	case "", "both":
		opts.Axis = dragplot.AxisBoth
	case "x":
		opts.Axis = dragplot.AxisX
	case "y":
		opts.Axis = dragplot.AxisY
	default:
		return nil, fmt.Errorf("unknown drag axis %q", c.Drag.Axis)
	}

	switch c.Drag.LivePreview {
	case "", "mouse":
		opts.LivePreview = dragplot.PreviewMouseOnly
	case "off":
		opts.LivePreview = dragplot.PreviewOff
	case "all":
		opts.LivePreview = dragplot.PreviewAll
	default:
		return nil, fmt.Errorf("unknown live_preview %q", c.Drag.LivePreview)
	}
	return opts, nil
}

// LogLevel parses the log section into a slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch c.Log.Level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
}
