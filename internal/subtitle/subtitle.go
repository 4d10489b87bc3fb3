// Package subtitle renders timed caption entries into a fully styled ASS
// document, one independent style and one event per entry.
package subtitle

import (
	"fmt"
	"regexp"
	"strings"
)

// Position anchors a caption vertically on the canvas.
type Position string

const (
	PositionTop    Position = "top"
	PositionMiddle Position = "middle"
	PositionBottom Position = "bottom"
	PositionCustom Position = "custom"
)

// Alignment anchors a caption horizontally.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Entry is one caption line with its own timing and styling. Entries are
// constructed once, validated, and never mutated afterwards.
type Entry struct {
	Text       string    `yaml:"text"`
	Start      float64   `yaml:"start"`
	End        float64   `yaml:"end"`
	Position   Position  `yaml:"position"`
	CustomX    *int      `yaml:"custom_x"`
	CustomY    *int      `yaml:"custom_y"`
	FontSize   int       `yaml:"font_size"`
	FontColor  string    `yaml:"font_color"`
	FontFamily string    `yaml:"font_family"`
	Alignment  Alignment `yaml:"alignment"`

	BackgroundColor   string   `yaml:"background_color"`
	BackgroundOpacity *float64 `yaml:"background_opacity"`
	BorderColor       string   `yaml:"border_color"`
	BorderWidth       *int     `yaml:"border_width"`
}

var hexColorPattern = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// ApplyDefaults fills unset font fields from configuration before
// validation.
func (e *Entry) ApplyDefaults(fontFamily string, fontSize int, fontColor string) {
	if e.FontFamily == "" {
		e.FontFamily = fontFamily
	}
	if e.FontSize == 0 {
		e.FontSize = fontSize
	}
	if e.FontColor == "" {
		e.FontColor = fontColor
	}
	if e.Position == "" {
		e.Position = PositionBottom
	}
	if e.Alignment == "" {
		e.Alignment = AlignCenter
	}
}

// Validate checks every field constraint. It never spawns a process, so a
// malformed entry is rejected before ffmpeg is involved.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Text) == "" {
		return fmt.Errorf("caption text must not be empty")
	}
	if e.Start < 0 {
		return fmt.Errorf("caption start time must not be negative: %f", e.Start)
	}
	if e.End <= e.Start {
		return fmt.Errorf("caption end time %f must be after start time %f", e.End, e.Start)
	}
	switch e.Position {
	case PositionTop, PositionMiddle, PositionBottom:
	case PositionCustom:
		if e.CustomX == nil || e.CustomY == nil {
			return fmt.Errorf("custom position requires both custom_x and custom_y")
		}
	default:
		return fmt.Errorf("unknown caption position: %q", e.Position)
	}
	switch e.Alignment {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return fmt.Errorf("unknown caption alignment: %q", e.Alignment)
	}
	if e.FontSize <= 0 {
		return fmt.Errorf("caption font size must be positive: %d", e.FontSize)
	}
	if !hexColorPattern.MatchString(e.FontColor) {
		return fmt.Errorf("malformed font color: %q", e.FontColor)
	}
	if e.BackgroundColor != "" && !hexColorPattern.MatchString(e.BackgroundColor) {
		return fmt.Errorf("malformed background color: %q", e.BackgroundColor)
	}
	if e.BackgroundOpacity != nil && (*e.BackgroundOpacity < 0 || *e.BackgroundOpacity > 100) {
		return fmt.Errorf("background opacity must be within [0,100]: %f", *e.BackgroundOpacity)
	}
	if e.BorderColor != "" && !hexColorPattern.MatchString(e.BorderColor) {
		return fmt.Errorf("malformed border color: %q", e.BorderColor)
	}
	if e.BorderWidth != nil && *e.BorderWidth < 0 {
		return fmt.Errorf("border width must not be negative: %d", *e.BorderWidth)
	}
	return nil
}
