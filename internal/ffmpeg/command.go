package ffmpeg

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"montage/pkg/timefmt"
)

// Input is one input file plus its per-input options.
type Input struct {
	Path string
	// Loop emits -loop 1, used for still images.
	Loop bool
	// StreamLoop emits -stream_loop N; -1 loops indefinitely. Zero is off.
	StreamLoop int
	// Trim emits an input-side -t, bounding how much of the file is read.
	Trim float64
}

// Command models one ffmpeg invocation. Args serializes it in a fixed order,
// so identical commands always produce identical argument vectors.
type Command struct {
	Inputs        []Input
	FilterComplex *Graph
	VideoFilters  []string
	AudioFilters  []string
	Maps          []string
	VideoCodec    string
	AudioCodec    string
	CRF           int
	Preset        string
	PixelFormat   string
	FrameRate     float64
	Duration      float64
	FastStart     bool
	Output        string
}

// Args builds the argument vector: per-input options and -i flags first,
// then filters, stream maps, codec and quality settings, and the output
// path last.
func (c Command) Args() []string {
	var args []string

	for _, in := range c.Inputs {
		if in.Loop {
			args = append(args, "-loop", "1")
		}
		if in.StreamLoop != 0 {
			args = append(args, "-stream_loop", fmt.Sprintf("%d", in.StreamLoop))
		}
		if in.Trim > 0 {
			args = append(args, "-t", timefmt.Seconds(in.Trim))
		}
		args = append(args, "-i", in.Path)
	}

	if c.FilterComplex != nil && !c.FilterComplex.Empty() {
		args = append(args, "-filter_complex", c.FilterComplex.String())
	}

	if len(c.VideoFilters) > 0 {
		args = append(args, "-vf", strings.Join(c.VideoFilters, ","))
	}

	if len(c.AudioFilters) > 0 {
		args = append(args, "-af", strings.Join(c.AudioFilters, ","))
	}

	for _, m := range c.Maps {
		args = append(args, "-map", m)
	}

	if c.VideoCodec != "" {
		args = append(args, "-c:v", c.VideoCodec)
	}
	if c.CRF > 0 {
		args = append(args, "-crf", fmt.Sprintf("%d", c.CRF))
	}
	if c.Preset != "" {
		args = append(args, "-preset", c.Preset)
	}
	if c.PixelFormat != "" {
		args = append(args, "-pix_fmt", c.PixelFormat)
	}
	if c.AudioCodec != "" {
		args = append(args, "-c:a", c.AudioCodec)
	}
	if c.FrameRate > 0 {
		args = append(args, "-r", fmt.Sprintf("%.2f", c.FrameRate))
	}
	if c.Duration > 0 {
		args = append(args, "-t", timefmt.Seconds(c.Duration))
	}
	if c.FastStart {
		args = append(args, "-movflags", "+faststart")
	}

	args = append(args, c.Output)
	return args
}

// SubtitleFilter builds the subtitles burn-in clause for a video filter
// chain, with the document path escaped for the filter mini-language.
func SubtitleFilter(path string) string {
	return fmt.Sprintf("subtitles=%s", EscapeFilterPath(path))
}

// EscapeFilterPath escapes a file path for use inside a filter expression:
// absolute, slash-normalized, with colons and quotes escaped.
func EscapeFilterPath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	if runtime.GOOS == "windows" {
		absPath = strings.ReplaceAll(absPath, "\\", "/")
	}

	escaped := strings.ReplaceAll(absPath, ":", "\\:")
	escaped = strings.ReplaceAll(escaped, "'", "\\'")

	return escaped
}
