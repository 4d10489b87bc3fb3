package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"montage/pkg/timefmt"
)

// Inspect extracts metadata from a media file. Unlike Probe it reports
// failures to the caller.
func (e *Executor) Inspect(ctx context.Context, filePath string) (*ProbeResult, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeDocument
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	return reconcile(filePath, probe), nil
}

// reconcile folds the raw ffprobe document into a ProbeResult, taking the
// maximum of container and stream durations so a longer co-muxed stream is
// never truncated.
func reconcile(filePath string, probe probeDocument) *ProbeResult {
	info := &ProbeResult{
		Path: filePath,
	}

	containerDuration := parseSeconds(probe.Format.Duration)

	sawVideo := false
	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if sawVideo {
				continue
			}
			sawVideo = true
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = stream.CodecName
			info.VideoDuration = parseSeconds(stream.Duration)
			if stream.RFrameRate != "" {
				info.FPS = timefmt.ParseFrameRate(stream.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
			if info.AudioCodec == "" {
				info.AudioCodec = stream.CodecName
			}
			if d := parseSeconds(stream.Duration); d > info.AudioDuration {
				info.AudioDuration = d
			}
		}
	}

	info.Duration = containerDuration
	if info.VideoDuration > info.Duration {
		info.Duration = info.VideoDuration
	}
	if info.AudioDuration > info.Duration {
		info.Duration = info.AudioDuration
	}
	if info.Duration <= 0 {
		info.Duration = FallbackDuration
	}

	if !sawVideo || info.Width <= 0 || info.Height <= 0 {
		info.Width = FallbackWidth
		info.Height = FallbackHeight
	}

	return info
}

// QuickDuration asks ffprobe for the container duration only. Cheaper than a
// full inspection and tolerant of files whose stream headers confuse the
// full probe.
func (e *Executor) QuickDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe error: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("non-positive duration: %f", duration)
	}

	return duration, nil
}

// Probe never fails. It tries a full inspection, then a direct duration
// query, and finally falls back to conservative defaults: a short duration
// and audio assumed present. Each degradation is logged, not returned.
func (e *Executor) Probe(ctx context.Context, filePath string) *ProbeResult {
	info, err := e.Inspect(ctx, filePath)
	if err == nil {
		return info
	}
	e.logger.Warn().Err(err).Str("path", filePath).Msg("full probe failed, trying duration query")

	result := &ProbeResult{
		Path:     filePath,
		Duration: FallbackDuration,
		Width:    FallbackWidth,
		Height:   FallbackHeight,
		HasAudio: true,
		Degraded: true,
	}

	duration, qerr := e.QuickDuration(ctx, filePath)
	if qerr == nil {
		result.Duration = duration
		return result
	}
	e.logger.Warn().Err(qerr).Str("path", filePath).Msg("duration query failed, using defaults")

	return result
}

func parseSeconds(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

// probeDocument matches ffprobe JSON output structure
type probeDocument struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Duration   string `json:"duration"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		BitRate    string `json:"bit_rate"`
	} `json:"streams"`
}
