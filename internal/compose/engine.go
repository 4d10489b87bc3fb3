// Package compose orchestrates single-video composition, multi-clip
// concatenation, and image-sequence rendering into one ffmpeg invocation
// each.
package compose

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"montage/internal/config"
	"montage/internal/ffmpeg"
	"montage/internal/logging"
	"montage/internal/subtitle"
	"montage/internal/tempfile"
	"montage/pkg/timefmt"
)

// freezeFrameMargin is the safety margin, in seconds, added when the last
// frame is frozen to cover trailing narration.
const freezeFrameMargin = 1.0

// stretchFrameRate is the fixed rate the video is resampled to after a
// timing stretch; extreme stretches otherwise leave too few frames for
// subtitle burn-in.
const stretchFrameRate = 30.0

// Result is one finished render: the output bytes plus sidecar facts for
// caller-side logging.
type Result struct {
	Data     []byte
	Duration float64
	Width    int
	Height   int
}

// Engine runs composition requests. It is stateless across requests: every
// request re-probes its inputs and rebuilds its graphs from scratch.
type Engine struct {
	logger    zerolog.Logger
	exec      *ffmpeg.Executor
	temps     *tempfile.Manager
	output    config.OutputConfig
	subtitles config.SubtitleConfig
}

// NewEngine builds an engine around an executor and a temp-file manager.
// The caller is expected to invoke temps.CleanupAll after every request,
// regardless of outcome.
func NewEngine(logger zerolog.Logger, exec *ffmpeg.Executor, temps *tempfile.Manager, cfg *config.Config) *Engine {
	return &Engine{
		logger:    logging.WithComponent(logger, "compose"),
		exec:      exec,
		temps:     temps,
		output:    cfg.Output,
		subtitles: cfg.Subtitles,
	}
}

// Compose renders one Request into a finished video.
func (e *Engine) Compose(ctx context.Context, req Request) (*Result, error) {
	for i := range req.Captions {
		req.Captions[i].ApplyDefaults(e.subtitles.FontFamily, e.subtitles.FontSize, e.subtitles.FontColor)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	primary := e.exec.Probe(ctx, req.VideoPath)

	var bgmInfo, narrInfo *ffmpeg.ProbeResult
	if req.BGM != nil {
		bgmInfo = e.exec.Probe(ctx, req.BGM.Path)
	}
	if req.Narration != nil {
		narrInfo = e.exec.Probe(ctx, req.Narration.Path)
	}

	plan := planCompose(req, primary, bgmInfo, narrInfo)

	e.logger.Info().
		Str("video", req.VideoPath).
		Float64("effective_duration", plan.effective).
		Bool("mix_graph", plan.graphOK).
		Int("captions", len(req.Captions)).
		Msg("starting composition")

	videoFilters := plan.videoFilters
	if len(req.Captions) > 0 {
		subPath, err := e.writeCaptions(req.Captions, primary.Width, primary.Height)
		if err != nil {
			return nil, err
		}
		videoFilters = append(videoFilters, ffmpeg.SubtitleFilter(subPath))
	}

	settings := e.resolve(req.Output)
	outPath, err := e.temps.Create("." + settings.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: create output file: %v", ErrIO, err)
	}

	cmd := ffmpeg.Command{
		Inputs:       plan.inputs,
		VideoFilters: videoFilters,
		Maps:         plan.maps,
		VideoCodec:   settings.VideoCodec,
		AudioCodec:   settings.AudioCodec,
		CRF:          settings.CRF,
		Preset:       settings.Preset,
		PixelFormat:  "yuv420p",
		Duration:     plan.effective,
		FastStart:    settings.Format == "mp4",
		Output:       outPath,
	}
	if plan.graphOK {
		cmd.FilterComplex = plan.graph
	} else {
		cmd.AudioFilters = plan.fallbackAudio
	}

	if err := e.invoke(ctx, cmd); err != nil {
		return nil, err
	}

	return e.readResult(outPath, plan.effective, primary.Width, primary.Height)
}

// writeCaptions renders the caption entries and writes the subtitle
// document to a temp path the filter graph can reference.
func (e *Engine) writeCaptions(entries []subtitle.Entry, width, height int) (string, error) {
	doc, err := subtitle.Render(entries, width, height)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	path, err := e.temps.Create(".ass")
	if err != nil {
		return "", fmt.Errorf("%w: create subtitle file: %v", ErrIO, err)
	}
	if err := doc.WriteFile(path); err != nil {
		return "", fmt.Errorf("%w: write subtitle file: %v", ErrIO, err)
	}
	return path, nil
}

// invoke runs ffmpeg once; any failure, including cancellation, surfaces as
// one ErrInvocation with the captured diagnostics.
func (e *Engine) invoke(ctx context.Context, cmd ffmpeg.Command) error {
	opts := ffmpeg.RunOptions{
		Args: cmd.Args(),
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("render output")
		},
	}
	if err := e.exec.Run(ctx, opts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvocation, err)
	}
	return nil
}

// readResult reads the finished file back into memory. Partial output is
// never returned: a read failure discards the render.
func (e *Engine) readResult(path string, duration float64, width, height int) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read output: %v", ErrIO, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: output file is empty: %s", ErrIO, path)
	}

	e.logger.Info().
		Int("bytes", len(data)).
		Float64("duration", duration).
		Msg("render completed")

	return &Result{
		Data:     data,
		Duration: duration,
		Width:    width,
		Height:   height,
	}, nil
}

// resolve fills unset output settings from the configured defaults.
func (e *Engine) resolve(s OutputSettings) OutputSettings {
	if s.VideoCodec == "" {
		s.VideoCodec = e.output.VideoCodec
	}
	if s.AudioCodec == "" {
		s.AudioCodec = e.output.AudioCodec
	}
	if s.CRF == 0 {
		s.CRF = e.output.CRF
	}
	if s.Preset == "" {
		s.Preset = e.output.Preset
	}
	if s.Format == "" {
		s.Format = e.output.Format
	}
	return s
}

// composePlan is the pure outcome of timeline and mix planning for one
// request: the input list, video filter chain, audio graph (or its degraded
// fallback), stream maps, and the effective output duration.
type composePlan struct {
	inputs        []ffmpeg.Input
	videoFilters  []string
	graph         *ffmpeg.Graph
	graphOK       bool
	fallbackAudio []string
	maps          []string
	effective     float64
}

// planCompose resolves the timeline and audio layout. The guiding invariant:
// narration and voice audio are never truncated, even at the cost of
// stretching or extending the video.
func planCompose(req Request, primary, bgmInfo, narrInfo *ffmpeg.ProbeResult) composePlan {
	videoLen := primary.VideoDuration
	if videoLen <= 0 {
		videoLen = primary.Duration
	}

	narrDur := 0.0
	if narrInfo != nil {
		narrDur = narrInfo.Duration
	}

	var vf []string

	// Timeline adjustments, in order; each changes what the next stage
	// reasons about.
	if req.HalfFrameRate {
		vf = append(vf, "setpts=2.0*PTS")
		videoLen *= 2
	}
	if req.SyncToAudioDuration && videoLen > 0 && narrDur > videoLen {
		ratio := narrDur / videoLen
		vf = append(vf, fmt.Sprintf("setpts=%.6f*PTS", ratio))
		vf = append(vf, fmt.Sprintf("fps=%g", stretchFrameRate))
		videoLen = narrDur
	}
	if narrDur > videoLen {
		delta := narrDur - videoLen + freezeFrameMargin
		vf = append(vf, fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%s", timefmt.Seconds(delta)))
		videoLen += delta
	}

	effective := videoLen
	if narrDur > effective {
		effective = narrDur
	}
	if req.Narration == nil && primary.AudioDuration > effective {
		effective = primary.AudioDuration
	}

	plan := composePlan{
		videoFilters: vf,
		effective:    effective,
		inputs:       []ffmpeg.Input{{Path: req.VideoPath}},
	}

	layout := ffmpeg.MixLayout{HalfSpeed: req.HalfFrameRate}

	if primary.HasAudio {
		volume := 100.0
		if req.OriginalVolume != nil {
			volume = *req.OriginalVolume
		}
		layout.Original = &ffmpeg.MixSource{
			InputIndex: 0,
			Track:      ffmpeg.AudioTrack{Volume: volume},
		}
	}

	bgmIndex, narrIndex := -1, -1

	if req.BGM != nil {
		bgmIndex = len(plan.inputs)
		in := ffmpeg.Input{Path: req.BGM.Path, Trim: effective}
		if bgmInfo != nil && bgmInfo.Duration < effective {
			// Loop short music rather than letting it run out early.
			in.StreamLoop = -1
		}
		plan.inputs = append(plan.inputs, in)
		layout.BGM = &ffmpeg.MixSource{InputIndex: bgmIndex, Track: *req.BGM}
	}

	if req.Narration != nil {
		narrIndex = len(plan.inputs)
		plan.inputs = append(plan.inputs, ffmpeg.Input{Path: req.Narration.Path})
		layout.Narration = &ffmpeg.MixSource{InputIndex: narrIndex, Track: *req.Narration}
	}

	sources := 0
	for _, s := range []*ffmpeg.MixSource{layout.Original, layout.BGM, layout.Narration} {
		if s != nil {
			sources++
		}
	}

	if sources == 0 {
		// Nothing to mix; pass original audio through if the container
		// happens to carry some after all.
		plan.maps = []string{"0:v", "0:a?"}
		return plan
	}

	plan.graph, plan.graphOK = ffmpeg.BuildAudioMix(layout, effective)
	if plan.graphOK {
		plan.maps = []string{"0:v", "[" + ffmpeg.MixOutputLabel + "]"}
		return plan
	}

	// Degraded mode: a broken mix expression would abort the whole render,
	// so map the highest-priority source with a plain volume filter.
	switch {
	case layout.Narration != nil:
		plan.maps = []string{"0:v", fmt.Sprintf("%d:a", narrIndex)}
		plan.fallbackAudio = []string{fmt.Sprintf("volume=%.2f", req.Narration.Volume/100)}
	case layout.BGM != nil:
		plan.maps = []string{"0:v", fmt.Sprintf("%d:a", bgmIndex)}
		plan.fallbackAudio = []string{fmt.Sprintf("volume=%.2f", req.BGM.Volume/100)}
	default:
		plan.maps = []string{"0:v", "0:a?"}
		plan.fallbackAudio = []string{fmt.Sprintf("volume=%.2f", layout.Original.Track.Volume/100)}
	}
	return plan
}
