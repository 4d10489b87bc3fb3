package compose

import (
	"context"
	"fmt"

	"montage/internal/ffmpeg"
)

// Defaults for image-sequence rendering.
const (
	defaultSecondsPerImage = 3.0
	defaultSlideshowRate   = 30.0
)

// Slideshow renders a sequence of still images into a video, each image
// shown for a fixed duration, with an optional looped music track.
func (e *Engine) Slideshow(ctx context.Context, req SlideshowRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	perImage := req.SecondsPerImage
	if perImage == 0 {
		perImage = defaultSecondsPerImage
	}
	rate := req.FrameRate
	if rate == 0 {
		rate = defaultSlideshowRate
	}
	width, height := req.Width, req.Height
	if width == 0 || height == 0 {
		width, height = ffmpeg.FallbackWidth, ffmpeg.FallbackHeight
	}

	total := perImage * float64(len(req.ImagePaths))

	e.logger.Info().
		Int("images", len(req.ImagePaths)).
		Float64("seconds_per_image", perImage).
		Float64("total_duration", total).
		Msg("starting slideshow render")

	graph := &ffmpeg.Graph{}
	inputs := make([]ffmpeg.Input, 0, len(req.ImagePaths)+1)

	for i, path := range req.ImagePaths {
		inputs = append(inputs, ffmpeg.Input{Path: path, Loop: true, Trim: perImage})
		graph.Add(ffmpeg.Clause{
			Inputs:  []string{fmt.Sprintf("%d:v", i)},
			Body:    fmt.Sprintf("%s,fps=%.2f", normalizeVideo(width, height), rate),
			Outputs: []string{fmt.Sprintf("v%d", i)},
		})
	}

	concat := ffmpeg.Clause{
		Body:    fmt.Sprintf("concat=n=%d:v=1:a=0", len(req.ImagePaths)),
		Outputs: []string{concatVideoLabel},
	}
	for i := range req.ImagePaths {
		concat.Inputs = append(concat.Inputs, fmt.Sprintf("v%d", i))
	}
	graph.Add(concat)

	maps := []string{"[" + concatVideoLabel + "]"}

	if req.BGM != nil {
		bgmInfo := e.exec.Probe(ctx, req.BGM.Path)
		bgmIndex := len(inputs)
		in := ffmpeg.Input{Path: req.BGM.Path, Trim: total}
		if bgmInfo.Duration < total {
			in.StreamLoop = -1
		}
		inputs = append(inputs, in)

		mix, ok := ffmpeg.BuildAudioMix(ffmpeg.MixLayout{
			BGM: &ffmpeg.MixSource{InputIndex: bgmIndex, Track: *req.BGM},
		}, total)
		if ok {
			graph.Clauses = append(graph.Clauses, mix.Clauses...)
			maps = append(maps, "["+ffmpeg.MixOutputLabel+"]")
		} else {
			e.logger.Warn().Msg("bgm clause failed verification, rendering slideshow without audio")
		}
	}

	settings := e.resolve(req.Output)
	outPath, err := e.temps.Create("." + settings.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: create output file: %v", ErrIO, err)
	}

	cmd := ffmpeg.Command{
		Inputs:        inputs,
		FilterComplex: graph,
		Maps:          maps,
		VideoCodec:    settings.VideoCodec,
		AudioCodec:    settings.AudioCodec,
		CRF:           settings.CRF,
		Preset:        settings.Preset,
		PixelFormat:   "yuv420p",
		Duration:      total,
		FastStart:     settings.Format == "mp4",
		Output:        outPath,
	}

	if err := e.invoke(ctx, cmd); err != nil {
		return nil, err
	}

	return e.readResult(outPath, total, width, height)
}
