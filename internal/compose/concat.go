package compose

import (
	"context"
	"fmt"

	"montage/internal/ffmpeg"
	"montage/pkg/timefmt"
)

// boundaryFade is the audio fade length, in seconds, applied at every clip
// boundary to avoid audible clicks in the concatenated stream.
const boundaryFade = 0.05

const concatVideoLabel = "vout"
const concatAudioLabel = "aout"

// Concat joins multiple clips into one continuous video. Clips are
// letterboxed onto one common resolution; clips without audio get a
// synthesized silent track of their exact duration so the concat stage sees
// uniform stream counts. Frame timing is deliberately left alone: resampling
// each clip independently desynchronizes audio and video cumulatively.
func (e *Engine) Concat(ctx context.Context, req ConcatRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	infos := make([]*ffmpeg.ProbeResult, len(req.ClipPaths))
	for i, path := range req.ClipPaths {
		infos[i] = e.exec.Probe(ctx, path)
	}

	width, height := req.Width, req.Height
	if width == 0 || height == 0 {
		width, height = ffmpeg.FallbackWidth, ffmpeg.FallbackHeight
	}

	graph, withAudio, total := planConcat(infos, width, height)

	e.logger.Info().
		Int("clips", len(req.ClipPaths)).
		Bool("audio", withAudio).
		Float64("total_duration", total).
		Msg("starting concatenation")

	settings := e.resolve(req.Output)
	outPath, err := e.temps.Create("." + settings.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: create output file: %v", ErrIO, err)
	}

	inputs := make([]ffmpeg.Input, len(req.ClipPaths))
	for i, path := range req.ClipPaths {
		inputs[i] = ffmpeg.Input{Path: path}
	}

	maps := []string{"[" + concatVideoLabel + "]"}
	if withAudio {
		maps = append(maps, "["+concatAudioLabel+"]")
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
		FastStart:     settings.Format == "mp4",
		Output:        outPath,
	}

	if err := e.invoke(ctx, cmd); err != nil {
		return nil, err
	}

	return e.readResult(outPath, total, width, height)
}

// planConcat builds the normalization and concat graph. The audio decision
// is made once over all clips: if any clip carries audio, every clip
// contributes an audio pad, synthesized as silence where missing.
func planConcat(infos []*ffmpeg.ProbeResult, width, height int) (*ffmpeg.Graph, bool, float64) {
	withAudio := false
	total := 0.0
	for _, info := range infos {
		total += info.Duration
		if info.HasAudio {
			withAudio = true
		}
	}

	graph := &ffmpeg.Graph{}

	for i, info := range infos {
		graph.Add(ffmpeg.Clause{
			Inputs:  []string{fmt.Sprintf("%d:v", i)},
			Body:    normalizeVideo(width, height),
			Outputs: []string{fmt.Sprintf("v%d", i)},
		})

		if !withAudio {
			continue
		}

		label := fmt.Sprintf("a%d", i)
		if info.HasAudio {
			fadeOutStart := info.Duration - boundaryFade
			if fadeOutStart < 0 {
				fadeOutStart = 0
			}
			graph.Add(ffmpeg.Clause{
				Inputs: []string{fmt.Sprintf("%d:a", i)},
				Body: fmt.Sprintf(
					"aformat=sample_rates=44100:channel_layouts=stereo,afade=t=in:st=0:d=%s,afade=t=out:st=%s:d=%s",
					timefmt.Seconds(boundaryFade), timefmt.Seconds(fadeOutStart), timefmt.Seconds(boundaryFade)),
				Outputs: []string{label},
			})
		} else {
			// Source clause: silence of the clip's exact duration.
			graph.Add(ffmpeg.Clause{
				Body: fmt.Sprintf(
					"anullsrc=channel_layout=stereo:sample_rate=44100,atrim=duration=%s",
					timefmt.Seconds(info.Duration)),
				Outputs: []string{label},
			})
		}
	}

	concat := ffmpeg.Clause{Outputs: []string{concatVideoLabel}}
	for i := range infos {
		concat.Inputs = append(concat.Inputs, fmt.Sprintf("v%d", i))
		if withAudio {
			concat.Inputs = append(concat.Inputs, fmt.Sprintf("a%d", i))
		}
	}
	if withAudio {
		concat.Body = fmt.Sprintf("concat=n=%d:v=1:a=1", len(infos))
		concat.Outputs = append(concat.Outputs, concatAudioLabel)
	} else {
		concat.Body = fmt.Sprintf("concat=n=%d:v=1:a=0", len(infos))
	}
	graph.Add(concat)

	return graph, withAudio, total
}

// normalizeVideo letterboxes a clip onto the target resolution without
// touching frame timing.
func normalizeVideo(width, height int) string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,format=yuv420p",
		width, height, width, height)
}
