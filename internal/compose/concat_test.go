package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"montage/internal/ffmpeg"
)

func clipInfo(duration float64, hasAudio bool) *ffmpeg.ProbeResult {
	return &ffmpeg.ProbeResult{
		Duration:      duration,
		VideoDuration: duration,
		Width:         1280,
		Height:        720,
		HasAudio:      hasAudio,
	}
}

// Three clips where the middle one is silent: every clip must contribute an
// audio pad, with silence synthesized for the middle clip at its exact
// duration.
func TestPlanConcatMixedAudio(t *testing.T) {
	infos := []*ffmpeg.ProbeResult{
		clipInfo(4, true),
		clipInfo(6, false),
		clipInfo(5, true),
	}

	graph, withAudio, total := planConcat(infos, 1920, 1080)

	require.True(t, withAudio)
	assert.InDelta(t, 15.0, total, 0.001)

	// One video clause and one audio clause per clip, then the concat stage.
	require.Len(t, graph.Clauses, 7)

	silent := graph.Clauses[3]
	assert.Empty(t, silent.Inputs, "synthesized silence is a source clause")
	assert.Contains(t, silent.Body, "anullsrc=channel_layout=stereo:sample_rate=44100")
	assert.Contains(t, silent.Body, "atrim=duration=6.000")
	assert.Equal(t, []string{"a1"}, silent.Outputs)

	concat := graph.Clauses[6]
	assert.Equal(t, []string{"v0", "a0", "v1", "a1", "v2", "a2"}, concat.Inputs,
		"pads must interleave video and audio per clip")
	assert.Equal(t, "concat=n=3:v=1:a=1", concat.Body)
	assert.Equal(t, []string{"vout", "aout"}, concat.Outputs)
}

func TestPlanConcatAllSilent(t *testing.T) {
	infos := []*ffmpeg.ProbeResult{
		clipInfo(3, false),
		clipInfo(2, false),
	}

	graph, withAudio, total := planConcat(infos, 1920, 1080)

	assert.False(t, withAudio)
	assert.InDelta(t, 5.0, total, 0.001)
	require.Len(t, graph.Clauses, 3, "no audio clauses when no clip has audio")

	concat := graph.Clauses[2]
	assert.Equal(t, []string{"v0", "v1"}, concat.Inputs)
	assert.Equal(t, "concat=n=2:v=1:a=0", concat.Body)
	assert.Equal(t, []string{"vout"}, concat.Outputs)
}

func TestPlanConcatBoundaryFades(t *testing.T) {
	infos := []*ffmpeg.ProbeResult{
		clipInfo(4, true),
		clipInfo(5, true),
	}

	graph, _, _ := planConcat(infos, 1920, 1080)

	first := graph.Clauses[1]
	assert.Contains(t, first.Body, "afade=t=in:st=0:d=0.050")
	assert.Contains(t, first.Body, "afade=t=out:st=3.950:d=0.050")
}

func TestPlanConcatFadeStartNeverNegative(t *testing.T) {
	infos := []*ffmpeg.ProbeResult{
		clipInfo(0.02, true),
		clipInfo(5, true),
	}

	graph, _, _ := planConcat(infos, 1920, 1080)

	assert.Contains(t, graph.Clauses[1].Body, "afade=t=out:st=0.000")
}

// Normalization letterboxes onto the target canvas but must not touch frame
// timing: per-clip rate resampling desynchronizes audio and video.
func TestPlanConcatNormalizationLeavesTimingAlone(t *testing.T) {
	infos := []*ffmpeg.ProbeResult{
		clipInfo(4, true),
		clipInfo(5, true),
	}

	graph, _, _ := planConcat(infos, 1280, 720)

	video := graph.Clauses[0]
	assert.Equal(t,
		"scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:(ow-iw)/2:(oh-ih)/2,setsar=1,format=yuv420p",
		video.Body)
	assert.NotContains(t, graph.String(), "fps=")
}

func TestPlanConcatGraphVerifies(t *testing.T) {
	infos := []*ffmpeg.ProbeResult{
		clipInfo(4, true),
		clipInfo(6, false),
		clipInfo(5, true),
	}

	graph, _, _ := planConcat(infos, 1920, 1080)

	require.NoError(t, graph.Verify(concatVideoLabel))
	assert.False(t, strings.Contains(graph.String(), "%!"))
}
