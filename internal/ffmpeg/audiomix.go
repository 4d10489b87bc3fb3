package ffmpeg

import (
	"fmt"
	"math"

	"montage/pkg/timefmt"
)

// MixOutputLabel is the canonical pad every present audio source resolves to.
const MixOutputLabel = "mixout"

// MixSource binds an audio track's settings to the ffmpeg input index its
// file occupies on the command line.
type MixSource struct {
	InputIndex int
	Track      AudioTrack
}

// MixLayout declares which of the three audio sources are present for one
// render. Absent sources are nil.
type MixLayout struct {
	// Original is the primary video's own audio stream.
	Original *MixSource
	// HalfSpeed stretches the original audio to match a 2x video stretch.
	HalfSpeed bool
	BGM       *MixSource
	Narration *MixSource
}

func (l MixLayout) sourceCount() int {
	count := 0
	for _, s := range []*MixSource{l.Original, l.BGM, l.Narration} {
		if s != nil {
			count++
		}
	}
	return count
}

// BuildAudioMix emits the filter graph combining the present audio sources
// into MixOutputLabel. Source order is fixed: original, bgm, narration. A
// single source is renamed onto the canonical label instead of passing
// through amix; two or more feed an amix clause with duration=longest so the
// mix is never cut to the shortest input.
//
// The second return value is false when the built graph fails its own
// verification; the caller then falls back to a simpler volume filter
// instead of handing ffmpeg a broken expression.
func BuildAudioMix(layout MixLayout, effectiveDuration float64) (*Graph, bool) {
	graph := &Graph{}
	var labels []string

	if layout.Original != nil {
		body := volumeFilter(layout.Original.Track.Volume)
		if layout.HalfSpeed {
			body = "atempo=0.5," + body
		}
		graph.Add(Clause{
			Inputs:  []string{fmt.Sprintf("%d:a", layout.Original.InputIndex)},
			Body:    body,
			Outputs: []string{"aorig"},
		})
		labels = append(labels, "aorig")
	}

	if layout.BGM != nil {
		track := layout.BGM.Track
		body := volumeFilter(track.Volume)
		if track.FadeIn > 0 {
			body += fmt.Sprintf(",afade=t=in:st=0:d=%s", timefmt.Seconds(track.FadeIn))
		}
		if track.FadeOut > 0 {
			start := math.Max(0, effectiveDuration-track.FadeOut)
			body += fmt.Sprintf(",afade=t=out:st=%s:d=%s", timefmt.Seconds(start), timefmt.Seconds(track.FadeOut))
		}
		graph.Add(Clause{
			Inputs:  []string{fmt.Sprintf("%d:a", layout.BGM.InputIndex)},
			Body:    body,
			Outputs: []string{"abgm"},
		})
		labels = append(labels, "abgm")
	}

	if layout.Narration != nil {
		track := layout.Narration.Track
		body := volumeFilter(track.Volume)
		if track.Delay > 0 {
			delayMs := int(math.Round(track.Delay * 1000))
			body += fmt.Sprintf(",adelay=%d|%d", delayMs, delayMs)
		}
		graph.Add(Clause{
			Inputs:  []string{fmt.Sprintf("%d:a", layout.Narration.InputIndex)},
			Body:    body,
			Outputs: []string{"anarr"},
		})
		labels = append(labels, "anarr")
	}

	if len(labels) == 0 {
		return graph, false
	}

	if len(labels) == 1 {
		graph.Clauses[len(graph.Clauses)-1].Outputs = []string{MixOutputLabel}
	} else {
		graph.Add(Clause{
			Inputs:  labels,
			Body:    fmt.Sprintf("amix=inputs=%d:duration=longest:dropout_transition=0", len(labels)),
			Outputs: []string{MixOutputLabel},
		})
	}

	if err := graph.Verify(MixOutputLabel); err != nil {
		return graph, false
	}

	return graph, true
}

// volumeFilter converts a 0-100 percent volume to a volume filter clause.
func volumeFilter(percent float64) string {
	return fmt.Sprintf("volume=%.2f", percent/100)
}
