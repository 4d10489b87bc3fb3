package ffmpeg

import (
	"strings"
	"testing"
)

func TestCommandArgsOrder(t *testing.T) {
	graph := &Graph{}
	graph.Add(Clause{Inputs: []string{"1:a"}, Body: "volume=0.30", Outputs: []string{"mixout"}})

	cmd := Command{
		Inputs: []Input{
			{Path: "video.mp4"},
			{Path: "music.mp3", StreamLoop: -1, Trim: 20},
		},
		FilterComplex: graph,
		VideoFilters:  []string{"setpts=2.0*PTS"},
		Maps:          []string{"0:v", "[mixout]"},
		VideoCodec:    "libx264",
		AudioCodec:    "aac",
		CRF:           23,
		Preset:        "medium",
		PixelFormat:   "yuv420p",
		Duration:      20,
		FastStart:     true,
		Output:        "out.mp4",
	}

	got := strings.Join(cmd.Args(), " ")
	want := "-i video.mp4 -stream_loop -1 -t 20.000 -i music.mp3 " +
		"-filter_complex [1:a]volume=0.30[mixout] " +
		"-vf setpts=2.0*PTS " +
		"-map 0:v -map [mixout] " +
		"-c:v libx264 -crf 23 -preset medium -pix_fmt yuv420p -c:a aac " +
		"-t 20.000 -movflags +faststart out.mp4"
	if got != want {
		t.Errorf("Args() =\n%s\nwant\n%s", got, want)
	}
}

func TestCommandArgsImageLoop(t *testing.T) {
	cmd := Command{
		Inputs: []Input{{Path: "slide.png", Loop: true, Trim: 3}},
		Output: "out.mp4",
	}

	got := strings.Join(cmd.Args(), " ")
	if !strings.HasPrefix(got, "-loop 1 -t 3.000 -i slide.png") {
		t.Errorf("image input options missing or misordered: %s", got)
	}
}

// Identical commands must serialize to identical argument vectors.
func TestCommandArgsDeterministic(t *testing.T) {
	build := func() Command {
		graph, _ := BuildAudioMix(MixLayout{
			Original: &MixSource{InputIndex: 0, Track: AudioTrack{Volume: 100}},
			BGM:      &MixSource{InputIndex: 1, Track: AudioTrack{Volume: 30, FadeOut: 2}},
		}, 20)
		return Command{
			Inputs:        []Input{{Path: "a.mp4"}, {Path: "b.mp3"}},
			FilterComplex: graph,
			Maps:          []string{"0:v", "[mixout]"},
			VideoCodec:    "libx264",
			CRF:           23,
			Output:        "out.mp4",
		}
	}

	first := strings.Join(build().Args(), "\x00")
	for i := 0; i < 5; i++ {
		if next := strings.Join(build().Args(), "\x00"); next != first {
			t.Fatalf("argument vector differs on run %d", i)
		}
	}
}

func TestEscapeFilterPath(t *testing.T) {
	escaped := EscapeFilterPath("/tmp/captions test.ass")
	if strings.Contains(escaped, "'") {
		t.Errorf("quotes must be escaped: %s", escaped)
	}
	if !strings.HasPrefix(escaped, "/") {
		t.Errorf("path must be absolute: %s", escaped)
	}
}

func TestSubtitleFilter(t *testing.T) {
	filter := SubtitleFilter("/tmp/doc.ass")
	if !strings.HasPrefix(filter, "subtitles=") {
		t.Errorf("unexpected filter: %s", filter)
	}
}
