package ffmpeg

// ProbeResult contains the reconciled metadata for a media file. Duration is
// the maximum of the container duration and the per-stream durations, so that
// no track is truncated when the container header under-reports.
type ProbeResult struct {
	Path          string
	Duration      float64
	VideoDuration float64
	AudioDuration float64
	Width         int
	Height        int
	FPS           float64
	HasAudio      bool
	VideoCodec    string
	AudioCodec    string

	// Degraded marks a result synthesized from fallback defaults after the
	// probe itself failed. Not an error; callers proceed with the defaults.
	Degraded bool
}

// AudioTrack describes one audio source fed into the mix: the file, its
// volume in percent, optional fade envelope, and an optional start delay
// (used for narration).
type AudioTrack struct {
	Path    string  `yaml:"path"`
	Volume  float64 `yaml:"volume"`
	FadeIn  float64 `yaml:"fade_in"`
	FadeOut float64 `yaml:"fade_out"`
	Delay   float64 `yaml:"delay"`
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
type ProgressFunc func(*Progress)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "medium"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"

	// Conservative probe-failure defaults: assume a short duration and
	// assume audio exists. Assuming no audio risks silently dropping a
	// real soundtrack; assuming audio on a silent file only costs a
	// harmless mix input.
	FallbackDuration = 10.0
	FallbackWidth    = 1920
	FallbackHeight   = 1080
)
