package compose

import (
	"fmt"

	"montage/internal/ffmpeg"
	"montage/internal/subtitle"
)

// OutputSettings selects the encoder parameters for a request. Unset fields
// fall back to the engine's configured defaults.
type OutputSettings struct {
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
	CRF        int    `yaml:"crf"`
	Preset     string `yaml:"preset"`
	Format     string `yaml:"format"`
}

// Request describes one single-video composition: a primary video, optional
// background music and narration tracks, optional captions, and timeline
// flags. One request produces exactly one output; the engine keeps no state
// across requests.
type Request struct {
	VideoPath string `yaml:"video_path"`

	// OriginalVolume scales the primary video's own audio, 0-100.
	// Nil means 100.
	OriginalVolume *float64 `yaml:"original_volume"`

	BGM       *ffmpeg.AudioTrack `yaml:"bgm"`
	Narration *ffmpeg.AudioTrack `yaml:"narration"`
	Captions  []subtitle.Entry   `yaml:"captions"`

	// HalfFrameRate plays the video at half speed (2x stretch).
	HalfFrameRate bool `yaml:"half_frame_rate"`

	// SyncToAudioDuration stretches video timing to match a longer
	// narration instead of freezing the last frame for the whole gap.
	SyncToAudioDuration bool `yaml:"sync_to_audio_duration"`

	Output OutputSettings `yaml:"output"`
}

// Validate checks every request field before any external process runs.
func (r *Request) Validate() error {
	if r.VideoPath == "" {
		return fmt.Errorf("%w: video path is required", ErrValidation)
	}
	if r.OriginalVolume != nil {
		if err := checkVolume(*r.OriginalVolume); err != nil {
			return fmt.Errorf("%w: original audio: %v", ErrValidation, err)
		}
	}
	if r.BGM != nil {
		if err := checkTrack(r.BGM, false); err != nil {
			return fmt.Errorf("%w: bgm: %v", ErrValidation, err)
		}
	}
	if r.Narration != nil {
		if err := checkTrack(r.Narration, true); err != nil {
			return fmt.Errorf("%w: narration: %v", ErrValidation, err)
		}
	}
	for i := range r.Captions {
		if err := r.Captions[i].Validate(); err != nil {
			return fmt.Errorf("%w: caption %d: %v", ErrValidation, i+1, err)
		}
	}
	return nil
}

func checkTrack(t *ffmpeg.AudioTrack, allowDelay bool) error {
	if t.Path == "" {
		return fmt.Errorf("path is required")
	}
	if err := checkVolume(t.Volume); err != nil {
		return err
	}
	if t.FadeIn < 0 {
		return fmt.Errorf("fade-in must not be negative: %f", t.FadeIn)
	}
	if t.FadeOut < 0 {
		return fmt.Errorf("fade-out must not be negative: %f", t.FadeOut)
	}
	if t.Delay < 0 {
		return fmt.Errorf("delay must not be negative: %f", t.Delay)
	}
	if t.Delay > 0 && !allowDelay {
		return fmt.Errorf("delay is only supported on narration")
	}
	return nil
}

func checkVolume(v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("volume must be within [0,100]: %f", v)
	}
	return nil
}

// ConcatRequest describes multi-clip concatenation. All clips are
// normalized to one resolution (letterboxed) before the concat stage.
type ConcatRequest struct {
	ClipPaths []string `yaml:"clip_paths"`
	Width     int      `yaml:"width"`
	Height    int      `yaml:"height"`

	Output OutputSettings `yaml:"output"`
}

// Validate checks the concat request fields.
func (r *ConcatRequest) Validate() error {
	if len(r.ClipPaths) < 2 {
		return fmt.Errorf("%w: concatenation needs at least two clips, got %d", ErrValidation, len(r.ClipPaths))
	}
	for i, path := range r.ClipPaths {
		if path == "" {
			return fmt.Errorf("%w: clip %d has an empty path", ErrValidation, i+1)
		}
	}
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("%w: dimensions must not be negative", ErrValidation)
	}
	return nil
}

// SlideshowRequest describes an image-sequence-to-video render.
type SlideshowRequest struct {
	ImagePaths      []string `yaml:"image_paths"`
	SecondsPerImage float64  `yaml:"seconds_per_image"`
	Width           int      `yaml:"width"`
	Height          int      `yaml:"height"`
	FrameRate       float64  `yaml:"frame_rate"`

	BGM *ffmpeg.AudioTrack `yaml:"bgm"`

	Output OutputSettings `yaml:"output"`
}

// Validate checks the slideshow request fields.
func (r *SlideshowRequest) Validate() error {
	if len(r.ImagePaths) == 0 {
		return fmt.Errorf("%w: at least one image is required", ErrValidation)
	}
	for i, path := range r.ImagePaths {
		if path == "" {
			return fmt.Errorf("%w: image %d has an empty path", ErrValidation, i+1)
		}
	}
	if r.SecondsPerImage < 0 {
		return fmt.Errorf("%w: seconds per image must not be negative", ErrValidation)
	}
	if r.FrameRate < 0 {
		return fmt.Errorf("%w: frame rate must not be negative", ErrValidation)
	}
	if r.BGM != nil {
		if err := checkTrack(r.BGM, false); err != nil {
			return fmt.Errorf("%w: bgm: %v", ErrValidation, err)
		}
	}
	return nil
}
