package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// TempDir is where intermediate files (subtitle documents, outputs)
	// are created. Empty means the OS temp directory.
	TempDir string `yaml:"temp_dir"`

	FFmpeg    FFmpegConfig   `yaml:"ffmpeg"`
	Output    OutputConfig   `yaml:"output"`
	Subtitles SubtitleConfig `yaml:"subtitles"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
}

// OutputConfig carries encoder defaults used when a request leaves them unset.
type OutputConfig struct {
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
	CRF        int    `yaml:"crf"`
	Preset     string `yaml:"preset"`
	Format     string `yaml:"format"`
}

type SubtitleConfig struct {
	FontFamily string `yaml:"font_family"`
	FontSize   int    `yaml:"font_size"`
	FontColor  string `yaml:"font_color"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TempDir: "",
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
		},
		Output: OutputConfig{
			VideoCodec: "libx264",
			AudioCodec: "aac",
			CRF:        23,
			Preset:     "medium",
			Format:     "mp4",
		},
		Subtitles: SubtitleConfig{
			FontFamily: "Arial",
			FontSize:   24,
			FontColor:  "#FFFFFF",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./montage.yaml",
		"./montage.yml",
		filepath.Join(os.Getenv("HOME"), ".montage", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
