package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output.VideoCodec != "libx264" || cfg.Output.AudioCodec != "aac" {
		t.Errorf("unexpected codec defaults: %+v", cfg.Output)
	}
	if cfg.Output.CRF != 23 || cfg.Output.Preset != "medium" || cfg.Output.Format != "mp4" {
		t.Errorf("unexpected encoder defaults: %+v", cfg.Output)
	}
	if cfg.Subtitles.FontFamily != "Arial" || cfg.Subtitles.FontSize != 24 || cfg.Subtitles.FontColor != "#FFFFFF" {
		t.Errorf("unexpected subtitle defaults: %+v", cfg.Subtitles)
	}
	if cfg.FFmpeg.BinaryPath != "ffmpeg" || cfg.FFmpeg.ProbePath != "ffprobe" {
		t.Errorf("unexpected ffmpeg defaults: %+v", cfg.FFmpeg)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.VideoCodec != "libx264" {
		t.Errorf("missing file should yield defaults, got %+v", cfg.Output)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "montage.yaml")
	content := "output:\n  crf: 18\n  preset: slow\nsubtitles:\n  font_size: 32\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Output.CRF != 18 || cfg.Output.Preset != "slow" {
		t.Errorf("overrides not applied: %+v", cfg.Output)
	}
	if cfg.Output.VideoCodec != "libx264" {
		t.Errorf("unset fields should keep defaults, got %q", cfg.Output.VideoCodec)
	}
	if cfg.Subtitles.FontSize != 32 {
		t.Errorf("subtitle override not applied: %+v", cfg.Subtitles)
	}
	if cfg.Subtitles.FontFamily != "Arial" {
		t.Errorf("unset subtitle fields should keep defaults, got %q", cfg.Subtitles.FontFamily)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "montage.yaml")
	if err := os.WriteFile(path, []byte("output: [not a mapping"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("malformed config should fail to load")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "montage.yaml")

	cfg := Default()
	cfg.Output.CRF = 20
	cfg.Subtitles.FontFamily = "Helvetica"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Output.CRF != 20 || loaded.Subtitles.FontFamily != "Helvetica" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
