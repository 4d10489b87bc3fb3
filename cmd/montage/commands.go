package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"montage/internal/compose"
	"montage/internal/ffmpeg"
	"montage/internal/tempfile"
	"montage/pkg/timefmt"
)

var outputPath string

func init() {
	for _, cmd := range []*cobra.Command{composeCmd, concatCmd, slideshowCmd} {
		cmd.Flags().StringVarP(&outputPath, "output", "o", "output.mp4", "output file path")
	}
}

var composeCmd = &cobra.Command{
	Use:   "compose <request.yaml>",
	Short: "Render a single composition request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req compose.Request
		if err := loadRequest(args[0], &req); err != nil {
			return err
		}
		return run(cmd.Context(), func(ctx context.Context, engine *compose.Engine) (*compose.Result, error) {
			return engine.Compose(ctx, req)
		})
	},
}

var concatCmd = &cobra.Command{
	Use:   "concat <request.yaml>",
	Short: "Concatenate multiple clips into one video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req compose.ConcatRequest
		if err := loadRequest(args[0], &req); err != nil {
			return err
		}
		return run(cmd.Context(), func(ctx context.Context, engine *compose.Engine) (*compose.Result, error) {
			return engine.Concat(ctx, req)
		})
	},
}

var slideshowCmd = &cobra.Command{
	Use:   "slideshow <request.yaml>",
	Short: "Render an image sequence into a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req compose.SlideshowRequest
		if err := loadRequest(args[0], &req); err != nil {
			return err
		}
		return run(cmd.Context(), func(ctx context.Context, engine *compose.Engine) (*compose.Result, error) {
			return engine.Slideshow(ctx, req)
		})
	},
}

// run wires up the engine, executes one request, writes the result buffer,
// and always cleans up intermediate files.
func run(ctx context.Context, render func(context.Context, *compose.Engine) (*compose.Result, error)) error {
	exec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads)
	if err != nil {
		return err
	}

	temps := tempfile.NewManager(cfg.TempDir)
	defer temps.CleanupAll()

	engine := compose.NewEngine(logger, exec, temps, cfg)

	result, err := render(ctx, engine)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, result.Data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Info().
		Str("output", outputPath).
		Str("duration", timefmt.Clock(result.Duration)).
		Int("width", result.Width).
		Int("height", result.Height).
		Msg("done")
	return nil
}

func loadRequest(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read request file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse request file: %w", err)
	}
	return nil
}
