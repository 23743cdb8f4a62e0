package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foxholm/foxholm/internal/imaging"
	"github.com/foxholm/foxholm/internal/observability"
	"github.com/foxholm/foxholm/internal/output"
	"github.com/foxholm/foxholm/internal/processing"
)

var (
	processImage  string
	processSets   []string
	processOut    string
	processFormat string
)

var processCmd = &cobra.Command{
	Use:   "process <tool-id>",
	Short: "Run one image through a tool",
	Long: `Send a local image through a tool using the configured provider.

Examples:
  foxholm process upscale --image photo.jpg --set targetResolution=2x
  foxholm process restore --image old.png --set colorization=colorize --out restored.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(processFormat)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := newProcessor(cfg)
		if err != nil {
			return err
		}

		toolCfg, err := p.Registry().Lookup(args[0])
		if err != nil {
			return err
		}
		raw, err := parseSetFlags(toolCfg, processSets)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(processImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		dataURL := imaging.EncodeDataURL(data, http.DetectContentType(data))

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		result, err := p.Process(ctx, processing.Request{ToolID: toolCfg.ID, ImageData: dataURL, Options: raw})
		if err != nil {
			return err
		}

		if processOut != "" {
			if err := saveOutput(processOut, result.ProcessedImage); err != nil {
				return err
			}
			observability.CLILogger.Info("Saved processed image", zap.String("path", processOut))
		}

		// The source image is already on disk; keep it out of the output.
		result.OriginalImage = ""
		rendered, err := output.NewFormatter(format).FormatResult(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

// saveOutput writes a data URL result to path. Remote results are URLs the
// provider hosts and cannot be saved without downloading them.
func saveOutput(path, ref string) error {
	if !strings.HasPrefix(ref, "data:") {
		return fmt.Errorf("provider returned a URL, not image data: %s", ref)
	}
	data, _, err := imaging.DecodeDataURL(ref)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVarP(&processImage, "image", "i", "", "path of the image to process")
	processCmd.Flags().StringArrayVar(&processSets, "set", nil, "option value as key=value (repeatable)")
	processCmd.Flags().StringVar(&processOut, "out", "", "write the processed image to this file")
	processCmd.Flags().StringVarP(&processFormat, "output", "o", "table", "output format: table, json, markdown")
	_ = processCmd.MarkFlagRequired("image")
}
