package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxholm/foxholm/internal/processing"
	"github.com/foxholm/foxholm/internal/prompt"
	"github.com/foxholm/foxholm/internal/tool"
)

var promptSets []string

var promptCmd = &cobra.Command{
	Use:   "prompt <tool-id>",
	Short: "Print the prompt a tool would send",
	Long: `Build the provider prompt for a tool without calling the provider.

Examples:
  foxholm prompt upscale --set targetResolution=4x --set noiseReduction=20
  foxholm prompt headshot --set clothing=suit,business-casual`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := tool.DefaultRegistry()
		if err != nil {
			return err
		}
		cfg, err := registry.Lookup(args[0])
		if err != nil {
			return err
		}
		raw, err := parseSetFlags(cfg, promptSets)
		if err != nil {
			return err
		}

		// No gateway: Prompt never reaches the provider.
		p := processing.New(registry, prompt.New(), nil, processing.DefaultConfig())
		_, _, text, err := p.Prompt(cfg.ID, raw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringArrayVar(&promptSets, "set", nil, "option value as key=value (repeatable)")
}
