package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foxholm/foxholm/internal/locale"
	"github.com/foxholm/foxholm/internal/output"
	"github.com/foxholm/foxholm/internal/tool"
)

var (
	toolsFormat string
	toolsLang   string
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available image tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, formatter, err := toolsSetup()
		if err != nil {
			return err
		}
		lang := locale.Match(toolsLang, "")
		configs := make([]*tool.ToolConfig, 0, len(registry.IDs()))
		for _, id := range registry.IDs() {
			cfg, _ := registry.Localized(id, lang)
			configs = append(configs, cfg)
		}
		rendered, err := formatter.FormatTools(configs)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

var toolsShowCmd = &cobra.Command{
	Use:   "show <tool-id>",
	Short: "Show the form fields of one tool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, formatter, err := toolsSetup()
		if err != nil {
			return err
		}
		found, err := registry.Lookup(args[0])
		if err != nil {
			return err
		}
		cfg, _ := registry.Localized(found.ID, locale.Match(toolsLang, ""))
		rendered, err := formatter.FormatTool(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func toolsSetup() (*tool.Registry, output.Formatter, error) {
	format, err := output.ParseFormat(toolsFormat)
	if err != nil {
		return nil, nil, err
	}
	registry, err := tool.DefaultRegistry()
	if err != nil {
		return nil, nil, err
	}
	return registry, output.NewFormatter(format), nil
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsShowCmd)

	toolsCmd.PersistentFlags().StringVarP(&toolsFormat, "output", "o", "table", "output format: table, json, markdown")
	toolsCmd.PersistentFlags().StringVar(&toolsLang, "lang", "en", "display language: en, es, fr")
}
