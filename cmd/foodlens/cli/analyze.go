package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/foodlens/internal/report"
)

func NewAnalyzeCommand() *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Identify the food in an image file and print its nutrition facts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			render := report.FormatText
			if asHTML {
				render = report.Format
			}

			a, err := newApp(cfg, render)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.pipeline.ProcessFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Print the report as an HTML table")

	return cmd
}
