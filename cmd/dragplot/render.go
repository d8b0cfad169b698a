package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/dragplot/pkg/chart"
	"github.com/recera/dragplot/pkg/renderer/svg"
	"github.com/recera/dragplot/pkg/scheduler"
)

func newRenderCommand(cfgPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the chart to SVG once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}

			sched := scheduler.New(nil)
			c := chart.New("chart", cfg.SeriesData(), cfg.ChartOptions(), sched)
			sched.Flush()

			w := os.Stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return svg.Render(w, c.Root())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
