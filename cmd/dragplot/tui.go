package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/dragplot/pkg/chart"
	"github.com/recera/dragplot/pkg/termchart"
)

func newTuiCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the chart in the terminal",
		Long: `Renders the chart as a braille canvas in the terminal. Points are
dragged with the mouse, cell by cell, through the same pipeline the
browser host uses.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			dragOpts, err := cfg.DragOptions()
			if err != nil {
				return err
			}

			opts := &termchart.Options{
				Axis:  dragOpts.Axis,
				Title: "dragplot",
			}
			if r := cfg.Chart.XRange; r != nil {
				opts.XRange = &chart.Range{Min: r.Min, Max: r.Max}
			}
			if r := cfg.Chart.YRange; r != nil {
				opts.YRange = &chart.Range{Min: r.Min, Max: r.Max}
			}

			m := termchart.New(cfg.SeriesData(), opts)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}
}
