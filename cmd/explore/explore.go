package explore

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cverna/ddr/pkg/report"
)

func ExploreCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse a similarity matrix in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := report.LoadSimilarity(path)
			if err != nil {
				return err
			}
			p := tea.NewProgram(initialModel(table), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running explorer: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "similarities", "s", "similarities.csv", "similarity CSV to browse")
	return cmd
}
