package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cverna/ddr/cmd/centers"
	"github.com/cverna/ddr/cmd/config"
	"github.com/cverna/ddr/cmd/explore"
	"github.com/cverna/ddr/cmd/neighbors"
	"github.com/cverna/ddr/cmd/query"
	"github.com/cverna/ddr/cmd/score"
	"github.com/cverna/ddr/cmd/train"
	"github.com/cverna/ddr/cmd/vocab"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ddr",
		Short: "ddr - Distributed dictionary representations for text corpora",
	}

	rootCmd.AddCommand(
		score.ScoreCmd(),
		vocab.VocabCmd(),
		centers.CentersCmd(),
		train.TrainCmd(),
		neighbors.NeighborsCmd(),
		query.QueryCmd(),
		explore.ExploreCmd(),
		config.ConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
