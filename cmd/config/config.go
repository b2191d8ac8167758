package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cverna/ddr/internal/config"
)

func ConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved ddr configuration",
		RunE:  runConfig,
	}
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %v", err)
	}

	fmt.Println("Vectors")
	fmt.Println("=======")
	fmt.Printf("path:   %s\n", orUnset(cfg.Vectors.Path))
	if cfg.Vectors.Dim == 0 {
		fmt.Println("dim:    (inferred from file)")
	} else {
		fmt.Printf("dim:    %d\n", cfg.Vectors.Dim)
	}
	fmt.Printf("policy: %s\n", orDefault(cfg.Vectors.Policy, "omit"))

	fmt.Println("\nVocabulary")
	fmt.Println("==========")
	if cfg.Vocab.Cap == 0 {
		fmt.Println("cap:            (unlimited)")
	} else {
		fmt.Printf("cap:            %d\n", cfg.Vocab.Cap)
	}
	fmt.Printf("keep stopwords: %v\n", cfg.Vocab.KeepStopwords)

	fmt.Println("\nSettings come from ~/.ddr.toml, overridden by DDR_VECTORS, DDR_DIM and DDR_POLICY.")
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def + " (default)"
	}
	return s
}
