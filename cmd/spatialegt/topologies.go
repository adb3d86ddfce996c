package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sydleither/spatial-egt/internal/registry"
)

var topologiesCmd = &cobra.Command{
	Use:   "topologies",
	Short: "List topology selectors",
	Long:  `Display every topology selector accepted by run and watch.`,
	Run:   runTopologies,
}

func runTopologies(_ *cobra.Command, _ []string) {
	topologies := registry.List()

	fmt.Println("Topologies:")
	fmt.Println()

	for _, t := range topologies {
		fmt.Printf("  %-4s %s\n", t.ID, t.Title)
	}

	fmt.Println()
	fmt.Println("Use 'spatialegt run <expDir> <expName> <dimension> <rep>' to run one.")
}
