// Package cmd provides the CLI commands for the resume retrieval
// service.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/resumeretrieval/pkg/version"
)

// NewRootCmd creates the root command for the resumeretrieval CLI.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:     "resumeretrieval",
		Short:   "Hybrid keyword/vector resume retrieval service",
		Version: version.Version,
	}
	root.SetVersionTemplate("resumeretrieval version {{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newVersionCmd())

	return root
}
