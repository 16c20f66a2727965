package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vjjda/suttaworks/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "suttaworks",
	Short: "Hierarchy builder for the SuttaCentral corpus",
	Long: `suttaworks rebuilds the flat Hierarchy table of the SuttaCentral corpus from its
tree description files: one super-tree for the upper levels of the canon and one
tree file per book, reconciled against the suttaplex cards.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("suttaworks %s\n", version.String()))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
