// cmd/gopf/root.go
package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"
)

var (
	caseFile   string
	cfgFile    string
	dispatcher bool
)

var rootCmd = &cobra.Command{
	Use:   "gopf",
	Short: "Steady-state power-flow and economic-dispatch engine",
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			io.Pfred("ERROR: %v\n", r)
			os.Exit(1)
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		chk.Panic("%v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&caseFile, "case", "", "path to a JSON case file (required)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML solver configuration")
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(dispatchCmd)
}
