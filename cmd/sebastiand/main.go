package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bankborjam/sebastian/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sebastiand",
		Short: "Sebastián banking assistant daemon",
		Long:  "Sebastián daemon for running the assistant API server and managing the document index",
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.IndexCmd())
	rootCmd.AddCommand(cli.InspectCmd())

	cli.AddHelpJSONFlag(rootCmd)
	cli.CheckHelpJSON(rootCmd)

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
