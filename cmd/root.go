package cmd

import (
	"fmt"
	"log"
	"os"

	"TingFM/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tingfm",
	Short: "TingFM is a group listening room service.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting TingFM server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
