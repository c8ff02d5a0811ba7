package main

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the collections HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, _, err := newApplication(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Serve(cmd.Context())
	},
}
