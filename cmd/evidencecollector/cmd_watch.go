package main

import (
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-collect configured targets on the scheduler interval",
	Long: `Runs every target from the config immediately and then once per
scheduler.interval, storing each result and sending its verdict to Telegram
when notifications are configured. Stops on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, _, err := newApplication(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Watch(cmd.Context())
	},
}
