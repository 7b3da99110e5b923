package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var shortCodeFlag string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the target and click count of a short link",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		link, err := a.Registry().Stats(cmd.Context(), shortCodeFlag)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Code: %s\n", link.ShortCode)
		fmt.Fprintf(out, "Long URL: %s\n", link.LongURL)
		fmt.Fprintf(out, "Created: %s\n", link.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(out, "Clicks: %d\n", link.ClickCount)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&shortCodeFlag, "code", "k", "", "short code to look up (required)")
	_ = statsCmd.MarkFlagRequired("code")
}
