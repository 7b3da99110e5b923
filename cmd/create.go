package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var longURLFlag string

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a short link for a long URL",
	Long: `Stores the URL under a freshly generated short code and prints it.

Example:
  shortlink create --url="https://www.google.com/search?q=go+lang"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		link, err := a.Registry().Create(cmd.Context(), longURLFlag)
		if err != nil {
			return fmt.Errorf("failed to create short link: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Code: %s\n", link.ShortCode)
		fmt.Fprintf(out, "Short URL: %s/%s\n", cfg.GetBaseURL(), link.ShortCode)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&longURLFlag, "url", "u", "", "long URL to shorten (required)")
	_ = createCmd.MarkFlagRequired("url")
}
