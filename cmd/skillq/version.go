package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillq/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info, err := version.Get().JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), info)
		return nil
	},
}
