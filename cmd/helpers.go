package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// checkError logs err and exits the process. It is the only place internal
// package errors are allowed to become a fatal exit: everything below cmd
// returns error values instead.
func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func getFlagString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	checkError(err)
	return v
}

func getFlagBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	checkError(err)
	return v
}

