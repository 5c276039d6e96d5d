package main

import (
	"fmt"
	"os"

	"github.com/mittwald/mittcheck/cmd"
	"github.com/spf13/cobra"
)

var (
	apiAddress string
)

// exitError carries the exit status of a command that completed, but whose
// result should be signalled to the caller (e.g. an unhealthy report).
type exitError int

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func init() {
	ctlCommand.PersistentFlags().StringVarP(&apiAddress, "api-address", "", cmd.DefaultAPIAddress, "address of the mittcheck probe server; use unix:///path/to.sock for a unix socket")
	ctlCommand.AddCommand(cmd.VersionCmd)
}

var ctlCommand = &cobra.Command{
	Use:           "mittcheckctl",
	Short:         "query a running mittcheck from cli",
	Long:          "This command can be used to query the probe server of a running `mittcheck serve` by command line.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() {
	err := ctlCommand.Execute()
	if code, ok := err.(exitError); ok {
		os.Exit(int(code))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}
