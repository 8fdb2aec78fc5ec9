package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/LINBIT/mkiso/cmd.version=...".
var (
	version   string
	builddate string
	githash   string
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information of mkiso",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if version == "" {
				version = "DEV"
			}
			if builddate == "" {
				builddate = "DEV"
			}
			if githash == "" {
				githash = "DEV"
			}
			fmt.Printf("mkiso version %s\n", version)
			fmt.Printf("Built at %s\n", builddate)
			fmt.Printf("Version control hash: %s\n", githash)
		},
	}
}
