package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/docker/go-units"
	"github.com/rodaine/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/LINBIT/mkiso/pkg/isoinfo"
)

func inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect image",
		Short: "Show the label and contents of an image",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			info, err := isoinfo.ReadFile(afero.NewOsFs(), args[0])
			if err != nil {
				log.WithError(err).Fatalf("failed to inspect %s", args[0])
			}
			printImageInfo(os.Stdout, info)
		},
	}
}

func printImageInfo(w io.Writer, info *isoinfo.Info) {
	fmt.Fprintf(w, "Label: %s\n", info.Label)
	fmt.Fprintf(w, "Total: %s in %d entries\n\n", units.HumanSize(float64(info.TotalSize())), len(info.Entries))

	t := table.New("Path", "Size").WithWriter(w)
	for _, e := range info.Entries {
		if e.Dir {
			t.AddRow(e.Path+"/", "-")
			continue
		}
		t.AddRow(e.Path, units.HumanSize(float64(e.Size)))
	}
	t.Print()
}
