package cmd

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/rodaine/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LINBIT/mkiso/internal/mkiso"
)

const systemRegistryFile = "/etc/mkiso/adapters.toml"

// adapterRegistry returns the registry of the system wide and the per user
// adapters file. The user file takes precedence.
func adapterRegistry() *mkiso.Registry {
	return mkiso.NewRegistry(systemRegistryFile, filepath.Join(configPath(), "adapters.toml"))
}

func adaptersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List available adapters",
		Long: `List the adapters compiled into mkiso and those defined in the adapter
registry files (` + systemRegistryFile + ` and adapters.toml in the config
directory), the command each one runs, where that command was found and which
adapter is the default on this platform.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			err := printAdapters(context.Background(), os.Stdout, adapterRegistry(), runtime.GOOS, exec.LookPath)
			if err != nil {
				log.Fatal(err)
			}
		},
	}
}

func printAdapters(ctx context.Context, w io.Writer, reg *mkiso.Registry, platform string, lookPath func(string) (string, error)) error {
	defaultName, _ := mkiso.DefaultAdapterName(platform)

	t := table.New("Name", "Source", "Command", "Path", "Default").WithWriter(w)
	addRow := func(name, source, command string) {
		path, err := lookPath(command)
		if err != nil {
			path = "not found"
		}

		isDefault := ""
		if name == defaultName {
			isDefault = "yes"
		}
		t.AddRow(name, source, command, path, isDefault)
	}

	for _, name := range mkiso.Bundled() {
		f, err := mkiso.Resolve(ctx, name)
		if err != nil {
			return err
		}
		addRow(name, "bundled", f().Command())
	}

	defs, err := reg.List(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if mkiso.IsBundled(name) {
			log.Warnf("adapter registry entry '%s' is shadowed by the bundled adapter", name)
			continue
		}
		addRow(name, "registry", defs[name].Command)
	}

	t.Print()
	return nil
}

func suggestAdapterNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := mkiso.Bundled()
	registered, err := adapterRegistry().Names(context.Background())
	if err == nil {
		names = append(names, registered...)
	}
	return names, cobra.ShellCompDirectiveDefault
}
