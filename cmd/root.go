package cmd

import (
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/spf13/cobra"
)

var defaultLogLevel = log.InfoLevel.String()

var cfgFile string
var logLevel string

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mkiso",
		Short: "mkiso turns directories into ISO 9660 images",
		Long: `mkiso turns directories into ISO 9660 images. The image is built by the
tool the platform ships with (hdiutil on macOS, mkisofs on Linux) or by any
other tool described in an adapter definition file.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				log.Fatal(err)
			}
			log.SetLevel(level)
		},
	}

	configName := filepath.Join(configPath(), "mkiso.toml")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is %v)", configName))
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", defaultLogLevel, "Log level")

	rootCmd.AddCommand(createCommand())
	rootCmd.AddCommand(adaptersCommand())
	rootCmd.AddCommand(inspectCommand())
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	cobra.OnInitialize(initConfig)

	if err := rootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
