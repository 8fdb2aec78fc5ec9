package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/LINBIT/mkiso/pkg/progressmode"
)

// defaultConfigTemplate contains a template for mkiso's default config file.
// It is intended to be used with a template.FuncMap which maps the "get" function
// to viper.Get, so the default values show up in the written file.
const defaultConfigTemplate = `[iso]
# adapter selects the tool used to build images. It is either the name of a
# bundled adapter (see 'mkiso adapters') or the path of an adapter definition
# file. When empty, the default adapter for this platform is used.
# Default value: "{{ get "iso.adapter" }}"
adapter = "{{ get "iso.adapter" }}"

# publisher is recorded in every image unless --publisher is given.
# Default value: "{{ get "iso.publisher" }}"
publisher = "{{ get "iso.publisher" }}"

# verbose asks the tool for verbose output.
# Default value: {{ get "iso.verbose" }}
verbose = {{ get "iso.verbose" }}

[time]
# timeout is how long a single image build may take before the tool is
# killed. "0s" disables the timeout.
# Default value: "{{ get "time.timeout" }}"
timeout = "{{ get "time.timeout" }}"

# stop_grace is how long the tool gets to exit after SIGTERM, on timeout or
# interrupt, before it is killed.
# Default value: "{{ get "time.stop_grace" }}"
stop_grace = "{{ get "time.stop_grace" }}"

[progress]
# mode controls progress bars. Can be 'auto', 'always' or 'never'. 'auto'
# draws bars only when stderr is a terminal.
# Default value: "{{ get "progress.mode" }}"
mode = "{{ get "progress.mode" }}"
`

func setConfigDefaults() {
	viper.SetDefault("iso.adapter", "")
	viper.SetDefault("iso.publisher", "")
	viper.SetDefault("iso.verbose", false)
	viper.SetDefault("time.timeout", "0s")
	viper.SetDefault("time.stop_grace", "5s")
	viper.SetDefault("progress.mode", string(progressmode.Auto))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigDefaults()

	viper.SetConfigType("toml")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		p := configPath()
		if err := os.MkdirAll(p, 0700); err != nil {
			log.Fatalf("Could not create directory %q: %v", p, err)
		}
		viper.AddConfigPath(p)
		viper.SetConfigName("mkiso")
	}

	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if isConfigNotFoundError(err) {
		newPath := cfgFile
		if newPath == "" {
			newPath = filepath.Join(configPath(), "mkiso.toml")
		}
		log.Debug("Config file does not exist, creating default: ", newPath)

		if err := writeDefaultConfig(newPath); err != nil {
			log.Warnf("Could not write default config file: %v", err)
			log.Warnf("Proceeding with default values")
		}
	} else {
		log.Fatalf("Could not read config file: %v", err)
	}

	viper.SetEnvPrefix("mkiso")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func isConfigNotFoundError(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}

	if pathErr, ok := err.(*os.PathError); ok && pathErr.Op == "open" {
		return true
	}

	return false
}

// writeDefaultConfig renders defaultConfigTemplate with the current viper
// values and writes it to path. The viper configuration is not modified.
func writeDefaultConfig(path string) error {
	f := template.FuncMap{
		"get": viper.Get,
	}
	tmpl := template.Must(template.New("config").Funcs(f).Parse(defaultConfigTemplate))

	defaultConfig := &bytes.Buffer{}
	if err := tmpl.Execute(defaultConfig, nil); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	if err := os.WriteFile(path, defaultConfig.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write default config file: %w", err)
	}
	return nil
}

func configPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := homedir.Dir()
		if err != nil {
			log.Fatal(err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "mkiso")
}

func getDefaultProgressMode() progressmode.ProgressMode {
	opt := viper.GetString("progress.mode")
	if opt == "" {
		return progressmode.Auto
	}

	var mode progressmode.ProgressMode
	if err := mode.UnmarshalText([]byte(opt)); err != nil {
		log.WithError(err).Fatal("invalid default progress mode")
	}

	return mode
}
