// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docflow/internal/convert"
	"github.com/pdiddy/docflow/internal/history"
	"github.com/pdiddy/docflow/pkg/types"
)

// defaultTimeout matches the kill timer LibreOffice conversions have always
// run under.
const defaultTimeout = 90 * time.Second

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", string(types.BackendSoffice))
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("soffice.path", "")
	v.SetDefault("container.image", convert.DefaultImage)
	v.SetDefault("gotenberg.url", "")
	v.SetDefault("gotenberg.max_retries", 5)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", history.DefaultPath())
}

// InitConfig loads configuration into the global viper instance. An
// explicit cfgFile wins; otherwise docflow.yaml is looked up in the working
// directory and ~/.config/docflow. Environment variables use the DOCFLOW_
// prefix (DOCFLOW_SOFFICE_PATH, DOCFLOW_HISTORY_ENABLED, ...); SOFFICE_PATH
// is honoured as well. Missing config files are not an error.
func InitConfig(cfgFile string) error {
	return initConfig(viper.GetViper(), cfgFile)
}

func initConfig(v *viper.Viper, cfgFile string) error {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "docflow"))
		}
	}

	v.SetEnvPrefix("DOCFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("soffice.path", "DOCFLOW_SOFFICE_PATH", "SOFFICE_PATH"); err != nil {
		return err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}

// loadConfig decodes the global configuration and applies per-command flag
// overrides.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	return decodeConfig(viper.GetViper(), cmd)
}

func decodeConfig(v *viper.Viper, cmd *cobra.Command) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		b, _ := flags.GetString("backend")
		cfg.Backend = types.ConversionBackend(b)
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("soffice") {
		cfg.Soffice.Path, _ = flags.GetString("soffice")
	}
	if flags.Changed("history") {
		cfg.History.Enabled, _ = flags.GetBool("history")
	}
	return cfg, nil
}

// addConfigFlag registers --config on a root command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "config file (default: ./docflow.yaml or ~/.config/docflow/docflow.yaml)")
}

// configPreRun loads configuration. It is installed as PersistentPreRunE
// so it runs after argument validation.
func configPreRun(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	return InitConfig(cfgFile)
}

// addBackendFlags registers the flags shared by every converting command.
func addBackendFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", string(types.BackendSoffice), "conversion backend: soffice, container, or gotenberg")
	cmd.Flags().Duration("timeout", defaultTimeout, "maximum time per conversion (0 disables)")
	cmd.Flags().String("soffice", "", "path to the soffice binary (default: search PATH)")
	cmd.Flags().Bool("history", false, "record the job in the history journal")
}
