package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys lists the keys hmmannot reads, in display order.
var configKeys = []string{"parse.allow_ambiguity", "workdir", "workers", "store.path"}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change hmmannot settings",
		Long: `Without a subcommand, print the effective settings as YAML. Settings live in
~/.hmmannot.yaml; HMMANNOT_* environment variables take precedence.

Keys:
  parse.allow_ambiguity  accept IUPAC ambiguity codes (default true)
  workdir                work directory for clean and export
  workers                parallel workers for clean (0 = one per CPU)
  store.path             annotation index database`,
		Example: `  hmmannot config
  hmmannot config set parse.allow_ambiguity false
  hmmannot config get store.path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting in ~/.hmmannot.yaml",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfig(cmd.OutOrStdout(), args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			val := viper.Get(args[0])
			if val == nil {
				return fmt.Errorf("%s: not set", args[0])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), val)
			return err
		},
	})

	return cmd
}

func showConfig(w io.Writer) error {
	settings := make(map[string]any, len(configKeys))
	for _, k := range configKeys {
		settings[k] = viper.Get(k)
	}
	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	src := viper.ConfigFileUsed()
	if src == "" {
		src = "defaults (no ~/.hmmannot.yaml)"
	}
	fmt.Fprintf(w, "# %s\n", src)
	_, err = w.Write(out)
	return err
}

// configValue converts a command-line value to the type stored in YAML.
func configValue(value string) any {
	switch value {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}

func setConfig(w io.Writer, key, value string) error {
	if !slices.Contains(configKeys, key) {
		return usageError{fmt.Errorf("unknown setting %q", key)}
	}
	viper.Set(key, configValue(value))

	path := viper.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}
		path = filepath.Join(home, ".hmmannot.yaml")
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(w, "%s = %v (%s)\n", key, configValue(value), path)
	return nil
}
