package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys are the settings the tool reads, keyed by viper name. Set
// rejects anything else so typos do not end up silently ignored in
// ~/.exfiles.yaml.
var configKeys = map[string]struct {
	kind  string // string, bool, or int
	usage string
}{
	"snapshot.path":        {"string", "location of the expression snapshot"},
	"report.log_transform": {"bool", "plot log10(1+TPM) instead of raw TPM"},
	"report.workers":       {"int", "comparison workers (0 = all CPUs)"},
}

func runConfig(args []string) int {
	cmd := newConfigCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newConfigCmd() *cobra.Command {
	long := "Show, get, or set configuration values. Config is stored in ~/.exfiles.yaml.\n\nKeys:"
	for _, k := range sortedConfigKeys() {
		long += fmt.Sprintf("\n  %-22s %s", k, configKeys[k].usage)
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage exfiles configuration",
		Long:  long,
		Example: `  exfiles config                         # show effective config
  exfiles config set snapshot.path /data/exfiles.duckdb
  exfiles config get report.log_transform`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

// sortedConfigKeys returns the known keys in stable display order.
func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseConfigValue validates key against the known settings and converts
// value to the key's type.
func parseConfigValue(key, value string) (any, error) {
	spec, ok := configKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key %q (known keys: %v)", key, sortedConfigKeys())
	}
	switch spec.kind {
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		return b, nil
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", key, value)
		}
		return n, nil
	default:
		return value, nil
	}
}

func runConfigShow() error {
	settings := make(map[string]any, len(configKeys))
	for key := range configKeys {
		if v := viper.Get(key); v != nil {
			settings[key] = v
		}
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	parsed, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}
	viper.Set(key, parsed)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".exfiles.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %v in %s\n", key, parsed, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	if _, ok := configKeys[key]; !ok {
		return fmt.Errorf("unknown config key %q (known keys: %v)", key, sortedConfigKeys())
	}
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}
