// Package cmd wires the pennos binary's subcommands: mkfs (format a
// FAT image), run (boot the kernel and scheduler against one), and
// the one-shot file utilities of spec.md §4.7 (ls, touch, rm, chmod,
// mv, cp, cat, hd).
package cmd

import (
	"fmt"
	"os"

	"github.com/go-pennos/pennos/cfg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error

	// Config is the fully resolved configuration for the current
	// invocation, populated by initConfig before any subcommand runs.
	Config cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "pennos",
	Short: "A user-space process and file system simulator",
	Long: `pennos simulates a small multiprocessing kernel and a FAT-style
file system on top of a single disk image file. Use "pennos mkfs" to
format an image, then "pennos run" to boot the kernel against it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		return cfg.ValidateConfig(&Config)
	},
}

// Execute runs the root command, exiting the process on error the way
// every cobra-based CLI in the example pack does.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(mkfsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fsutilCmd)
}

func initConfig() {
	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&Config, cfg.DecodeHook())
		return
	}

	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("reading config file: %w", err)
		return
	}
	unmarshalErr = viper.Unmarshal(&Config, cfg.DecodeHook())
}
