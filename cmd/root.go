package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/premtools/unpack/prem"
)

var (
	cfgFile string
	// Verbose enables debug logging
	Verbose bool
	// AppVersion is set at build time
	AppVersion = "dev"
)

// rootCmd unpacks a single resource when called without a subcommand
var rootCmd = &cobra.Command{
	Use:           "prem-unpack [INPUT]",
	Short:         "Prehistorik Man compressed resource unpacker",
	Long:          "Decompress a Prehistorik Man resource. INPUT and --output default to standard input and output; - selects them explicitly.",
	Args:          cobra.MaximumNArgs(1),
	Version:       AppVersion,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		input := "-"
		if len(args) == 1 {
			input = args[0]
		}
		return unpackOne(input, viper.GetString("unpack.output"))
	},
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err.Error())
		stop()
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihandler.Default)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/prem/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.Flags().StringP("output", "o", "-", "Output file, or - to use standard output")
	rootCmd.MarkFlagFilename("output")
	viper.BindPFlag("unpack.output", rootCmd.Flags().Lookup("output"))

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "prem"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("prem")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

func unpackOne(input, output string) error {
	r, closeIn, err := openInput(input)
	if err != nil {
		return err
	}
	defer closeIn()

	out, stats, err := prem.DecompressWithStats(r)
	if err != nil {
		return fmt.Errorf("failed to decompress %s: %w", displayName(input), err)
	}
	log.WithFields(log.Fields{
		"literals": stats.Literals,
		"refs":     stats.BackRefs,
		"read":     humanize.Bytes(uint64(stats.Consumed)),
	}).Debug("Decoded")

	if err := writeOutput(output, out); err != nil {
		return err
	}
	if output != "-" {
		log.WithFields(log.Fields{
			"output": output,
			"size":   humanize.Bytes(uint64(len(out))),
		}).Info("Unpacked")
	}
	return nil
}
