package main

import (
	"fmt"
	"log/slog"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	params "github.com/kpe/go-params"
	"github.com/kpe/go-params/cli"
	"github.com/kpe/go-params/codec"
)

type rootOptions struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	root := &cobra.Command{
		Use:   "paramsctl",
		Short: "Resolve, convert and document training-run parameters",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd, opts.verbose)
			return initConfig(opts)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (yaml or json)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newRunCmd(opts), newSchemaCmd(), newConvertCmd(), newValidateCmd())
	return root
}

// initConfig layers the config file and PARAMSCTL_* environment variables
// under the command-line flags.
func initConfig(opts *rootOptions) error {
	opts.v.SetEnvPrefix("paramsctl")
	opts.v.AutomaticEnv()
	if opts.cfgFile == "" {
		return nil
	}
	opts.v.SetConfigFile(opts.cfgFile)
	if err := opts.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	slog.Debug("using config file", "file", opts.v.ConfigFileUsed())
	return nil
}

func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := cli.NewCommand(trainParams, func(cmd *cobra.Command, p *params.Params) error {
		f, err := formatByName(format)
		if err != nil {
			return err
		}
		slog.Debug("resolved parameters", "class", p.Class().Name(), "output_dir", p.Value("output_dir"))
		b, err := codec.Marshal(p, f)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
		cli.WithUse("run"),
		cli.WithShort("Print the parameters resolved from flags, environment and config"),
		cli.WithViper(opts.v),
	)
	// errors surface through the root command
	cmd.SilenceErrors = false
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, yaml")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the training parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := trainParams.JSONSchema()
			if err != nil {
				return err
			}
			b, err := j.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}

func newConvertCmd() *cobra.Command {
	var strip bool
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a parameter file between JSON and YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			policy := params.UnknownStrict
			if strip {
				policy = params.UnknownStrip
			}
			p, err := codec.ReadFile(trainParams, args[0], policy)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("cannot read %s", args[0])
			}
			if !codec.WriteFile(p, args[1]) {
				return fmt.Errorf("cannot write %s", args[1])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strip, "strip", false, "drop unknown keys instead of failing")
	return cmd
}

func formatByName(name string) (codec.Format, error) {
	switch name {
	case "json":
		return codec.JSON, nil
	case "yaml":
		return codec.YAML, nil
	}
	return nil, fmt.Errorf("invalid format: %s (valid: json, yaml)", name)
}
