// Package cli exposes a parameter class as a cobra command.
//
// Every field with documentation becomes a flag named by FlagName, or a
// positional argument when the field is marked positional. Fields without
// documentation stay off the command line.
package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	params "github.com/kpe/go-params"
	"github.com/kpe/go-params/codec"
)

// RunFunc receives the instance resolved from the command line.
type RunFunc func(cmd *cobra.Command, p *params.Params) error

// Option configures NewCommand and Parse.
type Option func(*config)

type config struct {
	use   string
	short string
	viper *viper.Viper
	out   io.Writer
}

// WithUse sets the command name shown in usage. Defaults to FlagName of the
// class name.
func WithUse(use string) Option { return func(c *config) { c.use = use } }

// WithShort sets the short description of the command.
func WithShort(short string) Option { return func(c *config) { c.short = short } }

// WithViper binds every flag into v and resolves values through it, so the
// precedence becomes flag > environment > config file > class default.
func WithViper(v *viper.Viper) Option { return func(c *config) { c.viper = v } }

// WithOutput sets the writer for help and usage output.
func WithOutput(w io.Writer) Option { return func(c *config) { c.out = w } }

// FlagName turns a field name into a flag name: lower case, with '_', '.' and
// spaces replaced by '-'.
func FlagName(field string) string {
	return strings.NewReplacer("_", "-", ".", "-", " ", "-").Replace(strings.ToLower(field))
}

type binding struct {
	spec *params.Spec
	flag string
	val  *value
}

// NewCommand builds a command whose flags and positional arguments mirror the
// documented stored fields of c. run is called with the resolved instance.
func NewCommand(c *params.Class, run RunFunc, opts ...Option) *cobra.Command {
	cfg := config{use: FlagName(c.Name())}
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		flags       []binding
		positionals []*params.Spec
		minArgs     int
		use         = []string{cfg.use}
	)
	for _, f := range c.Fields() {
		if f.Doc == "" || f.IsDerived() {
			continue
		}
		if f.Positional {
			positionals = append(positionals, f)
			if required(f) {
				minArgs = len(positionals)
				use = append(use, "<"+FlagName(f.Name)+">")
			} else {
				use = append(use, "["+FlagName(f.Name)+"]")
			}
			continue
		}
		flags = append(flags, binding{spec: f, flag: FlagName(f.Name), val: newValue(f)})
	}
	if len(flags) > 0 {
		use = append(use, "[flags]")
	}

	cmd := &cobra.Command{
		Use:           strings.Join(use, " "),
		Short:         cfg.short,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.RangeArgs(minArgs, len(positionals))(cmd, args); err != nil {
				return &ArgumentError{Err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolve(c, cfg, cmd, flags, positionals, args)
			if err != nil {
				return err
			}
			return run(cmd, p)
		},
	}
	if cfg.out != nil {
		cmd.SetOut(cfg.out)
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ArgumentError{Err: err}
	})

	fs := cmd.Flags()
	for _, b := range flags {
		fs.Var(b.val, b.flag, b.spec.Doc)
		if cfg.viper != nil {
			_ = cfg.viper.BindPFlag(b.spec.Name, fs.Lookup(b.flag))
			continue
		}
		if b.spec.Required {
			_ = cmd.MarkFlagRequired(b.flag)
		}
	}
	return cmd
}

// required reports whether a positional field must be given.
func required(f *params.Spec) bool { return f.Required || f.Default == nil }

func resolve(c *params.Class, cfg config, cmd *cobra.Command, flags []binding, positionals []*params.Spec, args []string) (*params.Params, error) {
	var pairs params.Pairs
	for i, arg := range args {
		f := positionals[i]
		v, err := f.Type.Parse(arg)
		if err != nil {
			return nil, &ArgumentError{Arg: FlagName(f.Name), Err: err}
		}
		pairs = append(pairs, params.KV(f.Name, v))
	}

	if cfg.viper == nil {
		var explicit params.Pairs
		for _, b := range flags {
			if cmd.Flags().Changed(b.flag) {
				explicit = append(explicit, params.KV(b.spec.Name, b.val.v))
			}
		}
		return c.From(explicit, pairs...)
	}

	for _, b := range flags {
		if b.spec.Required && !cmd.Flags().Changed(b.flag) && !cfg.viper.IsSet(b.spec.Name) {
			return nil, &ArgumentError{Arg: "--" + b.flag, Err: errors.New("required flag not set")}
		}
	}
	p, err := codec.FromViper(c, cfg.viper, params.UnknownStrip)
	if err != nil {
		return nil, &ArgumentError{Err: err}
	}
	if err := p.Update(nil, pairs...); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse resolves args against c without running anything. Help requests
// return pflag.ErrHelp.
func Parse(c *params.Class, args []string, opts ...Option) (*params.Params, error) {
	var out *params.Params
	cmd := NewCommand(c, func(_ *cobra.Command, p *params.Params) error {
		out = p
		return nil
	}, opts...)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var ae *ArgumentError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, &ArgumentError{Err: err}
	}
	if out == nil {
		return nil, pflag.ErrHelp
	}
	return out, nil
}

// Usage returns the help text of the command generated for c.
func Usage(c *params.Class, opts ...Option) string {
	cmd := NewCommand(c, func(*cobra.Command, *params.Params) error { return nil }, opts...)
	return cmd.UsageString()
}
