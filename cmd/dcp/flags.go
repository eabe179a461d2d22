package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/dcp/internal/config"
	"github.com/bamsammich/dcp/internal/filter"
	"github.com/bamsammich/dcp/internal/units"
)

// sizeFlag is a pflag.Value accepting byte sizes such as 65536, 64K or 1MiB.
type sizeFlag struct {
	raw string
	n   int64
}

func (f *sizeFlag) String() string { return f.raw }
func (*sizeFlag) Type() string     { return "size" }

func (f *sizeFlag) Set(val string) error {
	n, err := units.ParseSize(val)
	if err != nil {
		return err
	}
	f.raw, f.n = val, n
	return nil
}

var (
	_ pflag.Value = (*sizeFlag)(nil)
	_ pflag.Value = (*filterFlag)(nil)
)

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// options holds every flag of the root command.
type options struct {
	buffer      sizeFlag
	overwrite   bool
	dryRun      bool
	showVersion bool
	quiet       bool
	preserve    bool
	verify      bool
	compare     string
	filterFile  string
	minSize     sizeFlag
	maxSize     sizeFlag
	bwLimit     sizeFlag
	verbose     bool
	logFile     string
	color       string
	writeConfig bool

	chain *filter.Chain
}

func newOptions() *options {
	return &options{chain: filter.NewChain(), compare: "hash", color: "auto"}
}

func (o *options) register(f *pflag.FlagSet) {
	f.BoolVarP(&o.showVersion, "version", "v", false, "print version and exit")
	f.VarP(&o.buffer, "buffer", "b", "buffer size for reads and writes, e.g. 65536, 64K, 1M (default: filesystem block size)")
	f.BoolVarP(&o.overwrite, "overwrite", "o", false, "overwrite existing files without prompting")
	f.BoolVarP(&o.dryRun, "dry-run", "d", false, "show what would be copied without writing")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "suppress all output except errors")
	f.BoolVarP(&o.preserve, "preserve", "p", false, "preserve mode bits and timestamps")
	f.BoolVar(&o.verify, "verify", false, "verify checksums after copy (BLAKE3)")
	f.StringVar(&o.compare, "compare", o.compare, "how existing files are compared: hash or bytes")
	f.Var(&filterFlag{chain: o.chain}, "exclude", "exclude files matching PATTERN (repeatable)")
	f.Var(&filterFlag{chain: o.chain, include: true}, "include", "include files matching PATTERN (repeatable)")
	f.StringVar(&o.filterFile, "filter", "", "read filter rules from FILE")
	f.Var(&o.minSize, "min-size", "skip files smaller than SIZE (e.g. 1M, 100K)")
	f.Var(&o.maxSize, "max-size", "skip files larger than SIZE (e.g. 1G, 500M)")
	f.Var(&o.bwLimit, "bwlimit", "bandwidth limit per second (e.g. 100M, 1G)")
	f.BoolVar(&o.verbose, "verbose", false, "verbose output and debug logging")
	f.StringVar(&o.logFile, "log", "", "write structured JSON log to FILE")
	f.StringVar(&o.color, "color", o.color, "colorize output: auto, always or never")
	f.BoolVar(&o.writeConfig, "write-config", false, "write the effective defaults to the config file and exit")
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI. Excludes from the file are appended after the CLI rules so
// the command line wins.
func (o *options) applyConfigDefaults(cmd *cobra.Command, cfg config.Config) error {
	changed := cmd.Flags().Changed
	d := cfg.Defaults

	if !changed("buffer") && d.Buffer != nil {
		if err := o.buffer.Set(*d.Buffer); err != nil {
			return fmt.Errorf("defaults.buffer: %w", err)
		}
	}
	if !changed("bwlimit") && d.BWLimit != nil {
		if err := o.bwLimit.Set(*d.BWLimit); err != nil {
			return fmt.Errorf("defaults.bwlimit: %w", err)
		}
	}
	if !changed("overwrite") && d.Overwrite != nil {
		o.overwrite = *d.Overwrite
	}
	if !changed("preserve") && d.Preserve != nil {
		o.preserve = *d.Preserve
	}
	if !changed("verify") && d.Verify != nil {
		o.verify = *d.Verify
	}
	if !changed("compare") && d.Compare != nil {
		o.compare = *d.Compare
	}
	if !changed("color") && cfg.Output.Color != nil {
		o.color = *cfg.Output.Color
	}
	for _, pat := range d.Exclude {
		if err := o.chain.AddExclude(pat); err != nil {
			return fmt.Errorf("defaults.exclude: %w", err)
		}
	}
	return nil
}

// buildFilter finishes the filter chain with the rule file and size bounds.
// It returns nil when nothing is filtered.
func (o *options) buildFilter() (*filter.Chain, error) {
	if o.filterFile != "" {
		if err := o.chain.LoadFile(o.filterFile); err != nil {
			return nil, fmt.Errorf("load filter file: %w", err)
		}
	}
	if err := o.chain.SetSizeRange(o.minSize.n, o.maxSize.n); err != nil {
		return nil, fmt.Errorf("invalid size range: %w", err)
	}
	if o.chain.Empty() {
		return nil, nil
	}
	return o.chain, nil
}

func (o *options) bufferSize() (int, error) {
	if o.buffer.n > math.MaxInt32 {
		return 0, fmt.Errorf("invalid --buffer: %s is too large", o.buffer.raw)
	}
	return int(o.buffer.n), nil
}

// effectiveConfig captures the current flag values as config defaults.
func (o *options) effectiveConfig() config.Config {
	cfg := config.Config{
		Defaults: config.DefaultsConfig{
			Overwrite: &o.overwrite,
			Preserve:  &o.preserve,
			Verify:    &o.verify,
			Compare:   &o.compare,
		},
		Output: config.OutputConfig{Color: &o.color},
	}
	if o.buffer.raw != "" {
		cfg.Defaults.Buffer = &o.buffer.raw
	}
	if o.bwLimit.raw != "" {
		cfg.Defaults.BWLimit = &o.bwLimit.raw
	}
	return cfg
}
