package cli

import (
	stdcontext "context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/procwick/internal/config"
	"github.com/Paintersrp/procwick/internal/platform"
)

var newPlatform = func() platform.Platform { return platform.New() }

// options holds the raw flag values. They only override the file and the
// environment when the flag was set explicitly.
type options struct {
	configPath  string
	envFile     string
	dog         int
	targets     []string
	delay       config.Duration
	tick        config.Duration
	logLevel    string
	logFile     string
	logFormat   string
	metricsAddr string
}

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *options) {
	opts := &options{
		delay: config.Of(config.DefaultVengeanceDelay),
		tick:  config.Of(config.DefaultTick),
	}

	root := &cobra.Command{
		Use:   "procwick --targets <pid>[,<pid>...] [--dog <pid>]",
		Short: "Terminate process trees once a guardian process dies",
		Long: `procwick watches a guardian process (the "dog", by default the parent of
procwick) and, once it is gone, terminates every target process together with
all of its descendants: a graceful signal first, then a forced one after the
vengeance delay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runWatch(cmd, cfg)
		},
	}

	flags := root.Flags()
	flags.IntVar(&opts.dog, "dog", 0, "pid of the guardian process (default: parent of procwick)")
	flags.StringArrayVar(&opts.targets, "targets", nil, "target pids, comma-separated or repeated")
	flags.Var(&opts.delay, "vengeance-delay", "grace period between graceful and forced signals (seconds or duration)")
	flags.Var(&opts.tick, "tick", "guardian poll interval (seconds or duration)")
	flags.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "log level: error, warn, info, debug or trace")
	flags.StringVar(&opts.logFile, "log-file", "", "also append logs to this file")
	flags.StringVar(&opts.logFormat, "log-format", config.DefaultLogFormat, "log format: auto, text or json")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics and /api/v1/status on this address")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load PROCWICK_* variables from a dotenv file")

	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newTreeCmd())
	root.AddCommand(newVersionCmd())

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, opts
}

// resolveConfig merges defaults, the config file, the environment and the
// explicitly set flags, in increasing order of precedence.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if opts.envFile != "" {
		if err := config.LoadEnvFile(opts.envFile); err != nil {
			return nil, err
		}
	}

	cfg := &config.Config{}
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dog") {
		cfg.Dog = opts.dog
	}
	if flags.Changed("targets") {
		pids, err := config.ParseTargets(opts.targets...)
		if err != nil {
			return nil, fmt.Errorf("--targets: %w", err)
		}
		cfg.Targets = pids
	}
	if flags.Changed("vengeance-delay") {
		cfg.VengeanceDelay = opts.delay
	}
	if flags.Changed("tick") {
		cfg.Tick = opts.tick
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
