package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/scylladb/go-set/strset"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/stuartcarnie/siteprov"
	"github.com/stuartcarnie/siteprov/config"
	"github.com/stuartcarnie/siteprov/console"
	"github.com/stuartcarnie/siteprov/files"
	"github.com/stuartcarnie/siteprov/logger"
	"github.com/stuartcarnie/siteprov/process"
	"github.com/stuartcarnie/siteprov/prompt"
)

// errStepsFailed is returned when the run completed but some steps did
// not. The summary has already been printed.
var errStepsFailed = errors.New("provisioning did not complete")

var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

func initLogger(color bool) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = logLevel
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.CallerKey = ""
	if color {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(log)
}

var (
	rootOpt = struct {
		Configuration string
		Project       string
		DryRun        bool
		FailFast      bool
		BestEffort    bool
		Skip          []string
		LogFile       string
		NoColor       bool
		Debug         bool
	}{}

	rootCmd = cobra.Command{
		Use:           "siteprov",
		Short:         "Provision a Debian host to serve a Django application",
		Version:       siteprov.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(useColor(os.Stderr))
			if rootOpt.Debug {
				logLevel.SetLevel(zap.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd.Context())
		},
	}

	renderOpt = struct {
		Out string
	}{}

	renderCmd = cobra.Command{
		Use:   "render",
		Short: "Write the generated files to a directory without running any command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender()
		},
	}

	planCmd = cobra.Command{
		Use:   "plan",
		Short: "Show the provisioning steps and their dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printPlan(cmd.OutOrStdout())
		},
	}
)

func init() {
	pflags := rootCmd.PersistentFlags()
	pflags.StringVarP(&rootOpt.Configuration, "config", "c", "", "Configuration file (.cue, .yaml or .json)")
	pflags.StringVar(&rootOpt.Project, "project", "", "Django project directory (default: current directory)")
	pflags.BoolVar(&rootOpt.NoColor, "no-color", false, "Disable colored output")
	pflags.BoolVar(&rootOpt.Debug, "debug", false, "Log every command start and exit")

	flags := rootCmd.Flags()
	flags.BoolVar(&rootOpt.DryRun, "dry-run", false, "Print the commands instead of running them")
	flags.BoolVar(&rootOpt.FailFast, "fail-fast", false, "Stop at the first failed step")
	flags.BoolVar(&rootOpt.BestEffort, "best-effort", false, "Run steps even when a step they depend on failed")
	flags.StringSliceVar(&rootOpt.Skip, "skip", nil, "Steps not to run")
	flags.StringVar(&rootOpt.LogFile, "log-file", "", "Write command output to this file (comma separated; /dev/stdout and /dev/stderr allowed)")

	renderCmd.Flags().StringVar(&renderOpt.Out, "out", "", "Output directory")
	_ = renderCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(&renderCmd)
	rootCmd.AddCommand(&planCmd)
}

func useColor(f *os.File) bool {
	if rootOpt.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func loadConfig() (*config.Config, error) {
	cfg := config.New()
	if rootOpt.Configuration != "" {
		var err error
		if cfg, err = config.Load(rootOpt.Configuration); err != nil {
			return nil, err
		}
	}
	if rootOpt.Project != "" {
		abs, err := filepath.Abs(rootOpt.Project)
		if err != nil {
			return nil, err
		}
		cfg.Project = abs
	}
	return cfg, nil
}

func newProvisioner(cfg *config.Config, r process.Runner, opts siteprov.Options) *siteprov.Provisioner {
	con := console.NewTerminal(os.Stdout, useColor(os.Stdout))
	return siteprov.New(cfg, con, r, prompt.New(os.Stdin, os.Stdout), opts)
}

func runProvision(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := siteprov.Options{
		DryRun:     rootOpt.DryRun,
		FailFast:   rootOpt.FailFast,
		BestEffort: rootOpt.BestEffort,
	}
	if len(rootOpt.Skip) > 0 {
		opts.Skip = strset.New(rootOpt.Skip...)
	}

	transcript := logger.NewNullLogger()
	if rootOpt.LogFile != "" {
		if transcript, err = logger.New(rootOpt.LogFile, logger.DefaultMaxBytes, logger.DefaultBackups); err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
	}
	defer transcript.Close()

	p := newProvisioner(cfg, process.NewExecRunner(transcript), opts)
	if rootOpt.DryRun {
		p.Runner = &process.DryRunner{}
		p.Files = files.NewWriter(afero.NewMemMapFs(), nil)
	}
	sum, err := p.Run(ctx)
	if err != nil {
		return err
	}
	if sum.Failed() {
		zap.L().Debug("run failed", zap.Error(sum.Err()))
		return errStepsFailed
	}
	return nil
}

func runRender() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := filepath.Abs(renderOpt.Out)
	if err != nil {
		return err
	}
	p := newProvisioner(cfg, &process.DryRunner{}, siteprov.Options{DryRun: true})
	_, err = p.Render(out)
	return err
}

func printPlan(w io.Writer) error {
	plan, err := siteprov.NewPlan(siteprov.Steps())
	if err != nil {
		return err
	}
	level := make(map[string]int)
	for i, steps := range plan.Levels {
		for _, s := range steps {
			level[s.Name] = i
		}
	}
	tw := tabwriter.NewWriter(w, 4, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join([]string{"LEVEL", "STEP", "AFTER", "DESCRIPTION"}, "\t"))
	for _, s := range plan.Steps {
		after := "-"
		if len(s.DependsOn) > 0 {
			after = strings.Join(s.DependsOn, ",")
		}
		_, _ = fmt.Fprintln(tw, strings.Join([]string{fmt.Sprint(level[s.Name]), s.Name, after, s.Title}, "\t"))
	}
	return tw.Flush()
}

func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errStepsFailed) {
			_, _ = fmt.Fprintln(os.Stderr, "siteprov:", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(Main())
}
