// Package cli implements the ideaboard terminal front-end. Each invocation
// runs one flow and turns any failure into a single line on stderr.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/okian/ideaboard/internal/adapters/kv"
	"github.com/okian/ideaboard/internal/adapters/repository"
	service "github.com/okian/ideaboard/internal/app"
	"github.com/okian/ideaboard/internal/config"
	"github.com/okian/ideaboard/internal/domain/ident"
	"github.com/okian/ideaboard/pkg/logger"
	"github.com/okian/ideaboard/pkg/metrics"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const programName = "ideaboard"

var errUsage = errors.New("usage")

// App holds the output streams and optional overrides for one invocation.
type App struct {
	stdout io.Writer
	stderr io.Writer
	store  kv.Store
}

// Option applies a configuration option to the App.
type Option func(*App)

// WithStore uses s instead of opening the configured backend. The caller
// keeps ownership; Run does not close it.
func WithStore(s kv.Store) Option {
	return func(a *App) {
		a.store = s
	}
}

// New creates an App writing to stdout and stderr.
func New(stdout, stderr io.Writer, opts ...Option) *App {
	a := &App{stdout: stdout, stderr: stderr}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run is shorthand for New(stdout, stderr).Run(ctx, args).
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return New(stdout, stderr).Run(ctx, args)
}

type globalFlags struct {
	configFile  string
	logLevel    string
	metricsFile string
}

// env is what a command needs to run.
type env struct {
	cfg   *config.Config
	svc   *service.Service
	store kv.Store
	keys  *kv.KeyBuilder
	log   logger.Logger
}

// Run executes args (without the program name) and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	var g globalFlags
	fs := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.SetInterspersed(false)
	fs.StringVar(&g.configFile, "config", "", "YAML config file (overrides $IDEABOARD_CONFIG)")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&g.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the command")
	fs.Usage = func() { a.usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	if fs.NArg() == 0 {
		a.usage(fs)
		return ExitUsage
	}

	name, cmdArgs := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		a.fail(fmt.Errorf("unknown command %q", name))
		a.usage(fs)
		return ExitUsage
	}

	cfg, err := config.Load(ctx, config.WithFile(g.configFile))
	if err != nil {
		a.fail(fmt.Errorf("failed to load config: %w", err))
		return ExitFailure
	}
	if g.metricsFile != "" {
		cfg.MetricsFile = g.metricsFile
	}

	if err := logger.Init(logger.WithOutput(a.stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		a.fail(fmt.Errorf("failed to initialize logging: %w", err))
		return ExitFailure
	}
	defer func() { _ = logger.Sync() }()

	level := cfg.LogLevel
	if g.logLevel != "" {
		level = g.logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		a.fail(err)
		return ExitUsage
	}
	log := logger.Get()

	e, closeFn, err := a.wire(ctx, cfg, log)
	if err != nil {
		a.fail(err)
		return ExitFailure
	}
	defer closeFn()

	code := a.exec(ctx, cmd, e, cmdArgs)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn(ctx, "failed to write metrics file", logger.String("path", cfg.MetricsFile), logger.Error(err))
		}
	}
	return code
}

func (a *App) exec(ctx context.Context, cmd command, e *env, args []string) int {
	err := cmd.run(ctx, a, e, args)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, pflag.ErrHelp):
		return ExitOK
	case errors.Is(err, errUsage):
		a.fail(err)
		fmt.Fprintf(a.stderr, "usage: %s %s\n", programName, cmd.usage)
		return ExitUsage
	default:
		a.fail(err)
		return ExitFailure
	}
}

// wire opens storage and builds the service from cfg.
func (a *App) wire(ctx context.Context, cfg *config.Config, log logger.Logger) (*env, func(), error) {
	store := a.store
	closeFn := func() {}
	if store == nil {
		s, err := kv.Open(ctx, cfg.KV(), log.Named("kv"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
		}
		store = s
		closeFn = func() {
			if err := s.Close(); err != nil {
				log.Warn(ctx, "failed to close storage", logger.Error(err))
			}
		}
	}

	ids, err := ident.NewGenerator(cfg.IDScheme)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	repo := repository.New(store,
		repository.WithLogger(log.Named("repository")),
		repository.WithStrictDecode(cfg.StrictDecode),
		repository.WithKeyPrefix(cfg.KeyPrefix),
	)
	svc := service.New(repo,
		service.WithLogger(log.Named("service")),
		service.WithIDGenerator(ids),
		service.WithLeaderboardSize(cfg.LeaderboardSize),
		service.WithVoteWriteMode(cfg.VoteWriteMode),
	)

	return &env{
		cfg:   cfg,
		svc:   svc,
		store: store,
		keys:  kv.NewKeyBuilder(cfg.KeyPrefix),
		log:   log,
	}, closeFn, nil
}

// fail prints err as one line on stderr.
func (a *App) fail(err error) {
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	fmt.Fprintf(a.stderr, "%s: %s\n", programName, msg)
}

func (a *App) usage(fs *pflag.FlagSet) {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s [global flags] <command> [args]\n\nCommands:\n", programName)
	for _, name := range commandOrder {
		fmt.Fprintf(&b, "  %-12s %s\n", name, commands[name].summary)
	}
	b.WriteString("\nGlobal flags:\n")
	fmt.Fprint(a.stderr, b.String())
	fs.PrintDefaults()
}
