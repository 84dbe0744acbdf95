package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/sergev/codelang/internal/config"
	"github.com/sergev/codelang/internal/console"
	"github.com/sergev/codelang/lang"
	"github.com/sergev/codelang/runtime"
)

// Exit statuses, after sysexits.h.
const (
	exitDataErr  = 65
	exitSoftware = 70
)

var (
	runCommand = cli.Command{
		Action:      runFile,
		Name:        "run",
		Usage:       "Run a CODE program",
		ArgsUsage:   "FILE|-",
		Description: `The run command executes a program file, or standard input when FILE is "-".`,
	}
	replCommand = cli.Command{
		Action: runREPLCommand,
		Name:   "repl",
		Usage:  "Start an interactive session",
	}
	tokensCommand = cli.Command{
		Action:    dumpTokens,
		Name:      "tokens",
		Usage:     "Print the tokens of a program",
		ArgsUsage: "FILE|-",
	}
	astCommand = cli.Command{
		Action:    dumpAST,
		Name:      "ast",
		Usage:     "Print the syntax tree of a program",
		ArgsUsage: "FILE|-",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "codelang"
	app.Usage = "interpreter for the CODE programming language"
	app.ArgsUsage = "[FILE]"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		configFileFlag,
		traceFlag,
		colorFlag,
	}
	app.Commands = []cli.Command{
		runCommand,
		replCommand,
		tokensCommand,
		astCommand,
		dumpConfigCommand,
	}
	app.Action = func(ctx *cli.Context) error {
		if ctx.NArg() > 0 {
			return runFile(ctx)
		}
		return runREPLCommand(ctx)
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session bundles what one command needs to execute programs.
type session struct {
	cfg      config.Config
	reporter *console.Reporter
	logger   *slog.Logger
	stdin    io.Reader
	out      io.Writer
}

func newSession(ctx *cli.Context) (*session, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.DiscardHandler)
	if cfg.Trace {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return &session{
		cfg:      cfg,
		reporter: console.NewStderrReporter(cfg.Color),
		logger:   logger,
		stdin:    os.Stdin,
		out:      os.Stdout,
	}, nil
}

func (s *session) newEvaluator() *lang.Evaluator {
	ev := runtime.NewEvaluator()
	ev.Logger = s.logger
	ev.SetOutput(s.out)
	return ev
}

// exitStatus maps the outcome of a run onto the process exit status.
func (s *session) exitStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case s.reporter.HadError:
		return cli.NewExitError("", exitDataErr)
	case s.reporter.HadRuntimeError:
		return cli.NewExitError("", exitSoftware)
	}
	return cli.NewExitError(err.Error(), 1)
}

func runFile(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: codelang run FILE|-", 1)
	}
	s, err := newSession(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	name := ctx.Args().First()
	if name == "-" {
		return s.exitStatus(runtime.RunReader(s.newEvaluator(), s.stdin, s.reporter))
	}
	src, err := readSource(name)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return s.exitStatus(runtime.Run(s.newEvaluator(), src, s.reporter))
}

func dumpTokens(ctx *cli.Context) error {
	return dumpWith(ctx, runtime.DumpTokens)
}

func dumpAST(ctx *cli.Context) error {
	return dumpWith(ctx, runtime.DumpAST)
}

func dumpWith(ctx *cli.Context, dump func(io.Writer, string) error) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError(fmt.Sprintf("usage: codelang %s FILE|-", ctx.Command.Name), 1)
	}
	s, err := newSession(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	src, err := readSource(ctx.Args().First())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if err := dump(s.out, src); err != nil {
		s.reporter.ReportErrors(err)
		return s.exitStatus(err)
	}
	return nil
}

func readSource(name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return runtime.ReadSource(name)
}
