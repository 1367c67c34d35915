// difftest checks a candidate C compiler against a reference compiler.
//
// Usage:
//
//	difftest [flags] PATH...
//
// Every *.c file named on the command line, or found under a named directory,
// is compiled by both compilers in its own job directory under
// ifcc-test-output/. Both executables run and their output and exit status
// are compared. Failing job ids are saved to a ledger so that a later
// "difftest -f" reruns only those.
//
// Output modes (auto-detected):
//
//	terminal  styled output with a live progress line (default when TTY)
//	llm       terse plain text (default when piped)
//	json      structured JSON summary; per-job lines go to stderr
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
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/dkoosis/difftest/internal/config"
	"github.com/dkoosis/difftest/internal/console"
	"github.com/dkoosis/difftest/internal/discover"
	"github.com/dkoosis/difftest/internal/ledger"
	"github.com/dkoosis/difftest/internal/progress"
	"github.com/dkoosis/difftest/internal/report"
	"github.com/dkoosis/difftest/internal/runner"
	"github.com/dkoosis/difftest/internal/version"
	"github.com/dkoosis/difftest/internal/workspace"
	"github.com/dkoosis/difftest/pkg/render"
)

// Exit codes.
const (
	exitOK          = 0
	exitSetup       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

// ErrMissingWrapper is returned when the candidate wrapper script does not exist.
var ErrMissingWrapper = errors.New("cannot find wrapper")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("difftest", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	var flags config.CliFlags
	fs.CountVarP(&flags.Verbose, "verbose", "v", "increase verbosity level (repeatable)")
	fs.CountVarP(&flags.Debug, "debug", "d", "increase quantity of debugging messages (repeatable)")
	fs.StringVarP(&flags.Wrapper, "wrapper", "w", "", "path to your compiler's wrapper script")
	failedOnly := fs.BoolP("failed", "f", false, "only rerun the test-cases that failed last time")
	fs.StringVar(&flags.Format, "format", config.DefaultFormat, "output format: auto, terminal, llm, json")
	fs.StringVar(&flags.Theme, "theme", config.DefaultTheme, "theme: default, orca, mono")
	fs.BoolVar(&flags.NoColor, "no-color", false, "disable colors")
	fs.DurationVar(&flags.Timeout, "timeout", config.DefaultTimeout, "limit for each compile, link or run (0 disables)")
	fs.StringVar(&flags.OutputDir, "output-dir", config.DefaultOutputDir, "directory holding the job directories")
	fs.StringVar(&flags.Ledger, "ledger", "", "failure ledger path (default: next to the executable)")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: difftest [flags] PATH...\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	flags.WrapperSet = fs.Changed("wrapper")
	flags.FormatSet = fs.Changed("format")
	flags.ThemeSet = fs.Changed("theme")
	flags.NoColorSet = fs.Changed("no-color")
	flags.TimeoutSet = fs.Changed("timeout")
	flags.OutputDirSet = fs.Changed("output-dir")
	flags.LedgerSet = fs.Changed("ledger")

	con := &console.Console{Out: stdout, Err: stderr, Verbose: flags.Verbose, Debug: flags.Debug}
	fileCfg, cfgPath := config.LoadConfig(con.Warnf)
	cfg, err := config.Resolve(fileCfg, flags, os.Getenv)
	if err != nil {
		con.Errorf(err)
		return exitSetup
	}
	con.Verbose, con.Debug = cfg.Verbose, cfg.Debug

	con.Debugf(2, "command-line arguments %q", args)
	if cfgPath != "" {
		con.Debugf(1, "config file: %s", cfgPath)
	}
	con.Debugf(2, "resolved config:\n%s", cfg)
	con.Debugf(1, "wrapper: %s (from %s)", displayWrapper(cfg.Wrapper), cfg.WrapperSource)
	con.Debugf(1, "timeout: %s (from %s)", cfg.Timeout, cfg.TimeoutSource)

	mode := resolveFormat(cfg.Format, stdout)
	if mode == "json" {
		// Keep stdout a single JSON document.
		con.Out = stderr
	}
	theme := render.ThemeByName(cfg.Theme, cfg.NoColor || mode != "terminal")

	s, err := prepare(cfg, fs.Args(), *failedOnly, con)
	if err != nil {
		con.Errorf(err)
		return exitSetup
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner.Runner{
		Invoker: &runner.ExecInvoker{Timeout: cfg.Timeout, Console: con},
		Reference: runner.Toolchain{
			Compiler:    cfg.Reference.Compiler,
			CompileArgs: cfg.Reference.CompileArgs,
			LinkArgs:    cfg.Reference.LinkArgs,
			ExtraArgs:   cfg.Reference.ExtraArgs,
		},
		Wrapper: s.wrapper,
		Console: con,
	}
	rep := report.New(con.Out, theme, con)

	start := time.Now()
	var verdicts []runner.Verdict
	var runErr error
	if mode == "terminal" && isTTYWriter(stdout) && cfg.Verbose == 0 && cfg.Debug == 0 && len(s.ws.Jobs) > 0 {
		runErr = progress.Run(ctx, progress.Options{
			Out:   stdout,
			Theme: theme,
			Total: len(s.ws.Jobs),
			Line:  rep.Line,
		}, func(ctx context.Context, started func(workspace.Job), done func(runner.Verdict)) error {
			r.OnStart = started
			var err error
			verdicts, err = r.Run(ctx, s.ws.Jobs, done)
			return err
		})
	} else {
		verdicts, runErr = r.Run(ctx, s.ws.Jobs, rep.Job)
	}
	elapsed := time.Since(start)

	// The ledger always reflects the jobs that completed, even when interrupted.
	if err := ledger.Save(s.ledgerPath, ledger.NewSet(runner.Failures(verdicts)...)); err != nil {
		con.Errorf(err)
		return exitSetup
	}

	code := exitOK
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		con.Warnf("interrupted after %d of %d jobs", len(verdicts), len(s.ws.Jobs))
		code = exitInterrupted
	default:
		con.Errorf(runErr)
		code = exitSetup
	}

	patterns := report.Patterns(report.Run{
		Verdicts:    verdicts,
		Planned:     len(s.ws.Jobs),
		Elapsed:     elapsed,
		Previous:    s.previous.Sorted(),
		HasPrevious: s.hasPrevious,
	})
	fmt.Fprint(stdout, selectRenderer(mode, theme, stdout).Render(patterns))
	return code
}

// setup is everything that must succeed before the first job runs.
type setup struct {
	ws          *workspace.Workspace
	wrapper     string
	ledgerPath  string
	previous    ledger.Set
	hasPrevious bool
}

func prepare(cfg *config.Resolved, paths []string, failedOnly bool, con *console.Console) (*setup, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine current directory: %w", err)
	}
	if err := workspace.CheckWorkingDir(cwd, cfg.OutputDir); err != nil {
		return nil, err
	}

	files, err := discover.Discover(paths, cfg.Suffix, filepath.Base(cfg.OutputDir))
	if err != nil {
		return nil, err
	}
	con.Debugf(1, "list of files after tree walk: %s", strings.Join(files, " "))
	if err := discover.Probe(files); err != nil {
		return nil, err
	}

	wrapper, err := resolveWrapper(cfg.Wrapper)
	if err != nil {
		return nil, err
	}
	con.Debugf(1, "wrapper path: %s", wrapper)

	s := &setup{wrapper: wrapper, ledgerPath: cfg.Ledger}
	if s.ledgerPath == "" {
		s.ledgerPath = ledger.DefaultPath()
	}
	_, statErr := os.Stat(s.ledgerPath)
	s.hasPrevious = statErr == nil
	s.previous = ledger.Load(s.ledgerPath)
	con.Debugf(1, "ledger: %s (%d failed last time)", s.ledgerPath, len(s.previous))

	opts := workspace.Options{Root: cfg.OutputDir, Suffix: cfg.Suffix, Console: con}
	if failedOnly {
		opts.Include = s.previous.Has
	}
	s.ws, err = workspace.Prepare(files, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// resolveWrapper makes path absolute against the current directory, or
// defaults to the wrapper shipped next to the executable.
func resolveWrapper(path string) (string, error) {
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("%w: cannot locate executable: %v", ErrMissingWrapper, err)
		}
		path = filepath.Join(filepath.Dir(exe), config.DefaultWrapper)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMissingWrapper, path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("%w: %s in directory: %s (use -w)", ErrMissingWrapper, filepath.Base(abs), filepath.Dir(abs))
	}
	return abs, nil
}

func displayWrapper(path string) string {
	if path == "" {
		return config.DefaultWrapper + " next to the executable"
	}
	return path
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func selectRenderer(mode string, theme render.Theme, w io.Writer) render.Renderer {
	switch mode {
	case "json":
		return render.NewJSON()
	case "llm":
		return render.NewLLM()
	default:
		width := 80
		if f, ok := w.(*os.File); ok {
			if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
				width = tw
			}
		}
		return render.NewTerminal(theme, width)
	}
}

func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	// Auto-detect: TTY = terminal, piped = llm
	if isTTYWriter(w) {
		return "terminal"
	}
	return "llm"
}
