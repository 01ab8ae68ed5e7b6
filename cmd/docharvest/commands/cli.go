// Package commands implements the docharvest command line.
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docharvest/internal/collect"
	"git.home.luguber.info/inful/docharvest/internal/config"
	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
	"git.home.luguber.info/inful/docharvest/internal/goloader"
	"git.home.luguber.info/inful/docharvest/internal/logfields"
	"git.home.luguber.info/inful/docharvest/internal/metrics"
	"git.home.luguber.info/inful/docharvest/internal/observability"
	"git.home.luguber.info/inful/docharvest/internal/protocol"
	"git.home.luguber.info/inful/docharvest/internal/serialize"
	"git.home.luguber.info/inful/docharvest/internal/version"
)

// Streams are the standard streams of the process. Stdout carries protocol output
// only; logs go to Stderr.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition. There are no subcommands: the root command reads requests from
// stdin and writes responses to stdout.
type CLI struct {
	LineByLine bool `short:"1" name:"line-by-line" help:"Process each line of the input as a separate request."`

	streams Streams
	cfg     *config.Config
}

// AfterApply runs after flag parsing; load configuration and set up logging once.
func (c *CLI) AfterApply() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	c.cfg = cfg
	slog.SetDefault(observability.NewLogger(cfg.Logging, c.streams.Stderr))
	return nil
}

// Run serves requests until the input is exhausted.
func (c *CLI) Run(ctx context.Context) error {
	mode := protocol.ModeWhole
	if c.LineByLine {
		mode = protocol.ModeLines
	}
	ctx = observability.WithMode(ctx, mode)
	observability.DebugContext(ctx, "Starting", logfields.Version(version.String()))

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if c.cfg.Metrics.Textfile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	processor := collect.NewProcessor(goloader.New(), serialize.New(),
		collect.WithDefaults(c.cfg.Defaults),
		collect.WithRecorder(recorder))
	sink := protocol.NewJSONLineSink(bufio.NewWriter(c.streams.Stdout))
	driver := protocol.NewDriver(processor, sink, recorder)

	var err error
	if c.LineByLine {
		err = driver.RunLines(ctx, c.streams.Stdin)
	} else {
		err = driver.RunWhole(ctx, c.streams.Stdin)
	}

	if prom != nil {
		if werr := prom.WriteTextfile(c.cfg.Metrics.Textfile); werr != nil {
			observability.WarnContext(ctx, "Failed to write metrics textfile",
				logfields.File(c.cfg.Metrics.Textfile),
				logfields.Error(werr))
		}
	}
	return err
}

// exitCode is raised through kong's exit hook so that Execute can return instead of
// terminating the process.
type exitCode int

// Execute parses args, runs the command and returns the process exit code.
func Execute(ctx context.Context, args []string, streams Streams) (code int) {
	cli := &CLI{streams: streams}
	parser, err := kong.New(cli,
		kong.Name("docharvest"),
		kong.Description("Load Go code objects by dotted path and print their documentation as JSON."),
		kong.Writers(streams.Stdout, streams.Stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		fmt.Fprintln(streams.Stderr, err)
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	if _, err := parser.Parse(args); err != nil {
		if errors.IsClassified(err) {
			return cli.errorAdapter().Report(err)
		}
		parser.FatalIfErrorf(err)
		return 1
	}

	if err := cli.Run(ctx); err != nil {
		return cli.errorAdapter().Report(err)
	}
	return 0
}

func (c *CLI) errorAdapter() *errors.CLIErrorAdapter {
	verbose := c.cfg != nil && c.cfg.Logging.Level == config.LogLevelDebug
	return errors.NewCLIErrorAdapter(verbose).WithOutput(c.streams.Stderr)
}
