package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/lukehollenback/binanceapi/exchange/binance"
	"github.com/lukehollenback/binanceapi/recorder"
)

const (
	configFileFlag = "config"
	modeFlag       = "mode"
	timeoutFlag    = "timeout"
	recordFlag     = "record"
	noColorFlag    = "no-color"
	metricsFlag    = "metrics"
)

func main() {
	app := cli.NewApp()
	app.Name = "mbx"
	app.Usage = "call a Binance REST method and print the result"
	app.ArgsUsage = "<method> [key=value ...]"
	app.Action = run
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   configFileFlag,
			Usage:  "path to a TOML config file, applied on top of BINANCE_* environment variables",
			EnvVar: "BINANCE_CONFIG",
		},
		cli.StringFlag{
			Name:   modeFlag,
			Usage:  "running mode, development or production",
			EnvVar: "BINANCE_MODE",
			Value:  string(Production),
		},
		cli.DurationFlag{
			Name:  timeoutFlag,
			Usage: "overrides the configured request timeout",
		},
		cli.StringFlag{
			Name:  recordFlag,
			Usage: "append a record of the call to this CSV file",
		},
		cli.BoolFlag{
			Name:  noColorFlag,
			Usage: "disable coloured output",
		},
		cli.BoolFlag{
			Name:  metricsFlag,
			Usage: "print the call metrics to stderr after the call",
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	method := c.Args().First()
	if method == "" {
		return cli.NewExitError("a method is required, e.g. mbx ping", 2)
	}

	params, err := parseParams(c.Args().Tail())
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	//
	// Set up logging and load the configuration.
	//
	l, flush, err := newLogger(Mode(c.String(modeFlag)))
	if err != nil {
		return err
	}
	defer flush()

	cfg, err := binance.LoadConfig(c.String(configFileFlag))
	if err != nil {
		return err
	}

	if timeout := c.Duration(timeoutFlag); timeout > 0 {
		cfg.Timeout = timeout
	}

	reg := prometheus.NewRegistry()

	metrics, err := binance.NewMetrics(reg)
	if err != nil {
		return err
	}

	client, err := binance.NewClient(cfg, binance.WithLogger(l), binance.WithMetrics(metrics))
	if err != nil {
		return err
	}

	//
	// Make the call, cancelling it if the operating system interrupts us.
	//
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	resp, callErr := client.API(ctx, method, params)

	if path := c.String(recordFlag); path != "" {
		if err := record(path, l, client.Recent()); err != nil {
			l.Warnw("failed to record call", "path", path, "err", err)
		}
	}

	if c.Bool(metricsFlag) {
		if err := dumpMetrics(os.Stderr, reg); err != nil {
			l.Warnw("failed to print metrics", "err", err)
		}
	}

	//
	// Print the outcome.
	//
	au := aurora.NewAurora(!c.Bool(noColorFlag))

	if callErr != nil {
		fmt.Fprintln(os.Stderr, au.Bold(au.Red(callErr.Error())))
		return cli.NewExitError("", 1)
	}

	return printBody(os.Stdout, au, resp.Body())
}

//
// printBody pretty prints a JSON payload, falling back to the raw bytes if it is not JSON.
//
func printBody(w io.Writer, au aurora.Aurora, body []byte) error {
	var out bytes.Buffer

	if len(bytes.TrimSpace(body)) == 0 {
		_, err := fmt.Fprintln(w, au.Green("(empty response)"))
		return err
	}

	if err := json.Indent(&out, body, "", "  "); err != nil {
		_, err := fmt.Fprintln(w, string(body))
		return err
	}

	_, err := fmt.Fprintln(w, au.Green(out.String()))

	return err
}

func record(path string, l *zap.SugaredLogger, recs []binance.Record) error {
	r := recorder.New(path, l)

	chStarted, err := r.Start()
	if err != nil {
		return err
	}
	<-chStarted

	for _, rec := range recs {
		if err := r.Record(rec); err != nil {
			return err
		}
	}

	chStopped, err := r.Stop()
	if err != nil {
		return err
	}

	select {
	case <-chStopped:
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timed out flushing %s", path)
	}

	return nil
}
