package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hokaccha/go-prettyjson"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/probelab/pal"
	"github.com/probelab/pal/instrument"
)

// benchOptions assembles the simulated bench configuration from the
// global flags.
func benchOptions() instrument.Options {
	opts := instrument.Options{Seed: viper.GetInt64("seed")}
	if viper.GetBool("verbose") {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
		opts.Logger = &logger
	}
	return opts
}

// runScript executes one script against a fresh simulated bench and,
// when requested, prints the bench report afterwards. Runtime errors
// reach the terminal through the machine's own output sink.
func runScript(source, name string) error {
	bench, withBench := pal.Bench(benchOptions())

	program, err := pal.Compile(source, pal.WithFilename(name))
	if err != nil {
		printDiagnostics(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	if timeout := scriptTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	status, _ := pal.RunProgram(ctx, program, withBench, pal.WithOutput(os.Stdout))
	if format := viper.GetString("output"); format != "" {
		if err := printBenchReport(bench.Report(), format); err != nil {
			return err
		}
	}
	if status != 0 {
		os.Exit(1)
	}
	return nil
}

func printBenchReport(report instrument.Report, format string) error {
	switch format {
	case "json":
		rendered, err := prettyjson.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Println(string(rendered))
	case "text":
		fmt.Printf("session:  %s\n", report.Session)
		fmt.Printf("sample:   %s\n", report.Sample)
		fmt.Printf("frames:   %d\n", report.Frames)
		fmt.Printf("clusters: %d\n", report.Clusters)
		fmt.Printf("sites:    %d\n", report.Sites)
		fmt.Printf("spectra:  %d\n", report.Spectra)
		fmt.Printf("exports:  %d\n", len(report.Exports))
		for name, count := range report.Actions {
			fmt.Printf("  %s: %d\n", name, count)
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
