package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/probelab/pal/errors"
)

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint(s))
	os.Exit(1)
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

// flagChanged reports whether a flag was set on the command line.
// Persistent flags only merge into cmd.Flags() once cobra executes the
// command, so the root's persistent set is consulted as well.
func flagChanged(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := cmd.Root().PersistentFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

func shouldRunRepl(cmd *cobra.Command, args []string) bool {
	if viper.GetBool("stdin") {
		return false
	}
	if flagChanged(cmd, "code") {
		return false
	}
	if len(args) > 0 {
		return false
	}
	return isTerminalIO()
}

// getSource resolves the script text from --code, --stdin, or a file
// argument, along with the name to use in diagnostics.
func getSource(cmd *cobra.Command, args []string) (string, string, error) {
	codeFlagSet := flagChanged(cmd, "code")
	stdinFlagSet := flagChanged(cmd, "stdin")
	pathSupplied := len(args) > 0
	if pathSupplied && (codeFlagSet || stdinFlagSet) {
		return "", "", stderrors.New("multiple input sources specified")
	}
	if codeFlagSet && stdinFlagSet {
		return "", "", stderrors.New("multiple input sources specified")
	}
	if stdinFlagSet {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), "stdin", nil
	}
	if pathSupplied {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	}
	if code := viper.GetString("code"); code != "" {
		return code, "script", nil
	}
	return "", "", stderrors.New("no input: pass a script file, --code, or --stdin")
}

// printDiagnostics renders compile or runtime errors through the
// caret-annotated formatter. Aggregated compile errors get one block
// each, with an index marker in place of the error code.
func printDiagnostics(w io.Writer, err error) {
	formatter := errors.NewFormatter(!color.NoColor)

	var merged *multierror.Error
	if stderrors.As(err, &merged) {
		total := len(merged.Errors)
		for i, item := range merged.Errors {
			var formattable errors.Formattable
			if stderrors.As(item, &formattable) {
				prefix := fmt.Sprintf("%d/%d", i+1, total)
				fmt.Fprint(w, formatter.FormatWithPrefix(formattable.ToFormatted(), prefix))
				continue
			}
			fmt.Fprintln(w, item.Error())
		}
		return
	}

	var formattable errors.Formattable
	if stderrors.As(err, &formattable) {
		fmt.Fprint(w, formatter.Format(formattable.ToFormatted()))
		return
	}
	fmt.Fprintln(w, err.Error())
}
