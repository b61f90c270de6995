package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hokaccha/go-prettyjson"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/peterh/liner"

	"github.com/probelab/pal"
	"github.com/probelab/pal/instrument"
	"github.com/probelab/pal/vm"
)

const replHelp = `Commands:
  :help          Show this help
  :env           List defined globals
  :dis <code>    Disassemble one line of code
  :bench         Show the bench report
  :quit          Exit

Anything else is evaluated as script code. Definitions persist for the
rest of the session.`

func historyPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pal_history"), nil
}

// runRepl starts an interactive session against one simulated bench.
// Globals persist across lines; the bench accumulates state until the
// session ends.
func runRepl() error {
	bench, withBench := pal.Bench(benchOptions())
	machine := pal.NewMachine(withBench, pal.WithOutput(os.Stdout), pal.WithFilename("repl"))

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath, err := historyPath()
	if err == nil {
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("pal %s interactive session. Type :help for help.\n", version)

	ctx := context.Background()
	for {
		input, err := line.Prompt(">>> ")
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(trimmed, ":") {
			if done := replCommand(machine, bench, trimmed); done {
				return nil
			}
			continue
		}

		status, err := machine.Eval(ctx, input+"\n")
		if status == vm.CompileError && err != nil {
			printDiagnostics(os.Stdout, err)
		}
		// Runtime errors already reached the output sink.
	}
}

func replCommand(machine *pal.Machine, bench *instrument.Bench, command string) (done bool) {
	name, rest, _ := strings.Cut(command, " ")
	switch name {
	case ":quit", ":exit":
		return true
	case ":help":
		fmt.Println(replHelp)
	case ":env":
		names := machine.GlobalNames()
		if len(names) == 0 {
			fmt.Println("(no globals defined)")
			break
		}
		for _, name := range names {
			if value, ok := machine.Get(name); ok {
				fmt.Printf("%s = %s\n", name, value.Inspect())
			}
		}
	case ":dis":
		if strings.TrimSpace(rest) == "" {
			fmt.Println("usage: :dis <code>")
			break
		}
		if err := disassemble(rest+"\n", "repl", os.Stdout); err != nil {
			printDiagnostics(os.Stdout, err)
		}
	case ":bench":
		rendered, err := prettyjson.Marshal(bench.Report())
		if err != nil {
			fmt.Println(err.Error())
			break
		}
		fmt.Println(string(rendered))
	default:
		fmt.Printf("unknown command %s (try :help)\n", name)
	}
	return false
}
