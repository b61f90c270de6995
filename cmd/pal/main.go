package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pal [script.pal]",
	Short: "Run probe automation scripts on a simulated bench",
	Long: `pal runs probe automation scripts against a simulated instrument
bench. With no script it starts an interactive session.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyColorMode()
		if shouldRunRepl(cmd, args) {
			return runRepl()
		}
		source, name, err := getSource(cmd, args)
		if err != nil {
			return err
		}
		return runScript(source, name)
	},
}

var disCmd = &cobra.Command{
	Use:   "dis [script.pal]",
	Short: "Disassemble a compiled script",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyColorMode()
		source, name, err := getSource(cmd, args)
		if err != nil {
			return err
		}
		if err := disassemble(source, name, os.Stdout); err != nil {
			printDiagnostics(os.Stderr, err)
			os.Exit(1)
		}
		return nil
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyColorMode()
		return runRepl()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pal %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("code", "c", "", "Code to evaluate")
	flags.Bool("stdin", false, "Read code from stdin")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Log bench activity")
	flags.Int64("seed", 0, "Bench random seed")

	rootCmd.Flags().Duration("timeout", 0, "Halt the script after this duration")
	rootCmd.Flags().StringP("output", "o", "", "Bench report format: text or json")

	viper.SetDefault("no-color", false)
	if err := viper.BindPFlags(flags); err != nil {
		fatal(err)
	}
	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		fatal(err)
	}
	if err := viper.BindEnv("no-color", "NO_COLOR"); err != nil {
		fatal(err)
	}

	rootCmd.AddCommand(disCmd, replCmd, versionCmd)
}

// applyColorMode resolves the --no-color flag and NO_COLOR environment
// variable into the global color switch.
func applyColorMode() {
	if viper.GetBool("no-color") || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

func scriptTimeout() time.Duration {
	return viper.GetDuration("timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}
