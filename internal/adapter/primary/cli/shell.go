package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fasttrack/internal/logging"
)

func (a *app) newShellCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell that runs subcommands against one live tracker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.runtime(); err != nil {
				return err
			}
			return a.runInteractiveShell(prompt)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "fasttrack> ", "shell prompt")
	return cmd
}

func (a *app) runInteractiveShell(prompt string) error {
	historyFile := filepath.Join(os.TempDir(), "fasttrack-shell.history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          a.out,
		Stderr:          a.err,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintln(a.out, "Interactive shell. Type 'help' for examples, 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(a.out)
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out)
			return nil
		}
		if err != nil {
			return err
		}
		if a.handleShellLine(line) {
			return nil
		}
	}
}

// handleShellLine runs one shell input and reports whether the shell should exit.
func (a *app) handleShellLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	switch line {
	case "exit", "quit":
		fmt.Fprintln(a.out, "Bye!")
		return true
	case "help":
		printShellHelp(a.out)
		return false
	}

	tokens, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(a.out, "Parse error: %v\n", err)
		return false
	}
	if len(tokens) == 0 {
		return false
	}
	switch tokens[0] {
	case "log":
		if err := a.handleShellLog(tokens[1:]); err != nil {
			fmt.Fprintf(a.out, "log: %v\n", err)
		}
		return false
	case "shell":
		fmt.Fprintln(a.out, "Already in the shell. Enter another command or 'exit'.")
		return false
	}

	if err := a.executeArgs(tokens); err != nil {
		fmt.Fprintf(a.out, "command error: %v\n", err)
	}
	return false
}

func (a *app) executeArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SilenceErrors = true
	root.SilenceUsage = true
	return root.Execute()
}

func (a *app) handleShellLog(args []string) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var vcount int
	var level string
	var show bool
	fs.CountVarP(&vcount, "verbose", "v", "Increase verbosity (-v... up to 4)")
	fs.StringVar(&level, "level", "", "level (error|warn|info|debug|trace)")
	fs.BoolVarP(&show, "show", "s", false, "print the current level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case show && vcount == 0 && level == "":
		fmt.Fprintf(a.out, "log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	case level != "":
		if err := logging.SetLevel(level); err != nil {
			return err
		}
	case vcount > 0:
		logging.SetVerbosity(vcount)
	default:
		fmt.Fprintf(a.out, "log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	}

	a.verbosity = logging.Verbosity()
	fmt.Fprintf(a.out, "log level set to %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
	return nil
}

func printShellHelp(w io.Writer) {
	fmt.Fprintln(w, `Examples:
  methods                           # list fasting methods
  select 18-6                       # select a method
  start                             # start a fast with the selected method
  start --method 20-4 --at 2026-03-01T20:00:00Z
  status                            # show the timer
  end                               # end the active fast
  history --format yaml             # list completed fasts
  export --out ~/fasts.json         # write a history report
  watch                             # live timer (q to return)
  serve --addr 127.0.0.1:7070       # REST API + websocket (Ctrl+C to return)
  log -vv                           # more logging
  log --show                        # print the log level
  exit / quit                       # leave the shell`)
}
