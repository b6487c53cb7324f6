// Package cmd implements the listkit CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (scroll, render, metrics).
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/go-drift/listkit/cmd/listkit/internal/config"
	"github.com/go-drift/listkit/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(env *Env, args []string) error
	SubCommands []*Command
}

// Env is the state shared by all commands for one invocation.
type Env struct {
	// ConfigDir overrides the directory searched for listkit.yaml.
	ConfigDir string
	Stdout    io.Writer
	Stderr    io.Writer
	logger    log.Logger
}

// Config resolves the configuration for this invocation.
func (e *Env) Config() (*config.Resolved, error) {
	dir := e.ConfigDir
	if dir == "" {
		root, err := config.FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to locate project root: %w", err)
		}
		dir = root
	}
	cfg, err := config.Resolve(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Logger returns a logfmt logger on Stderr filtered at the given level.
func (e *Env) Logger(lvl string) log.Logger {
	if e.logger != nil {
		return e.logger
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(e.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = level.NewFilter(logger, levelOption(lvl))
	e.logger = logger
	errors.SetHandler(&errors.LogHandler{Logger: logger})
	return logger
}

func levelOption(lvl string) level.Option {
	switch lvl {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

var rootCmd = &Command{
	Name:  "listkit",
	Short: "listkit - virtualized list views and small-array storage",
	Long: `listkit drives a virtualized list view through a list-item factory
and reports how items are set up, bound, recycled and torn down.

Use "listkit <command> --help" for more information about a command.`,
	Usage: "listkit <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	return run(&Env{Stdout: os.Stdout, Stderr: os.Stderr}, args)
}

func run(env *Env, args []string) error {
	if len(args) == 0 {
		printHelp(env.Stdout, rootCmd)
		return nil
	}

	// Handle global flags and extract --config
	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(env.Stdout, rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Fprintf(env.Stdout, "listkit version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--config":
			if i+1 < len(args) {
				env.ConfigDir = args[i+1]
				i++
			} else {
				return fmt.Errorf("--config requires a directory path")
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				env.ConfigDir = strings.TrimPrefix(arg, "--config=")
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(env.Stdout, rootCmd)
		return nil
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(env.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(env.Stderr, rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(env.Stdout, cmd)
			return nil
		}
	}

	return cmd.Run(env, cmdArgs)
}

func printHelp(w io.Writer, cmd *Command) {
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(w, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -h, --help           Show help for a command")
	fmt.Fprintln(w, "  -v, --version        Show version information")
	fmt.Fprintln(w, "  --config DIR         Directory containing listkit.yaml (default: project root)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  listkit scroll             Scroll the configured list top to bottom")
	fmt.Fprintln(w, "  listkit render out.png     Snapshot the first viewport")
	fmt.Fprintln(w, "  listkit metrics            Scroll and print prometheus metrics")
}

func printCommandHelp(w io.Writer, cmd *Command) {
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
}
