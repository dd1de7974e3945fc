// Package cmd implements the CLI command structure for tasks.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/nibzard/tasks-go/internal/client"
	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/store"
	"github.com/nibzard/tasks-go/internal/task"
	"github.com/nibzard/tasks-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tasks CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// If no args or first arg is a flag, use "serve" as default
	subcommand := "serve"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "serve":
		return serveCommand(ctx, cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "ls":
		return lsCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "logs":
		return logsCommand(ctx, cfg, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// tuiCommand launches the terminal client. Logs go to a per-run file
// because the terminal belongs to the program.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasks tui", flag.ContinueOnError)
	interval := fs.Duration("ping", ui.DefaultTickInterval, "Health check interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	c, err := client.New(cfg.ServerURL)
	if err != nil {
		return err
	}

	runFile, err := logging.OpenRunFile(cfg.LogDir, "tui")
	if err != nil {
		return fmt.Errorf("opening tui log: %w", err)
	}
	defer runFile.Close()

	logger := logging.New(runFile.Writer(), logging.OptionsFromConfig(
		cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller, "tui"))
	logger.Info("starting tui", "server", c.BaseURL(), "run_id", runFile.RunID)

	return ui.RunTUI(ctx, client.NewMirror(c), c, ui.Options{
		Logger:       logger,
		ServerURL:    c.BaseURL(),
		TickInterval: *interval,
	})
}

// lsCommand prints tasks through the API, or straight from the file with
// -local.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasks ls", flag.ContinueOnError)
	filterName := fs.String("filter", "", "Filter tasks (all|pending|completed)")
	local := fs.Bool("local", false, "Read the tasks file directly instead of the server")
	verbose := fs.Bool("v", false, "Show ids and timestamps")

	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) >= 1 && *filterName == "" {
		*filterName = remaining[0]
		remaining = remaining[1:]
	}
	if len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}
	filter, err := task.ParseFilter(*filterName)
	if err != nil {
		return err
	}

	var tasks []task.Task
	if *local {
		tasks, err = store.New(cfg.TasksFile, store.WithLenientRead(cfg.LenientRead)).All(ctx)
		if err != nil {
			return fmt.Errorf("reading tasks file: %w", err)
		}
	} else {
		c, err := client.New(cfg.ServerURL)
		if err != nil {
			return err
		}
		tasks, err = c.List(ctx)
		if err != nil {
			return fmt.Errorf("listing tasks from %s: %w", c.BaseURL(), err)
		}
	}

	printTaskList(os.Stdout, filter.Apply(tasks), *verbose, time.Now())
	stats := task.Count(tasks)
	fmt.Printf("\n%d total, %d pending, %d completed\n", stats.Total, stats.Pending, stats.Completed)
	return nil
}

// logsCommand prints the latest log file from the log directory.
func logsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasks logs", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logPath, err := logging.FindLatestLog(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Println("No log files found.")
		return nil
	}

	fmt.Printf("Tailing: %s\n", logPath)
	if *follow {
		fmt.Println("(Ctrl+C to stop)")
	}
	fmt.Println()

	return logging.TailLog(ctx, os.Stdout, logPath, *n, *follow)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("tasks version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasks - A JSON-file task list with a REST API, web UI and terminal client")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasks [options] [command] [command options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve               Start the HTTP server (default command)")
	fmt.Fprintln(w, "  tui                 Launch the terminal client against -server")
	fmt.Fprintln(w, "  ls [filter]         List tasks (all|pending|completed)")
	fmt.Fprintln(w, "  doctor              Check the tasks file, static dir and config")
	fmt.Fprintln(w, "  logs                Print the latest log file")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -filter string   Filter tasks (all|pending|completed)")
	fmt.Fprintln(w, "  -local           Read the tasks file directly instead of the server")
	fmt.Fprintln(w, "  -v               Show ids and timestamps")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options:")
	fmt.Fprintln(w, "  -example         Print an example config file")
	fmt.Fprintln(w, "  -v               Show where each setting came from and ping the server")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options:")
	fmt.Fprintln(w, "  -f, -follow      Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int           Number of lines to show (0 = all)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PORT, TASKS_FILE, TASKS_STATIC_DIR, TASKS_HOST, TASKS_CORS_ORIGINS,")
	fmt.Fprintln(w, "  TASKS_EXPOSE_ERRORS, TASKS_LENIENT_READ, TASKS_WATCH, TASKS_SERVER,")
	fmt.Fprintln(w, "  TASKS_LOG_DIR, TASKS_LOG_LEVEL, TASKS_LOG_FORMAT, TASKS_LOG_TIMESTAMPS,")
	fmt.Fprintln(w, "  TASKS_LOG_CALLER")
}

// printTaskList prints tasks in stored order.
func printTaskList(w io.Writer, tasks []task.Task, verbose bool, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	for _, t := range tasks {
		printTask(w, t, verbose, now)
	}
}

// printTask prints a single task.
func printTask(w io.Writer, t task.Task, verbose bool, now time.Time) {
	statusIcon := "📝"
	if t.Completed {
		statusIcon = "✅"
	}
	fmt.Fprintf(w, "  %s %s\n", statusIcon, t.Title)

	if verbose {
		fmt.Fprintf(w, "      ID: %s\n", t.ID)
		fmt.Fprintf(w, "      Creado: %s (%s)\n", client.FormatRelative(t.CreatedAt, now), t.CreatedAt.Format(time.RFC3339))
		if t.UpdatedAt != nil {
			fmt.Fprintf(w, "      Editado: %s (%s)\n", client.FormatRelative(*t.UpdatedAt, now), t.UpdatedAt.Format(time.RFC3339))
		}
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys(m map[string]config.ConfigSource) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
