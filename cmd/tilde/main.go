package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tj-mc/tilde-sub001/internal/evaluator"
	"github.com/tj-mc/tilde-sub001/internal/object"
	"github.com/tj-mc/tilde-sub001/internal/parser"
	"github.com/tj-mc/tilde-sub001/internal/repl"
	"github.com/tj-mc/tilde-sub001/internal/util"
)

var (
	// Version is stamped by the build.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help    bool
	version bool
	// logging
	logLevel string
	logFile  string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(logLevel),
	}
	logWriter := configureLogWriter()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config := util.Configuration{
		Version:     Version,
		BuildDate:   BuildDate,
		Commit:      Commit,
		HistoryPath: defaultHistoryPath(),
	}

	if flag.NArg() == 0 {
		repl.Start(config)
		return
	}

	config.ScriptPath = flag.Arg(0)
	config.ScriptArgs = flag.Args()[1:]
	os.Exit(runFile(config))
}

func runFile(config util.Configuration) int {
	src, err := os.ReadFile(config.ScriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read '%s': %v\n", config.ScriptPath, err)
		return 1
	}

	p := parser.New(string(src))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, msg := range errs {
			fmt.Fprintln(os.Stderr, "Parse error: "+msg)
			var line, col int
			if _, scanErr := fmt.Sscanf(msg, "[%d:%d]", &line, &col); scanErr == nil {
				if ctx := util.GetContextLines(string(src), line, col); ctx != "" {
					fmt.Fprintln(os.Stderr, ctx)
				}
			}
		}
		return 1
	}

	ev := evaluator.New(config)
	result := ev.Eval(program)
	if errObj, ok := result.(*object.Error); ok {
		fmt.Fprintln(os.Stderr, "Runtime error: "+errObj.Message)
		return 1
	}
	return 0
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tilde_history")
}

func configureLogWriter() *os.File {
	if logFile == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	w, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	return w
}

func printVersion() {
	fmt.Printf("tilde version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: tilde [options] [filename [args...]]

Options:
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
This is the Tilde scripting language. Run with no filename to start the
interactive REPL.

Examples:
  tilde                         Start the REPL
  tilde script.tde              Execute the provided Tilde file
  tilde script.tde arg1 arg2    Execute the file with command-line arguments
  tilde -log-level=debug        Start with debug logging enabled

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
