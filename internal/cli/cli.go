package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/lexgen/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("lexgen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
lexgen - a declarative scanner/parser generation driver.

Usage:
  lexgen [options] [MANIFEST_PATH]

Arguments:
  MANIFEST_PATH
    Path to a single .hcl manifest or a directory containing .hcl manifests.

Options:
`)
		flagSet.PrintDefaults()
	}

	manifestFlag := flagSet.String("manifest", "", "Path to the manifest file or directory.")
	mFlag := flagSet.String("m", "", "Path to the manifest file or directory (shorthand).")
	flexFlag := flagSet.String("flex", "", "Explicit path to the flex executable. Defaults to PATH lookup.")
	bisonFlag := flagSet.String("bison", "", "Explicit path to the bison executable. Defaults to PATH lookup.")
	minFlexFlag := flagSet.String("min-flex-version", "", "Minimum acceptable flex version, e.g. '2.5.4'.")
	minBisonFlag := flagSet.String("min-bison-version", "", "Minimum acceptable bison version.")
	requireFlexFlag := flagSet.Bool("require-flex", false, "Treat a missing or failing flex as a hard error.")
	requireBisonFlag := flagSet.Bool("require-bison", false, "Treat a missing or failing bison as a hard error.")
	planFlag := flagSet.Bool("plan", false, "Print the resolved generation commands without executing them.")
	watchFlag := flagSet.Bool("watch", false, "Re-run generation whenever a rule input changes.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent workers for the executor.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *manifestFlag != "" {
		path = *manifestFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		ManifestPath:    path,
		FlexPath:        *flexFlag,
		BisonPath:       *bisonFlag,
		MinFlexVersion:  *minFlexFlag,
		MinBisonVersion: *minBisonFlag,
		RequireFlex:     *requireFlexFlag,
		RequireBison:    *requireBisonFlag,
		PlanOnly:        *planFlag,
		Watch:           *watchFlag,
		WorkerCount:     *workersFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
