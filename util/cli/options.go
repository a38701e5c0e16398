package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
)

var EnvMessage = `This requires the following environment vars:

WR_CONFIG_DIR - Path to the directory containing the .env settings file.

WR_SERVICES_CONFIG - Name of the configuration to load. For example:
    test - Loads .env.test from WR_CONFIG_DIR
    dev  - Loads .env.dev from WR_CONFIG_DIR
`

// RegisterOptions are the settings for work_register.
type RegisterOptions struct {
	File      string
	Metadata  string
	PrintHelp bool
	Title     string
	WorkType  string
}

// VerifyOptions are the settings for work_verify. The first of
// WorkID, Hash and File that is set decides how the lookup runs.
type VerifyOptions struct {
	File      string
	Hash      string
	PrintHelp bool
	WorkID    string
}

// ListOptions are the settings for work_list.
type ListOptions struct {
	Creator   string
	PrintHelp bool
}

// WorkerOptions are the settings for long-running queue workers.
type WorkerOptions struct {
	MaxAttempts    int
	NumWorkers     int
	PidFile        string
	PrintHelp      bool
	RequeueTimeout time.Duration
}

var defaultAttempts = 1
var defaultWorkers = 3
var defaultTimeout = 1 * time.Minute

func ParseRegisterOptions(args []string) (*RegisterOptions, *pflag.FlagSet, error) {
	opts := &RegisterOptions{}
	flags := pflag.NewFlagSet("work_register", pflag.ContinueOnError)
	flags.StringVarP(&opts.File, "file", "f", "", "Path to the file to register")
	flags.StringVarP(&opts.Title, "title", "t", "", "Title of the work")
	flags.StringVar(&opts.WorkType, "type", "", "Type of work (image, text, music, video, code, photography, other). Detected from the file if omitted.")
	flags.StringVarP(&opts.Metadata, "metadata", "m", "", "Free-form description stored with the registration")
	flags.BoolVarP(&opts.PrintHelp, "help", "h", false, "Print help message")
	err := parse(flags, args)
	if err == nil && !opts.PrintHelp && (opts.File == "" || opts.Title == "") {
		err = fmt.Errorf("--file and --title are required")
	}
	return opts, flags, err
}

func ParseVerifyOptions(args []string) (*VerifyOptions, *pflag.FlagSet, error) {
	opts := &VerifyOptions{}
	flags := pflag.NewFlagSet("work_verify", pflag.ContinueOnError)
	flags.StringVarP(&opts.WorkID, "id", "i", "", "Registration id to look up, e.g. WORK-1A2B3C4D")
	flags.StringVar(&opts.Hash, "hash", "", "SHA-256 content hash, with or without 0x")
	flags.StringVarP(&opts.File, "file", "f", "", "File whose content to look up")
	flags.BoolVarP(&opts.PrintHelp, "help", "h", false, "Print help message")
	return opts, flags, parse(flags, args)
}

func ParseListOptions(args []string) (*ListOptions, *pflag.FlagSet, error) {
	opts := &ListOptions{}
	flags := pflag.NewFlagSet("work_list", pflag.ContinueOnError)
	flags.StringVarP(&opts.Creator, "creator", "c", "", "Creator address. Defaults to ACCOUNT_ADDRESS from the config.")
	flags.BoolVarP(&opts.PrintHelp, "help", "h", false, "Print help message")
	return opts, flags, parse(flags, args)
}

func ParseWorkerOptions(name string, args []string) (*WorkerOptions, *pflag.FlagSet, error) {
	opts := &WorkerOptions{}
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.IntVar(&opts.MaxAttempts, "max-attempts", defaultAttempts, "Maximum number of times a worker should attempt to process an item")
	flags.IntVar(&opts.NumWorkers, "workers", defaultWorkers, "Number of go routines to handle main processing work")
	flags.StringVar(&opts.PidFile, "pid-file", "", "Path to pid file. Refuses to start if another running process holds it.")
	flags.DurationVar(&opts.RequeueTimeout, "requeue-timeout", defaultTimeout, "Requeue timeout for items with non-fatal errors. Format examples: 500ms, 12s, 10m, 3m30s, 3h")
	flags.BoolVarP(&opts.PrintHelp, "help", "h", false, "Print help message")
	err := parse(flags, args)
	if err == nil && opts.NumWorkers < 1 {
		err = fmt.Errorf("--workers must be at least 1")
	}
	return opts, flags, err
}

func parse(flags *pflag.FlagSet, args []string) error {
	flags.SetOutput(io.Discard)
	err := flags.Parse(args)
	flags.SetOutput(os.Stderr)
	return err
}

// PrintUsage writes a usage message with the flag defaults and the
// environment message to w.
func PrintUsage(w io.Writer, description string, flags *pflag.FlagSet) {
	fmt.Fprintln(w, description)
	fmt.Fprintln(w)
	fmt.Fprintln(w, flags.FlagUsages())
	fmt.Fprintln(w, EnvMessage)
}
