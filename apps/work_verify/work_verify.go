package main

import (
	"context"
	"fmt"
	"os"

	"github.com/workledger/registry-services/models/common"
	"github.com/workledger/registry-services/models/service"
	"github.com/workledger/registry-services/resolution"
	"github.com/workledger/registry-services/util/cli"
)

const description = `
work_verify checks whether a work is registered. Look it up by
registration id (--id), by content hash (--hash) or by file (--file).

If you give more than one, the id is looked up first and the hash or
file is checked against the registered work. A hash takes precedence
over a file.

Exit codes:
  0 - Found, and any hash or file given matches
  1 - Error
  2 - Not registered, or hash or file does not match
  3 - Bad options
`

func main() {
	opts, flags, err := cli.ParseVerifyOptions(os.Args[1:])
	if opts.PrintHelp {
		cli.PrintUsage(os.Stdout, description, flags)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cli.PrintUsage(os.Stderr, description, flags)
		os.Exit(3)
	}
	os.Exit(run(opts))
}

func run(opts *cli.VerifyOptions) int {
	ctx := common.NewContext()
	query := &resolution.Query{
		WorkID:   opts.WorkID,
		HashText: opts.Hash,
	}
	if opts.File != "" {
		file, err := os.Open(opts.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open %s: %v\n", opts.File, err)
			return 1
		}
		defer file.Close()
		query.File = file
	}

	engine := resolution.NewEngine(ctx.LedgerClient, nil, ctx.Logger)
	result, err := engine.Resolve(context.Background(), query)
	if err != nil {
		ctx.Logger.Errorf("Resolving %+v: %v", opts, err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cli.PrintResolution(os.Stdout, result)
	switch {
	case result.Outcome == service.OutcomeMissingInput:
		return 3
	case !result.Found() || result.Verdict == service.VerdictUnmatched:
		return 2
	}
	return 0
}
