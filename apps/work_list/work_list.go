package main

import (
	"context"
	"fmt"
	"os"

	"github.com/workledger/registry-services/models/common"
	"github.com/workledger/registry-services/resolution"
	"github.com/workledger/registry-services/util/cli"
)

const description = `
work_list prints every work registered by a creator. The creator
defaults to ACCOUNT_ADDRESS from the config.
`

func main() {
	opts, flags, err := cli.ParseListOptions(os.Args[1:])
	if opts.PrintHelp {
		cli.PrintUsage(os.Stdout, description, flags)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cli.PrintUsage(os.Stderr, description, flags)
		os.Exit(3)
	}

	ctx := common.NewContext()
	creator := opts.Creator
	if creator == "" {
		creator = ctx.Config.AccountAddress
	}
	if creator == "" {
		fmt.Fprintln(os.Stderr, "No creator given and ACCOUNT_ADDRESS is not set")
		os.Exit(3)
	}

	engine := resolution.NewEngine(ctx.LedgerClient, nil, ctx.Logger)
	records, err := engine.ListByCreator(context.Background(), creator)
	if err != nil {
		ctx.Logger.Errorf("Listing works by %s: %v", creator, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cli.PrintWorkList(os.Stdout, creator, records)
}
