package main

import (
	"context"
	"fmt"
	"os"

	"github.com/workledger/registry-services/models/common"
	"github.com/workledger/registry-services/registration"
	"github.com/workledger/registry-services/util"
	"github.com/workledger/registry-services/util/cli"
)

const description = `
work_register records a file's content hash on the ledger, along with
a title, a work type and optional metadata. The registration is signed
with the key in KEYSTORE_FILE. You'll be prompted for the keystore
passphrase unless WR_KEYSTORE_PASSPHRASE is set.

If --type is omitted, the type is detected from the file's format.

On success, a receipt is written to RECEIPT_DIR.

Exit codes:
  0 - Registered
  1 - Failed
  2 - Already registered
  3 - Bad options
`

func main() {
	opts, flags, err := cli.ParseRegisterOptions(os.Args[1:])
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

func run(opts *cli.RegisterOptions) int {
	ctx := common.NewContext()
	config := ctx.Config

	if !util.HasAllowedExtension(opts.File) {
		fmt.Fprintf(os.Stderr, "File type of %s is not allowed\n", opts.File)
		return 3
	}
	stat, err := os.Stat(opts.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot read %s: %v\n", opts.File, err)
		return 1
	}
	if config.MaxFileSize > 0 && stat.Size() > config.MaxFileSize {
		fmt.Fprintf(os.Stderr, "%s is %d bytes. The limit is %d.\n", opts.File, stat.Size(), config.MaxFileSize)
		return 1
	}

	passphrase, err := cli.ReadPassphrase("Keystore passphrase: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	signer, err := cli.UnlockSigner(config.KeystoreFile, passphrase)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	workType := opts.WorkType
	if workType == "" {
		workType = identify(opts.File)
	}

	file, err := os.Open(opts.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open %s: %v\n", opts.File, err)
		return 1
	}
	defer file.Close()

	engine := registration.NewEngine(ctx.LedgerClient, nil, registration.SettingsFromConfig(config), ctx.Logger)
	engine.Publisher = ctx.NSQClient
	result, err := engine.Register(context.Background(), &registration.Request{
		Content:  file,
		Title:    opts.Title,
		WorkType: workType,
		Metadata: opts.Metadata,
		Signer:   signer,
	})
	cli.PrintRegistration(os.Stdout, result)
	if err != nil {
		ctx.Logger.Errorf("Registering %s: %v", opts.File, err)
		return 1
	}
	if !result.Committed() {
		return 2
	}
	if config.ReceiptDir != "" {
		path, err := result.WriteReceipt(config.ReceiptDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not write receipt: %v\n", err)
		} else {
			fmt.Printf("   Receipt:            %s\n", path)
		}
	}
	return 0
}

func identify(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()
	return util.NewWorkTypeIdentifier().Identify(file, path)
}
