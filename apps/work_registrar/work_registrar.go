package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/workledger/registry-services/models/common"
	"github.com/workledger/registry-services/registration"
	"github.com/workledger/registry-services/util"
	"github.com/workledger/registry-services/util/cli"
	"github.com/workledger/registry-services/workers"
)

const description = `
work_registrar registers uploaded works named in messages on the NSQ
registration_topic. Uploads are read from UPLOAD_BUCKET on S3_HOST, or
from UPLOAD_DIR when no S3 host is configured. Every registration is
signed with the key in KEYSTORE_FILE, so set WR_KEYSTORE_PASSPHRASE or
be ready to type the passphrase at startup.

Committed registrations are published to registered_topic, and their
receipts are written to RECEIPT_DIR.

Only one registrar should sign with a given key at a time. Use
--pid-file to enforce that.
`

func main() {
	opts, flags, err := cli.ParseWorkerOptions("work_registrar", os.Args[1:])
	if opts.PrintHelp {
		cli.PrintUsage(os.Stdout, description, flags)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cli.PrintUsage(os.Stderr, description, flags)
		os.Exit(3)
	}

	var pidFile *util.PidFile
	if opts.PidFile != "" {
		pidFile = util.NewPidFile(opts.PidFile)
		if err := pidFile.Acquire(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer pidFile.Release()
	}

	// This panics if the config is missing or incomplete.
	ctx := common.NewContext()
	config := ctx.Config

	passphrase, err := cli.ReadPassphrase("Keystore passphrase: ")
	if err != nil {
		ctx.Logger.Fatal(err)
	}
	signer, err := cli.UnlockSigner(config.KeystoreFile, passphrase)
	if err != nil {
		ctx.Logger.Fatal(err)
	}
	ctx.Logger.Infof("Signing as %s", signer.Address())

	engine := registration.NewEngine(ctx.LedgerClient, nil, registration.SettingsFromConfig(config), ctx.Logger)
	engine.Publisher = ctx.NSQClient

	settings := workers.DefaultSettings()
	settings.MaxAttempts = opts.MaxAttempts
	settings.MaxFileSize = config.MaxFileSize
	settings.NumWorkers = opts.NumWorkers
	settings.ReceiptDir = config.ReceiptDir
	settings.RequeueTimeout = opts.RequeueTimeout

	registrar := workers.NewRegistrar(engine, ctx.UploadStore, signer, settings, ctx.Logger)
	registrar.Identifier = util.NewWorkTypeIdentifier()
	if err := registrar.RegisterAsNsqConsumer(config.NsqLookupd); err != nil {
		ctx.Logger.Fatalf("Cannot connect to NSQ lookupd at %s: %v", config.NsqLookupd, err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		ctx.Logger.Infof("Caught %s, shutting down", sig)
		registrar.NSQConsumer.Stop()
	}()

	<-registrar.NSQConsumer.StopChan
	ctx.Logger.Info("Registrar stopped")
}
