package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/workledger/registry-services/keys"
	"github.com/workledger/registry-services/models/common"
	"github.com/workledger/registry-services/util"
	"github.com/workledger/registry-services/util/cli"
)

const description = `
work_keygen creates a new signing key and writes it, encrypted with a
passphrase, to KEYSTORE_FILE. It prints the new account address, which
you should put in ACCOUNT_ADDRESS.

It refuses to overwrite an existing keystore unless you pass --force.
`

func main() {
	force := false
	help := false
	flags := pflag.NewFlagSet("work_keygen", pflag.ContinueOnError)
	flags.BoolVar(&force, "force", false, "Overwrite an existing keystore")
	flags.BoolVarP(&help, "help", "h", false, "Print help message")
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(3)
	}
	if help {
		cli.PrintUsage(os.Stdout, description, flags)
		os.Exit(0)
	}

	config := common.NewConfig()
	if config.KeystoreFile == "" {
		fmt.Fprintln(os.Stderr, "KEYSTORE_FILE is not set")
		os.Exit(1)
	}
	if util.FileExists(config.KeystoreFile) && !force {
		fmt.Fprintf(os.Stderr, "%s already exists\n", config.KeystoreFile)
		os.Exit(1)
	}

	passphrase, err := cli.ReadPassphrase("New keystore passphrase: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	signer, err := keys.GenerateSigner(rand.Reader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := keys.CreateKeystore(config.KeystoreFile, signer, passphrase, keys.DefaultWorkFactor); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", config.KeystoreFile)
	fmt.Printf("Account address: %s\n", signer.Address())
}
