package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/workledger/registry-services/keys"
	"golang.org/x/term"
)

// PassphraseEnvVar, when set, supplies the keystore passphrase to
// workers that have no terminal to prompt on.
const PassphraseEnvVar = "WR_KEYSTORE_PASSPHRASE"

// ReadPassphrase returns the passphrase from the environment, or
// prompts for it on the terminal without echo. When stdin is not a
// terminal, it reads one line from stdin.
func ReadPassphrase(prompt string) (string, error) {
	if passphrase := os.Getenv(PassphraseEnvVar); passphrase != "" {
		return passphrase, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(os.Stdin)
	}
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(data), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// UnlockSigner loads the keystore at path and decrypts it with
// passphrase. A wrong passphrase comes back wrapping
// keys.ErrCannotUnlock.
func UnlockSigner(path, passphrase string) (*keys.Signer, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: KEYSTORE_FILE is not set", keys.ErrCannotUnlock)
	}
	keystore, err := keys.LoadKeystore(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", keys.ErrCannotUnlock, err)
	}
	return keystore.Decrypt(passphrase)
}
