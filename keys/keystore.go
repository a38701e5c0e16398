// Package keys holds signing key custody. Keys are kept on disk as
// age-encrypted ed25519 seeds, locked with a passphrase.
package keys

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// ErrCannotUnlock means the keystore could not be decrypted with the
// passphrase we were given. This is never a ledger error.
var ErrCannotUnlock = errors.New("cannot unlock signer")

// DefaultWorkFactor is the scrypt work factor (log2 N) used for new
// keystores.
const DefaultWorkFactor = 18

// Keystore is an encrypted signing key.
type Keystore struct {
	ciphertext []byte
}

// LoadKeystore reads an armored keystore file.
func LoadKeystore(path string) (*Keystore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keystore %s: %w", path, err)
	}
	return &Keystore{ciphertext: data}, nil
}

// NewKeystore wraps armored keystore bytes already in memory.
func NewKeystore(data []byte) *Keystore {
	return &Keystore{ciphertext: data}
}

// Decrypt unlocks the keystore. Any failure to decrypt, including a
// wrong passphrase, comes back wrapping ErrCannotUnlock.
func (k *Keystore) Decrypt(passphrase string) (*Signer, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotUnlock, err)
	}
	reader, err := age.Decrypt(armor.NewReader(bytes.NewReader(k.ciphertext)), identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotUnlock, err)
	}
	seed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotUnlock, err)
	}
	signer, err := NewSigner(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotUnlock, err)
	}
	return signer, nil
}

// Encrypt returns an armored keystore for signer, locked with
// passphrase. workFactor is the scrypt log2 N; zero means
// DefaultWorkFactor.
func Encrypt(signer *Signer, passphrase string, workFactor int) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, err
	}
	if workFactor == 0 {
		workFactor = DefaultWorkFactor
	}
	recipient.SetWorkFactor(workFactor)

	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)
	writer, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(signer.seed()); err != nil {
		return nil, fmt.Errorf("writing seed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}
	return buf.Bytes(), nil
}

// CreateKeystore encrypts signer and writes the keystore to path.
func CreateKeystore(path string, signer *Signer, passphrase string, workFactor int) error {
	data, err := Encrypt(signer, passphrase, workFactor)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
