package testutil

import (
	"crypto/rand"
	"time"

	"github.com/op/go-logging"
	"github.com/workledger/registry-services/keys"
	"github.com/workledger/registry-services/models/registry"
	"github.com/workledger/registry-services/util/logger"
)

var Bloomsday, _ = time.Parse(time.RFC3339, "1904-06-16T15:04:05Z")

const (
	HelloHash    = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	WorldHash    = "486ea46224d1bb4fb680f34f7c9ad96a8f24ec88be73ea8e5a6c65260e9cb8a7"
	TestCreator  = "0x5768097d5deee4fb729db86874c988499cfb26ac"
	TestWorkID   = "WORK-1A2B3C4D"
	TestPassword = "correct horse battery staple"
)

// GetWorkRecord returns a record for the bytes "hello".
func GetWorkRecord() *registry.WorkRecord {
	return &registry.WorkRecord{
		ContentHash:  HelloHash,
		Creator:      TestCreator,
		Metadata:     "Original artwork",
		RegisteredAt: Bloomsday,
		Title:        "Sunset Painting",
		WorkID:       TestWorkID,
		WorkType:     "text",
	}
}

// GetSigner returns a signer with a fresh random key.
func GetSigner() *keys.Signer {
	signer, err := keys.GenerateSigner(rand.Reader)
	if err != nil {
		panic(err)
	}
	return signer
}

// GetLogger returns a logger that writes nowhere.
func GetLogger() *logging.Logger {
	return logger.DiscardLogger("test")
}
