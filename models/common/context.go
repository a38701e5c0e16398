package common

import (
	"fmt"

	"github.com/op/go-logging"
	"github.com/workledger/registry-services/network"
	"github.com/workledger/registry-services/util/logger"
)

// Context holds the config and the long-lived clients that the
// apps and workers share.
type Context struct {
	Config       *Config
	Logger       *logging.Logger
	LedgerClient *network.LedgerClient
	NSQClient    *network.NSQClient
	UploadStore  network.UploadStore
}

// NewContext builds a context from the config named in the
// environment. Log output goes to a file in the configured log dir.
func NewContext() *Context {
	config := NewConfig()
	_logger, _ := logger.InitLogger(config.LogDir, config.LogLevel)
	return NewContextWithLogger(config, _logger)
}

// NewContextWithLogger builds a context from config, logging to
// the given logger. Panics if the upload store can't be set up.
func NewContextWithLogger(config *Config, _logger *logging.Logger) *Context {
	uploadStore, err := getUploadStore(config, _logger)
	if err != nil {
		panic(fmt.Sprintf("Could not initialize upload store: %v", err))
	}
	return &Context{
		Config:       config,
		Logger:       _logger,
		LedgerClient: getLedgerClient(config, _logger),
		NSQClient:    network.NewNSQClient(config.NsqURL),
		UploadStore:  uploadStore,
	}
}

func getLedgerClient(config *Config, _logger *logging.Logger) *network.LedgerClient {
	return network.NewLedgerClient(
		config.LedgerRedisURL,
		config.LedgerRedisPassword,
		config.LedgerRedisDB,
		config.NetworkID,
		_logger)
}

// Uploads come from S3 when an S3 host is configured, otherwise
// from the local upload dir.
func getUploadStore(config *Config, _logger *logging.Logger) (network.UploadStore, error) {
	if config.S3Host == "" {
		return network.NewLocalUploadStore(config.UploadDir), nil
	}
	client, err := network.NewS3Client(config.S3Host, config.S3Key, config.S3Secret, config.S3UseSSL)
	if err != nil {
		return nil, err
	}
	if config.LogLevel == logging.DEBUG {
		client.TraceOn(NewTracer(_logger))
	}
	return network.NewS3UploadStore(client, config.UploadBucket), nil
}
