package common

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/op/go-logging"
	"github.com/spf13/viper"
	"github.com/workledger/registry-services/constants"
	"github.com/workledger/registry-services/util"
)

type Config struct {
	AccountAddress        string
	ConfigName            string
	ConfirmationTimeout   time.Duration
	FallbackResourceLimit uint64
	KeystoreFile          string
	LedgerRedisDB         int
	LedgerRedisPassword   string `json:"-"`
	LedgerRedisURL        string
	LogDir                string
	LogLevel              logging.Level
	MaxFileSize           int64
	NetworkID             int64
	NsqLookupd            string
	NsqURL                string
	ReceiptDir            string
	ResourceMarginPercent uint64
	S3Host                string
	S3Key                 string `json:"-"`
	S3Secret              string `json:"-"`
	S3UseSSL              bool
	UploadBucket          string
	UploadDir             string
}

var logLevels = map[string]logging.Level{
	"CRITICAL": logging.CRITICAL,
	"ERROR":    logging.ERROR,
	"WARNING":  logging.WARNING,
	"NOTICE":   logging.NOTICE,
	"INFO":     logging.INFO,
	"DEBUG":    logging.DEBUG,
}

// Returns a new config based on ENV vars WR_CONFIG_DIR and
// WR_SERVICES_CONFIG. Panics if the config can't be loaded.
func NewConfig() *Config {
	configDir, envName := getEnvVars()
	config, err := LoadConfig(configDir, envName)
	if err != nil {
		panic(err)
	}
	return config
}

// LoadConfig reads the file .env.<envName> from configDir.
func LoadConfig(configDir, envName string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configDir)
	v.SetConfigName(".env." + envName)
	v.SetConfigType("env")
	setDefaults(v)
	err := v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("Fatal error config file: %s", err)
	}
	config := &Config{
		AccountAddress:        v.GetString("ACCOUNT_ADDRESS"),
		ConfigName:            envName,
		ConfirmationTimeout:   v.GetDuration("CONFIRMATION_TIMEOUT"),
		FallbackResourceLimit: v.GetUint64("FALLBACK_RESOURCE_LIMIT"),
		KeystoreFile:          v.GetString("KEYSTORE_FILE"),
		LedgerRedisDB:         v.GetInt("LEDGER_REDIS_DB"),
		LedgerRedisPassword:   v.GetString("LEDGER_REDIS_PASSWORD"),
		LedgerRedisURL:        v.GetString("LEDGER_REDIS_URL"),
		LogDir:                v.GetString("LOG_DIR"),
		LogLevel:              logLevels[v.GetString("LOG_LEVEL")],
		MaxFileSize:           v.GetInt64("MAX_FILE_SIZE"),
		NetworkID:             v.GetInt64("NETWORK_ID"),
		NsqLookupd:            v.GetString("NSQ_LOOKUPD"),
		NsqURL:                v.GetString("NSQ_URL"),
		ReceiptDir:            v.GetString("RECEIPT_DIR"),
		ResourceMarginPercent: v.GetUint64("RESOURCE_MARGIN_PERCENT"),
		S3Host:                v.GetString("S3_HOST"),
		S3Key:                 v.GetString("S3_KEY"),
		S3Secret:              v.GetString("S3_SECRET"),
		S3UseSSL:              v.GetBool("S3_USE_SSL"),
		UploadBucket:          v.GetString("UPLOAD_BUCKET"),
		UploadDir:             v.GetString("UPLOAD_DIR"),
	}
	if err = config.expandPaths(); err != nil {
		return nil, err
	}
	if err = config.validate(); err != nil {
		return nil, err
	}
	return config, config.makeDirs()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CONFIRMATION_TIMEOUT", constants.ConfirmationTimeout)
	v.SetDefault("FALLBACK_RESOURCE_LIMIT", constants.FallbackResourceLimit)
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("MAX_FILE_SIZE", constants.MaxFileSize)
	v.SetDefault("RESOURCE_MARGIN_PERCENT", constants.ResourceMarginPercent)
}

func getEnvVars() (string, string) {
	configDir := getRequiredEnvVar("WR_CONFIG_DIR")
	envName := getRequiredEnvVar("WR_SERVICES_CONFIG")
	return configDir, envName
}

func getRequiredEnvVar(varName string) string {
	value := os.Getenv(varName)
	if value == "" {
		panic(fmt.Sprintf("Required env var %s not set", varName))
	}
	return value
}

// Expand ~ to home dir in path settings.
func (c *Config) expandPaths() error {
	paths := []*string{
		&c.KeystoreFile,
		&c.LogDir,
		&c.ReceiptDir,
		&c.UploadDir,
	}
	for _, p := range paths {
		expanded, err := util.ExpandTilde(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

func (c *Config) validate() error {
	if c.LedgerRedisURL == "" {
		return fmt.Errorf("Config is missing LEDGER_REDIS_URL")
	}
	if c.NetworkID == 0 {
		return fmt.Errorf("Config is missing NETWORK_ID")
	}
	if c.ConfirmationTimeout <= 0 {
		return fmt.Errorf("CONFIRMATION_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) makeDirs() error {
	dirs := []string{
		c.LogDir,
		c.ReceiptDir,
		c.UploadDir,
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

// ToJSON serializes the config, leaving out passwords and keys.
func (c *Config) ToJSON() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
