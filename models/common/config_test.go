package common_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/registry-services/constants"
	"github.com/workledger/registry-services/models/common"
	"github.com/workledger/registry-services/util"
)

func configDir() string {
	return filepath.Join(util.ProjectRoot(), "config")
}

func TestNewConfig(t *testing.T) {
	t.Setenv("WR_CONFIG_DIR", configDir())
	t.Setenv("WR_SERVICES_CONFIG", "test")
	config := common.NewConfig()
	assert.Equal(t, "test", config.ConfigName)
	assert.EqualValues(t, 110261, config.NetworkID)
	assert.Equal(t, logging.DEBUG, config.LogLevel)
	assert.Equal(t, 5*time.Second, config.ConfirmationTimeout)
	assert.EqualValues(t, 500000, config.FallbackResourceLimit)
	assert.EqualValues(t, 20, config.ResourceMarginPercent)
	assert.EqualValues(t, 16777216, config.MaxFileSize)
	assert.Equal(t, "uploads", config.UploadBucket)
	assert.False(t, config.S3UseSSL)
	assert.True(t, util.FileExists(config.LogDir))
	assert.True(t, util.FileExists(config.ReceiptDir))
}

func TestNewConfigMissingEnv(t *testing.T) {
	t.Setenv("WR_CONFIG_DIR", "")
	assert.Panics(t, func() { common.NewConfig() })
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := common.LoadConfig(configDir(), "minimal")
	require.Nil(t, err)
	assert.EqualValues(t, 7, config.NetworkID)
	assert.Equal(t, logging.INFO, config.LogLevel)
	assert.Equal(t, constants.ConfirmationTimeout, config.ConfirmationTimeout)
	assert.Equal(t, constants.FallbackResourceLimit, config.FallbackResourceLimit)
	assert.EqualValues(t, constants.ResourceMarginPercent, config.ResourceMarginPercent)
	assert.EqualValues(t, constants.MaxFileSize, config.MaxFileSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := common.LoadConfig(configDir(), "does-not-exist")
	assert.NotNil(t, err)
}

func TestConfigToJSON(t *testing.T) {
	config, err := common.LoadConfig(configDir(), "test")
	require.Nil(t, err)
	data := config.ToJSON()
	assert.Contains(t, data, "localhost:6379")
	assert.NotContains(t, data, "secret-redis-password")
}
