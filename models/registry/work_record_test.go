package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/registry-services/models/registry"
)

var bloomsday, _ = time.Parse(time.RFC3339, "1904-06-16T15:04:05Z")

var record = &registry.WorkRecord{
	ContentHash:  "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
	Creator:      "0x5768097d5deee4fb729db86874c988499cfb26ac",
	Metadata:     "Original artwork",
	RegisteredAt: bloomsday,
	Title:        "Sunset Painting",
	WorkID:       "WORK-1A2B3C4D",
	WorkType:     "image",
}

var recordJson = `{"content_hash":"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824","creator":"0x5768097d5deee4fb729db86874c988499cfb26ac","metadata":"Original artwork","registered_at":"1904-06-16T15:04:05Z","title":"Sunset Painting","work_id":"WORK-1A2B3C4D","work_type":"image"}`

func TestWorkRecordFromJson(t *testing.T) {
	actual, err := registry.WorkRecordFromJson([]byte(recordJson))
	require.Nil(t, err)
	assert.Equal(t, record, actual)

	_, err = registry.WorkRecordFromJson([]byte("{not json"))
	assert.NotNil(t, err)
}

func TestWorkRecordToJson(t *testing.T) {
	actualJson, err := record.ToJson()
	require.Nil(t, err)
	assert.Equal(t, recordJson, string(actualJson))
}

func TestWorkRecordShortHash(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e...73043362938b9824", record.ShortHash())
	short := &registry.WorkRecord{ContentHash: "abc"}
	assert.Equal(t, "abc", short.ShortHash())
}
