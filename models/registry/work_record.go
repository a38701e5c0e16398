package registry

import (
	"encoding/json"
	"time"
)

// WorkRecord is the ledger's entry for a registered work. The ledger
// creates it once, when a registration settles successfully, and
// never changes it after that.
type WorkRecord struct {
	ContentHash  string    `json:"content_hash"`
	Creator      string    `json:"creator"`
	Metadata     string    `json:"metadata"`
	RegisteredAt time.Time `json:"registered_at"`
	Title        string    `json:"title"`
	WorkID       string    `json:"work_id"`
	WorkType     string    `json:"work_type"`
}

func WorkRecordFromJson(jsonData []byte) (*WorkRecord, error) {
	record := &WorkRecord{}
	err := json.Unmarshal(jsonData, record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (record *WorkRecord) ToJson() ([]byte, error) {
	return json.Marshal(record)
}

// ShortHash returns an abbreviated form of the content hash suitable
// for list displays: the first and last 16 characters.
func (record *WorkRecord) ShortHash() string {
	if len(record.ContentHash) <= 32 {
		return record.ContentHash
	}
	return record.ContentHash[:16] + "..." + record.ContentHash[len(record.ContentHash)-16:]
}
