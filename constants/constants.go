package constants

import "time"

const (
	DefaultChunkSize      = 4096
	DefaultWorkType       = "general"
	HashPrefix            = "0x"
	MaxFileSize           = 16 * 1024 * 1024
	ReceiptFilePrefix     = "registration_"
	ResourceMarginPercent = 20
	TopicRegistration     = "registration_topic"
	TopicRegistered       = "registered_topic"
	WorkIDPrefix          = "WORK-"
)

// FallbackResourceLimit is the resource ceiling used when the ledger
// cannot estimate the cost of a registration.
const FallbackResourceLimit uint64 = 500000

// ConfirmationTimeout is how long we wait for the ledger to settle
// a submitted registration.
const ConfirmationTimeout = 120 * time.Second

const (
	WorkTypeCode        = "code"
	WorkTypeImage       = "image"
	WorkTypeMusic       = "music"
	WorkTypeOther       = "other"
	WorkTypePhotography = "photography"
	WorkTypeText        = "text"
	WorkTypeVideo       = "video"
)

var WorkTypes = []string{
	DefaultWorkType,
	WorkTypeCode,
	WorkTypeImage,
	WorkTypeMusic,
	WorkTypeOther,
	WorkTypePhotography,
	WorkTypeText,
	WorkTypeVideo,
}

// AllowedExtensions lists the upload file extensions the registrar
// accepts.
var AllowedExtensions = []string{
	"doc",
	"docx",
	"gif",
	"jpeg",
	"jpg",
	"mp3",
	"mp4",
	"pdf",
	"png",
	"txt",
}
