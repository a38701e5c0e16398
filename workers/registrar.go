package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/op/go-logging"
	"github.com/workledger/registry-services/constants"
	"github.com/workledger/registry-services/ledger"
	"github.com/workledger/registry-services/models/service"
	"github.com/workledger/registry-services/network"
	"github.com/workledger/registry-services/registration"
	"github.com/workledger/registry-services/util"
)

// RegistrationRequest is the body of a message on the registration
// topic. UploadKey names the file in the upload store.
type RegistrationRequest struct {
	UploadKey string `json:"upload_key"`
	Title     string `json:"title"`
	WorkType  string `json:"work_type,omitempty"`
	Metadata  string `json:"metadata,omitempty"`
}

// RegistrationRequestFromJson parses and checks a message body.
func RegistrationRequestFromJson(data []byte) (*RegistrationRequest, error) {
	request := &RegistrationRequest{}
	if err := json.Unmarshal(data, request); err != nil {
		return nil, err
	}
	request.UploadKey = strings.TrimSpace(request.UploadKey)
	request.Title = strings.TrimSpace(request.Title)
	if request.UploadKey == "" {
		return nil, fmt.Errorf("upload_key is required")
	}
	if request.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !util.HasAllowedExtension(request.UploadKey) {
		return nil, fmt.Errorf("file type of %s is not allowed", request.UploadKey)
	}
	if request.WorkType != "" && !util.StringListContains(constants.WorkTypes, request.WorkType) {
		return nil, fmt.Errorf("unknown work type %s", request.WorkType)
	}
	return request, nil
}

func (request *RegistrationRequest) ToJson() ([]byte, error) {
	return json.Marshal(request)
}

// Settings control how the registrar reads from NSQ and what it
// does with failures.
type Settings struct {
	// MaxAttempts is the most times we'll try a request. Only
	// requests that failed before anything was submitted to the
	// ledger are ever requeued.
	MaxAttempts int

	// MaxFileSize is the largest upload we'll register. Zero means
	// no limit.
	MaxFileSize int64

	NSQChannel string
	NSQTopic   string

	// NumWorkers is the number of registrations to run at once.
	NumWorkers int

	// ReceiptDir, if set, is where receipts for committed
	// registrations are written.
	ReceiptDir string

	RequeueTimeout time.Duration
}

func DefaultSettings() *Settings {
	return &Settings{
		MaxAttempts:    1,
		MaxFileSize:    constants.MaxFileSize,
		NSQChannel:     constants.TopicRegistration + "_worker_chan",
		NSQTopic:       constants.TopicRegistration,
		NumWorkers:     3,
		RequeueTimeout: 1 * time.Minute,
	}
}

// Registrar registers works named in NSQ messages, signing with one
// account.
type Registrar struct {
	Engine      *registration.Engine
	UploadStore network.UploadStore
	Signer      ledger.Signer

	// Identifier fills in the work type when a request has none.
	// If nil, the engine's default work type applies.
	Identifier *util.WorkTypeIdentifier

	Logger   *logging.Logger
	Settings *Settings

	// ItemsInProcess tracks the uploads we're registering right now.
	// NSQ does not dedupe messages, so the worker must.
	ItemsInProcess *service.InProcessList

	// ProcessChannel is where the registrations actually happen.
	ProcessChannel chan *Task

	// NSQConsumer implements HandleMessage to receive messages from NSQ.
	NSQConsumer *nsq.Consumer
}

// NewRegistrar returns a registrar with its worker goroutines running.
// Call RegisterAsNsqConsumer to start receiving messages.
func NewRegistrar(engine *registration.Engine, uploadStore network.UploadStore, signer ledger.Signer, settings *Settings, logger *logging.Logger) *Registrar {
	if settings.NumWorkers < 1 {
		settings.NumWorkers = 1
	}
	registrar := &Registrar{
		Engine:         engine,
		UploadStore:    uploadStore,
		Signer:         signer,
		Logger:         logger,
		Settings:       settings,
		ItemsInProcess: service.NewInProcessList(settings.NumWorkers * 20),
		ProcessChannel: make(chan *Task, settings.NumWorkers),
	}
	for i := 0; i < settings.NumWorkers; i++ {
		go registrar.ProcessItems()
	}
	return registrar
}

// RegisterAsNsqConsumer registers this worker as an NSQ consumer on
// Settings.NSQTopic and Settings.NSQChannel. As soon as you call
// this, the worker starts handling messages.
func (r *Registrar) RegisterAsNsqConsumer(nsqLookupd string) error {
	config := nsq.NewConfig()
	config.Set("heartbeat_interval", "10s")
	config.Set("max_in_flight", r.Settings.NumWorkers)
	consumer, err := nsq.NewConsumer(r.Settings.NSQTopic, r.Settings.NSQChannel, config)
	if err != nil {
		return err
	}
	r.NSQConsumer = consumer
	r.NSQConsumer.AddHandler(r)
	if err = r.NSQConsumer.ConnectToNSQLookupd(nsqLookupd); err != nil {
		return err
	}
	r.Logger.Infof("Registered as NSQ consumer on %s/%s", r.Settings.NSQTopic, r.Settings.NSQChannel)
	return nil
}

// HandleMessage queues a registration for the message, unless the
// message is bad or we're already registering the same upload.
// Returning nil tells NSQ we've got it.
func (r *Registrar) HandleMessage(message *nsq.Message) error {
	request, err := RegistrationRequestFromJson(message.Body)
	if err != nil {
		r.Logger.Errorf("Discarding bad registration request %q: %v", string(message.Body), err)
		return nil
	}
	if !r.ItemsInProcess.AddIfAbsent(request.UploadKey) {
		r.Logger.Infof("Skipping %s: already registering it", request.UploadKey)
		return nil
	}
	task := NewTask(message, request)
	task.NSQStart()
	r.ProcessChannel <- task
	return nil
}

// ProcessItems runs registrations from ProcessChannel until it closes.
func (r *Registrar) ProcessItems() {
	for task := range r.ProcessChannel {
		r.ProcessItem(task)
	}
}

// ProcessItem runs one registration, then finishes or requeues its
// message.
func (r *Registrar) ProcessItem(task *Task) {
	defer r.ItemsInProcess.Remove(task.Request.UploadKey)
	ctx := context.Background()
	request := task.Request
	r.Logger.Infof("Registering %s (%s)", request.UploadKey, request.Title)

	workType := request.WorkType
	if workType == "" && r.Identifier != nil {
		workType = r.identify(ctx, request.UploadKey)
	}

	content, err := r.UploadStore.Open(ctx, request.UploadKey)
	if err != nil {
		r.Logger.Errorf("Cannot open upload %s: %v", request.UploadKey, err)
		r.finishOrRequeue(task, false)
		return
	}
	result, err := r.Engine.Register(ctx, &registration.Request{
		Content:  util.NewSizeLimitReader(content, r.Settings.MaxFileSize),
		Title:    request.Title,
		WorkType: workType,
		Metadata: request.Metadata,
		Signer:   r.Signer,
	})
	content.Close()
	task.Result = result

	switch {
	case err == nil && result.Committed():
		r.Logger.Infof("Registered %s as %s", request.UploadKey, result.WorkID)
		r.writeReceipt(result)
		task.NSQFinish()
	case err == nil:
		r.Logger.Infof("%s is already registered as %s", request.UploadKey, result.WorkID)
		task.NSQFinish()
	case errors.Is(err, util.ErrFileTooLarge):
		r.Logger.Errorf("Not registering %s: %v", request.UploadKey, err)
		task.NSQFinish()
	default:
		r.Logger.Errorf("Registration of %s failed: %v", request.UploadKey, err)
		r.finishOrRequeue(task, result.Handle != "")
	}
}

// finishOrRequeue requeues the task if nothing reached the ledger and
// it has attempts left. Anything submitted is never retried, because
// a second submission would be paid for twice.
func (r *Registrar) finishOrRequeue(task *Task, submitted bool) {
	if !submitted && int(task.NSQMessage.Attempts) < r.Settings.MaxAttempts {
		r.Logger.Infof("Requeueing %s for attempt %d", task.Request.UploadKey, task.NSQMessage.Attempts+1)
		task.NSQRequeue(r.Settings.RequeueTimeout)
		return
	}
	task.NSQFinish()
}

func (r *Registrar) identify(ctx context.Context, key string) string {
	content, err := r.UploadStore.Open(ctx, key)
	if err != nil {
		return ""
	}
	defer content.Close()
	workType := r.Identifier.Identify(content, key)
	r.Logger.Infof("Identified %s as %s", key, workType)
	return workType
}

func (r *Registrar) writeReceipt(result *service.RegistrationResult) {
	if r.Settings.ReceiptDir == "" {
		return
	}
	path, err := result.WriteReceipt(r.Settings.ReceiptDir)
	if err != nil {
		r.Logger.Warningf("Could not write receipt for %s: %v", result.WorkID, err)
		return
	}
	r.Logger.Infof("Wrote receipt %s", path)
}

// Stop disconnects from NSQ. Registrations already running finish.
func (r *Registrar) Stop() {
	if r.NSQConsumer != nil {
		r.NSQConsumer.Stop()
		<-r.NSQConsumer.StopChan
	}
}
