package workers

import (
	"sync"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/workledger/registry-services/models/service"
)

// TouchInterval is how often a task touches its NSQ message while
// the registration is running. A registration can spend minutes
// waiting for the ledger to settle.
var TouchInterval = 30 * time.Second

// Task is one registration request making its way through a worker.
type Task struct {
	// NSQMessage is the NSQ message the worker is processing.
	NSQMessage *nsq.Message

	// Request is the parsed message body.
	Request *RegistrationRequest

	// Result describes how the registration went. It's nil until
	// the engine has run.
	Result *service.RegistrationResult

	nsqStopChannel chan bool
	stopOnce       sync.Once

	// For testing
	nsqStartCalled bool
	tickerStopped  bool
	mutex          sync.Mutex
}

func NewTask(message *nsq.Message, request *RegistrationRequest) *Task {
	return &Task{
		NSQMessage: message,
		Request:    request,
	}
}

// NSQStart takes over responding to the message and starts a ticker
// that touches it until the task finishes or is requeued.
func (task *Task) NSQStart() {
	task.NSQMessage.DisableAutoResponse()
	ticker := time.NewTicker(TouchInterval)
	stopChannel := make(chan bool)
	go func() {
		for {
			select {
			case <-ticker.C:
				task.NSQMessage.Touch()
			case <-stopChannel:
				ticker.Stop()
				task.mutex.Lock()
				task.tickerStopped = true
				task.mutex.Unlock()
				return
			}
		}
	}()
	task.nsqStartCalled = true
	task.nsqStopChannel = stopChannel
}

func (task *Task) stopTicker() {
	task.stopOnce.Do(func() {
		if task.nsqStopChannel != nil {
			task.nsqStopChannel <- true
		}
	})
}

// NSQRequeue requeues the message with the specified delay and stops
// sending touches.
func (task *Task) NSQRequeue(delay time.Duration) {
	task.stopTicker()
	task.NSQMessage.Requeue(delay)
}

// NSQFinish finishes the message and stops sending touches.
func (task *Task) NSQFinish() {
	task.stopTicker()
	task.NSQMessage.Finish()
}

// StartCalled returns true if NSQStart() has been called on this object.
// This method exists for testing purposes.
func (task *Task) StartCalled() bool {
	return task.nsqStartCalled
}

// TickerStopped returns true once the touch ticker has shut down
// after NSQFinish() or NSQRequeue(). This method exists for testing
// purposes.
func (task *Task) TickerStopped() bool {
	task.mutex.Lock()
	defer task.mutex.Unlock()
	return task.tickerStopped
}
