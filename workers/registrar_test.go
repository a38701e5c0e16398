package workers_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/registry-services/keys"
	"github.com/workledger/registry-services/models/service"
	"github.com/workledger/registry-services/network"
	"github.com/workledger/registry-services/registration"
	"github.com/workledger/registry-services/util"
	"github.com/workledger/registry-services/util/testutil"
	"github.com/workledger/registry-services/workers"
)

// testDelegate records what the registrar did with each message.
type testDelegate struct {
	finished chan *nsq.Message
	requeued chan *nsq.Message
}

func newTestDelegate() *testDelegate {
	return &testDelegate{
		finished: make(chan *nsq.Message, 10),
		requeued: make(chan *nsq.Message, 10),
	}
}

func (d *testDelegate) OnFinish(m *nsq.Message) { d.finished <- m }
func (d *testDelegate) OnRequeue(m *nsq.Message, delay time.Duration, backoff bool) {
	d.requeued <- m
}
func (d *testDelegate) OnTouch(m *nsq.Message) {}

func (d *testDelegate) waitFinished(t *testing.T) {
	select {
	case <-d.finished:
	case <-d.requeued:
		t.Fatal("message was requeued, expected finish")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message to finish")
	}
}

func (d *testDelegate) waitRequeued(t *testing.T) {
	select {
	case <-d.requeued:
	case <-d.finished:
		t.Fatal("message was finished, expected requeue")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message to be requeued")
	}
}

func newMessage(body string, delegate nsq.MessageDelegate) *nsq.Message {
	var id nsq.MessageID
	copy(id[:], "0123456789abcdef")
	message := nsq.NewMessage(id, []byte(body))
	message.Attempts = 1
	message.Delegate = delegate
	return message
}

type registrarFixture struct {
	fake      *testutil.FakeLedger
	store     *network.LocalUploadStore
	signer    *keys.Signer
	registrar *workers.Registrar
	delegate  *testDelegate
}

func newFixture(t *testing.T, settings *workers.Settings) *registrarFixture {
	fake := testutil.NewFakeLedger()
	signer := testutil.GetSigner()
	fake.Fund(signer.Address(), 10000000)
	store := network.NewLocalUploadStore(t.TempDir())
	engine := registration.NewEngine(fake, nil, registration.DefaultSettings(), testutil.GetLogger())
	registrar := workers.NewRegistrar(engine, store, signer, settings, testutil.GetLogger())
	return &registrarFixture{
		fake:      fake,
		store:     store,
		signer:    signer,
		registrar: registrar,
		delegate:  newTestDelegate(),
	}
}

func (f *registrarFixture) upload(t *testing.T, key, content string) {
	err := f.store.Put(context.Background(), key, strings.NewReader(content), int64(len(content)))
	require.Nil(t, err)
}

func TestRegistrationRequestFromJson(t *testing.T) {
	request, err := workers.RegistrationRequestFromJson([]byte(`{"upload_key":" user1/hello.txt ","title":"T","work_type":"text"}`))
	require.Nil(t, err)
	assert.Equal(t, "user1/hello.txt", request.UploadKey)
	assert.Equal(t, "T", request.Title)
	assert.Equal(t, "text", request.WorkType)

	data, err := request.ToJson()
	require.Nil(t, err)
	assert.Contains(t, string(data), `"upload_key":"user1/hello.txt"`)

	badBodies := []string{
		`not json`,
		`{"title":"T"}`,
		`{"upload_key":"hello.txt"}`,
		`{"upload_key":"hello.exe","title":"T"}`,
		`{"upload_key":"hello.txt","title":"T","work_type":"sculpture"}`,
	}
	for _, body := range badBodies {
		_, err = workers.RegistrationRequestFromJson([]byte(body))
		assert.NotNil(t, err, body)
	}
}

func TestRegistrarRegisters(t *testing.T) {
	settings := workers.DefaultSettings()
	settings.ReceiptDir = t.TempDir()
	f := newFixture(t, settings)
	f.upload(t, "user1/hello.txt", "hello")

	message := newMessage(`{"upload_key":"user1/hello.txt","title":"T","work_type":"text"}`, f.delegate)
	require.Nil(t, f.registrar.HandleMessage(message))
	f.delegate.waitFinished(t)

	workID, err := f.fake.ExistsByContent(context.Background(), testutil.HelloHash)
	require.Nil(t, err)
	require.NotEmpty(t, workID)
	assert.False(t, f.registrar.ItemsInProcess.Contains("user1/hello.txt"))

	data, err := os.ReadFile(filepath.Join(settings.ReceiptDir, "registration_"+workID+".json"))
	require.Nil(t, err)
	receipt, err := service.RegistrationResultFromJson(data)
	require.Nil(t, err)
	assert.Equal(t, service.OutcomeCommitted, receipt.Outcome)
	assert.Equal(t, f.signer.Address(), receipt.Creator)
}

func TestRegistrarDuplicateIsFinished(t *testing.T) {
	f := newFixture(t, workers.DefaultSettings())
	f.fake.AddRecord(testutil.GetWorkRecord())
	f.upload(t, "hello.txt", "hello")

	message := newMessage(`{"upload_key":"hello.txt","title":"T"}`, f.delegate)
	require.Nil(t, f.registrar.HandleMessage(message))
	f.delegate.waitFinished(t)
	assert.Equal(t, 0, f.fake.SubmitCount())
}

func TestRegistrarIdentifiesWorkType(t *testing.T) {
	f := newFixture(t, workers.DefaultSettings())
	f.registrar.Identifier = util.NewWorkTypeIdentifier()
	f.upload(t, "novel.txt", "It was a dark and stormy night.")

	message := newMessage(`{"upload_key":"novel.txt","title":"Novel"}`, f.delegate)
	require.Nil(t, f.registrar.HandleMessage(message))
	f.delegate.waitFinished(t)
	require.Equal(t, 1, f.fake.SubmitCount())
	assert.Equal(t, "text", f.fake.Submitted[0].Operation.WorkType)
}

func TestRegistrarBadMessage(t *testing.T) {
	f := newFixture(t, workers.DefaultSettings())
	message := newMessage(`{"title":"no upload"}`, f.delegate)

	// Bad messages are left for NSQ to finish automatically.
	require.Nil(t, f.registrar.HandleMessage(message))
	assert.Len(t, f.delegate.finished, 0)
	assert.Len(t, f.delegate.requeued, 0)
	assert.Equal(t, 0, f.fake.SubmitCount())
}

func TestRegistrarSkipsItemsInProcess(t *testing.T) {
	f := newFixture(t, workers.DefaultSettings())
	f.registrar.ItemsInProcess.Add("hello.txt")
	message := newMessage(`{"upload_key":"hello.txt","title":"T"}`, f.delegate)
	require.Nil(t, f.registrar.HandleMessage(message))
	assert.Len(t, f.registrar.ProcessChannel, 0)
	assert.Equal(t, 0, f.fake.SubmitCount())
}

func TestRegistrarMissingUpload(t *testing.T) {
	settings := workers.DefaultSettings()
	settings.MaxAttempts = 3
	f := newFixture(t, settings)

	message := newMessage(`{"upload_key":"missing.txt","title":"T"}`, f.delegate)
	require.Nil(t, f.registrar.HandleMessage(message))
	f.delegate.waitRequeued(t)

	// Out of attempts
	message = newMessage(`{"upload_key":"missing.txt","title":"T"}`, f.delegate)
	message.Attempts = 3
	require.Nil(t, f.registrar.HandleMessage(message))
	f.delegate.waitFinished(t)
}

func TestRegistrarNeverRequeuesSubmitted(t *testing.T) {
	settings := workers.DefaultSettings()
	settings.MaxAttempts = 5
	f := newFixture(t, settings)
	f.fake.SettleFailure = true
	f.upload(t, "hello.txt", "hello")

	message := newMessage(`{"upload_key":"hello.txt","title":"T"}`, f.delegate)
	require.Nil(t, f.registrar.HandleMessage(message))
	f.delegate.waitFinished(t)
	assert.Equal(t, 1, f.fake.SubmitCount())
}

func TestTaskTicker(t *testing.T) {
	delegate := newTestDelegate()
	task := workers.NewTask(newMessage(`{}`, delegate), &workers.RegistrationRequest{})
	task.NSQStart()
	assert.True(t, task.StartCalled())
	task.NSQFinish()
	<-delegate.finished
	assert.Eventually(t, task.TickerStopped, time.Second, 5*time.Millisecond)

	// Finishing twice doesn't block.
	task.NSQFinish()
}

func TestRegistrarRejectsLargeFiles(t *testing.T) {
	settings := workers.DefaultSettings()
	settings.MaxAttempts = 3
	settings.MaxFileSize = 4
	f := newFixture(t, settings)
	f.upload(t, "hello.txt", "hello")

	message := newMessage(`{"upload_key":"hello.txt","title":"T"}`, f.delegate)
	require.Nil(t, f.registrar.HandleMessage(message))
	f.delegate.waitFinished(t)
	assert.Equal(t, 0, f.fake.SubmitCount())
}
