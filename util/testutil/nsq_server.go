package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// PublishedMessage is one message posted to the fake nsqd.
type PublishedMessage struct {
	Topic string
	Body  []byte
}

// NSQServer stands in for the nsqd HTTP publish endpoint and records
// what gets posted to it.
type NSQServer struct {
	server     *httptest.Server
	URL        string
	StatusCode int
	mutex      sync.Mutex
	messages   []PublishedMessage
}

func NewNSQServer() *NSQServer {
	s := &NSQServer{StatusCode: http.StatusOK}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	s.URL = s.server.URL
	return s
}

func (s *NSQServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mutex.Lock()
	status := s.StatusCode
	if status == http.StatusOK {
		s.messages = append(s.messages, PublishedMessage{
			Topic: r.URL.Query().Get("topic"),
			Body:  body,
		})
	}
	s.mutex.Unlock()
	w.WriteHeader(status)
	if status == http.StatusOK {
		w.Write([]byte("OK"))
	} else {
		w.Write([]byte("E_BAD_TOPIC"))
	}
}

// SetStatus makes the server answer every publish with status.
func (s *NSQServer) SetStatus(status int) {
	s.mutex.Lock()
	s.StatusCode = status
	s.mutex.Unlock()
}

// Messages returns everything published so far.
func (s *NSQServer) Messages() []PublishedMessage {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	messages := make([]PublishedMessage, len(s.messages))
	copy(messages, s.messages)
	return messages
}

func (s *NSQServer) Close() {
	s.server.Close()
}
