package testutil

import (
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/op/go-logging"
	"github.com/workledger/registry-services/network"
)

// TestNetworkID is the network id used by ledger tests.
const TestNetworkID int64 = 110261

// RedisServer is an in-process Redis that tests run the ledger
// against.
type RedisServer struct {
	server *miniredis.Miniredis
}

func NewRedisServer() *RedisServer {
	server, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	return &RedisServer{
		server: server,
	}
}

func (s *RedisServer) Addr() string {
	return s.server.Addr()
}

// SetError makes every subsequent command fail with msg. Pass an
// empty string to clear it.
func (s *RedisServer) SetError(msg string) {
	s.server.SetError(msg)
}

func (s *RedisServer) Close() {
	s.server.Close()
}

// NewLedgerClient returns a ledger client connected to this server.
func (s *RedisServer) NewLedgerClient(logger *logging.Logger) *network.LedgerClient {
	client := network.NewLedgerClient(s.Addr(), "", 0, TestNetworkID, logger)
	client.PollInterval = 5 * time.Millisecond
	return client
}
