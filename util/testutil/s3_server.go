package testutil

import (
	"net/http/httptest"
	"strings"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/minio/minio-go/v7"
	"github.com/workledger/registry-services/network"
)

const UploadBucket = "uploads"

// S3Server is an in-memory S3 endpoint with an uploads bucket.
type S3Server struct {
	server *httptest.Server
	URL    string
}

func NewS3Server() *S3Server {
	backend := s3mem.New()
	backend.CreateBucket(UploadBucket)
	faker := gofakes3.New(backend)
	server := httptest.NewServer(faker.Server())
	return &S3Server{
		server: server,
		URL:    server.URL,
	}
}

// Host returns the server's host:port, which is what minio wants.
func (s *S3Server) Host() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// NewClient returns a minio client pointed at this server.
func (s *S3Server) NewClient() *minio.Client {
	client, err := network.NewS3Client(s.Host(), "test-key", "test-secret", false)
	if err != nil {
		panic(err)
	}
	return client
}

func (s *S3Server) Close() {
	s.server.Close()
}
