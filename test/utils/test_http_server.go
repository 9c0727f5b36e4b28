package testutils

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/phayes/freeport"
)

// TestImageServer serves fixed payloads on registered paths and counts
// how many times every path was requested.
type TestImageServer struct {
	*http.ServeMux

	mu       sync.Mutex
	requests map[string]int
	port     int
}

func NewTestImageServer() *TestImageServer {
	return &TestImageServer{
		ServeMux: http.NewServeMux(),
		requests: make(map[string]int),
	}
}

// Serve registers payload under path, answered with given status code.
func (s *TestImageServer) Serve(path, contentType string, statusCode int, payload []byte) {
	s.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[path]++
		s.mu.Unlock()

		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(statusCode)
		w.Write(payload)
	})
}

func (s *TestImageServer) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.requests[path]
}

func (s *TestImageServer) URL(path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", s.port, path)
}

// Start listens on a free port until the test ends.
// Returns the port the server is listening on.
func (s *TestImageServer) Start(t *testing.T) int {
	port, err := freeport.GetFreePort()
	if err != nil {
		t.Fatalf("cannot start test server: %v", err)
	}

	srvAddr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := http.Server{
		Addr:    srvAddr,
		Handler: s,
	}

	t.Cleanup(func() {
		srv.Close()
	})

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			t.Errorf("cannot start test server: %v", err)
		}
	}()

	waitForServer(t, srvAddr)
	s.port = port
	return port
}

func waitForServer(t *testing.T, addr string) {
	backoff := 50 * time.Millisecond

	for i := 0; i < 10; i++ {
		conn, err := net.DialTimeout("tcp", addr, 1*time.Second)
		if err != nil {
			time.Sleep(backoff)
			continue
		}
		err = conn.Close()
		if err != nil {
			t.Fatal(err)
		}
		return
	}

	t.Fatalf("server on address %s not up after 10 attempts", addr)
}
