package dirconnections

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

type CacheDirTestingConnection struct {
	CacheDirProductionConnection
}

var _ CacheDirConnection = (*CacheDirTestingConnection)(nil)

// NewCacheDirTestingConnection creates a uniquely named cache directory
// on an in-memory filesystem, dropped when the test ends.
func NewCacheDirTestingConnection(t *testing.T) *CacheDirTestingConnection {
	return newCacheDirTestingConnection(t, afero.NewMemMapFs())
}

// NewCacheDirTestingConnectionOnFs allows tests to share a filesystem
// between connections, e.g. to simulate a restart.
func NewCacheDirTestingConnectionOnFs(t *testing.T, fs afero.Fs, path string) *CacheDirTestingConnection {
	conn, err := newCacheDirConnection(fs, CacheDirProductionConnectionConfig{Path: path})
	if err != nil {
		t.Fatalf("cannot create testing cache directory: %v", err)
	}

	return &CacheDirTestingConnection{*conn}
}

func newCacheDirTestingConnection(t *testing.T, fs afero.Fs) *CacheDirTestingConnection {
	path := filepath.Join("/testing", uuid.New().String(), "ImageCache")
	testingConn := NewCacheDirTestingConnectionOnFs(t, fs, path)

	t.Cleanup(testingConn.dropTestDir)
	return testingConn
}

func (c *CacheDirTestingConnection) dropTestDir() {
	if err := c.fs.RemoveAll(c.config.Path); err != nil {
		panic("Cannot cleanup testing cache directory '" + c.config.Path + "': " + err.Error())
	}
}
