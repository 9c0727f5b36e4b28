package dirconnections

import "github.com/spf13/afero"

// CacheDirConnection points to an existing directory on a filesystem,
// owned exclusively by the disk cache.
type CacheDirConnection interface {
	Fs() afero.Fs
	Dir() string
}
