package fs

import (
	"github.com/spf13/afero"
)

// Factory provides filesystem instances for production and testing
type Factory interface {
	// Production returns a filesystem that operates on the real OS filesystem
	Production() afero.Fs
	// Clips returns the filesystem audio clips are loaded from. Playback
	// never writes, so production clips are read-only.
	Clips() afero.Fs
	// Memory returns an in-memory filesystem for testing
	Memory() afero.Fs
}

// DefaultFactory provides the standard filesystem factory implementation
type DefaultFactory struct{}

// NewDefaultFactory creates a new filesystem factory
func NewDefaultFactory() Factory {
	return &DefaultFactory{}
}

func (f *DefaultFactory) Production() afero.Fs {
	return afero.NewOsFs()
}

func (f *DefaultFactory) Clips() afero.Fs {
	return afero.NewReadOnlyFs(afero.NewOsFs())
}

func (f *DefaultFactory) Memory() afero.Fs {
	return afero.NewMemMapFs()
}

// MemoryFactory serves one shared in-memory filesystem from every method, so
// tests can seed files and hand the factory to code expecting real disks
type MemoryFactory struct {
	fs afero.Fs
}

func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{fs: afero.NewMemMapFs()}
}

func (f *MemoryFactory) Production() afero.Fs { return f.fs }
func (f *MemoryFactory) Clips() afero.Fs      { return f.fs }
func (f *MemoryFactory) Memory() afero.Fs     { return f.fs }
