package kvs

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Filesystem is the narrow collaborator contract this package needs from
// its storage backend (spec.md §6): existence check, recursive directory
// creation, whole-file read/write, rename, delete. Generalizes
// andreyvit-edb's storage/storageTx/storageBucket pluggable-backend idiom
// from Bolt buckets down to plain files.
type Filesystem interface {
	Exists(path string) (bool, error)
	MkdirAll(path string) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Rename(oldpath, newpath string) error
	Remove(path string) error
}

type aferoFilesystem struct {
	fs afero.Fs
}

// NewOsFilesystem returns a Filesystem backed by the real OS filesystem.
func NewOsFilesystem() Filesystem {
	return &aferoFilesystem{fs: afero.NewOsFs()}
}

// NewMemFilesystem returns an in-memory Filesystem, suitable for tests that
// want to exercise open/flush/rotate without touching disk.
func NewMemFilesystem() Filesystem {
	return &aferoFilesystem{fs: afero.NewMemMapFs()}
}

func (f *aferoFilesystem) Exists(path string) (bool, error) {
	return afero.Exists(f.fs, path)
}

func (f *aferoFilesystem) MkdirAll(path string) error {
	if path == "" {
		return nil
	}
	return f.fs.MkdirAll(path, 0o755)
}

func (f *aferoFilesystem) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(f.fs, path)
}

func (f *aferoFilesystem) WriteFile(path string, data []byte) error {
	return afero.WriteFile(f.fs, path, data, 0o644)
}

func (f *aferoFilesystem) Rename(oldpath, newpath string) error {
	return f.fs.Rename(oldpath, newpath)
}

func (f *aferoFilesystem) Remove(path string) error {
	err := f.fs.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// parentDir is filepath.Dir, named for the call sites that create a file's
// parent directory before writing it.
func parentDir(path string) string {
	return filepath.Dir(path)
}
