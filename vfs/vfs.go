package vfs

import (
	"io"
	"os"
)

type Opener interface {
	Open(name string) (io.ReadCloser, error)
}

type Creator interface {
	MkdirAll(path string, perm os.FileMode) error
	Create(name string) (io.WriteCloser, error)
}

type FileSystem interface {
	Opener
	Creator
}

type LocalOSFileSystem struct {
}

func (LocalOSFileSystem) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (LocalOSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (LocalOSFileSystem) Create(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

var LocalOS = LocalOSFileSystem{}
