package transformer

import (
	"bytes"
	"io"
	"os"
	"sync"
)

type memoryFS struct {
	mutex sync.Mutex
	files map[string][]byte
}

type memoryFile struct {
	bytes.Buffer
	fs   *memoryFS
	name string
}

func (fs *memoryFS) Open(name string) (io.ReadCloser, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	data, ok := fs.files[name]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (fs *memoryFS) MkdirAll(string, os.FileMode) error {
	return nil
}

func (fs *memoryFS) Create(name string) (io.WriteCloser, error) {
	return &memoryFile{fs: fs, name: name}, nil
}

func (file *memoryFile) Close() error {
	file.fs.mutex.Lock()
	defer file.fs.mutex.Unlock()

	file.fs.files[file.name] = file.Bytes()

	return nil
}
