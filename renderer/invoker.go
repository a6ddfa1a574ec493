package renderer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/kovetskiy/mark-diagram/attachment"
	"github.com/kovetskiy/mark-diagram/vfs"
	"github.com/reconquest/pkg/log"
)

const DefaultTimeout = 90 * time.Second

// Invoker renders diagrams and writes them to disk.
type Invoker struct {
	FS vfs.Creator
	// Timeout bounds a single render once the engine starts it; zero
	// disables the deadline.
	Timeout time.Duration
}

func NewInvoker(fs vfs.Creator) *Invoker {
	return &Invoker{
		FS:      fs,
		Timeout: DefaultTimeout,
	}
}

// Invoke renders diagram with engine into dir/file and returns the written
// attachment, whose Path is the resolved absolute location.
func (invoker *Invoker) Invoke(
	ctx context.Context,
	engine Engine,
	name string,
	diagram []byte,
	dir string,
	file string,
) (attachment.Attachment, error) {
	target, err := filepath.Abs(filepath.Join(dir, filepath.FromSlash(file)))
	if err != nil {
		return attachment.Attachment{}, &IOError{Op: "resolve", Path: file, Err: err}
	}

	format, err := FormatOf(file)
	if err != nil {
		return attachment.Attachment{}, &RenderError{File: file, Err: err}
	}

	checksum := attachment.Checksum(diagram)
	log.Debugf(nil, "rendering: %q -> %s (checksum %s)", name, target, checksum)

	image, err := engine.Render(WithTimeout(ctx, invoker.Timeout), diagram, format)
	if err != nil {
		return attachment.Attachment{}, &RenderError{File: file, Err: err}
	}

	err = invoker.write(target, image)
	if err != nil {
		return attachment.Attachment{}, err
	}

	return attachment.Attachment{
		Name:      name,
		Filename:  file,
		Path:      target,
		FileBytes: image,
		Checksum:  checksum,
	}, nil
}

func (invoker *Invoker) write(target string, image []byte) (err error) {
	err = invoker.FS.MkdirAll(filepath.Dir(target), 0o755)
	if err != nil {
		return &IOError{Op: "create directory for", Path: target, Err: err}
	}

	writer, err := invoker.FS.Create(target)
	if err != nil {
		return &IOError{Op: "write", Path: target, Err: err}
	}
	defer func() {
		closeErr := writer.Close()
		if err == nil && closeErr != nil {
			err = &IOError{Op: "write", Path: target, Err: closeErr}
		}
	}()

	_, err = writer.Write(image)
	if err != nil {
		return &IOError{Op: "write", Path: target, Err: err}
	}

	return nil
}
