// Package document describes one Markdown document going through the
// diagram transformer: where it lives and what happened to it.
package document

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/kovetskiy/mark-diagram/attachment"
	"github.com/kovetskiy/mark-diagram/mdast"
	"github.com/reconquest/karma-go"
	"github.com/reconquest/pkg/log"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (severity Severity) String() string {
	switch severity {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", int(severity))
	}
}

// Message is a diagnostic attached to a document.
type Message struct {
	Reason   string
	Source   string
	Position *mdast.Position
	Severity Severity
	Err      error
}

func (message Message) String() string {
	location := ""
	if message.Position != nil {
		location = fmt.Sprintf(
			"%d:%d: ",
			message.Position.Start.Line,
			message.Position.Start.Column,
		)
	}

	text := location + message.Reason
	if message.Err != nil {
		text += ": " + message.Err.Error()
	}
	if message.Source != "" {
		text += " [" + message.Source + "]"
	}

	return text
}

// File is safe for concurrent use: the transformer reports from many
// goroutines at once.
type File struct {
	Path string

	dir         string
	mutex       sync.Mutex
	messages    []Message
	attachments []attachment.Attachment
}

// New describes a document stored at path. The document directory is used
// to resolve relative diagram sources and artifacts.
func New(path string) *File {
	return &File{
		Path: path,
		dir:  filepath.Dir(path),
	}
}

// NewInDir describes an in-memory document whose relative paths resolve
// against dir.
func NewInDir(dir string) *File {
	return &File{dir: dir}
}

func (file *File) Dir() string {
	return file.dir
}

func (file *File) Info(reason string, position *mdast.Position, source string) {
	file.add(Message{
		Reason:   reason,
		Source:   source,
		Position: position,
		Severity: SeverityInfo,
	})

	log.Infof(file.describe(position, source), "%s", reason)
}

func (file *File) Warn(err error, reason string, position *mdast.Position, source string) {
	file.add(Message{
		Reason:   reason,
		Source:   source,
		Position: position,
		Severity: SeverityWarning,
		Err:      err,
	})

	log.Warningf(file.describe(position, source).Reason(err), "%s", reason)
}

func (file *File) Messages() []Message {
	file.mutex.Lock()
	defer file.mutex.Unlock()

	return append([]Message(nil), file.messages...)
}

func (file *File) HasWarnings() bool {
	file.mutex.Lock()
	defer file.mutex.Unlock()

	for _, message := range file.messages {
		if message.Severity >= SeverityWarning {
			return true
		}
	}

	return false
}

// Attach implements attachment.Attacher.
func (file *File) Attach(a attachment.Attachment) {
	file.mutex.Lock()
	defer file.mutex.Unlock()

	file.attachments = append(file.attachments, a)
}

func (file *File) Attachments() []attachment.Attachment {
	file.mutex.Lock()
	defer file.mutex.Unlock()

	return append([]attachment.Attachment(nil), file.attachments...)
}

func (file *File) add(message Message) {
	file.mutex.Lock()
	defer file.mutex.Unlock()

	file.messages = append(file.messages, message)
}

func (file *File) describe(position *mdast.Position, source string) *karma.Context {
	context := karma.Describe("file", file.Path).Describe("source", source)
	if position != nil {
		context = context.Describe(
			"position",
			fmt.Sprintf("%d:%d", position.Start.Line, position.Start.Column),
		)
	}

	return context
}
