package attachment

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path/filepath"

	"github.com/kovetskiy/mark-diagram/vfs"
	"github.com/reconquest/karma-go"
)

// Attachment is a rendered diagram written next to (or on behalf of) a
// document.
type Attachment struct {
	// Name is the diagram name as written in the annotation.
	Name string
	// Filename is the relative file name declared by the annotation.
	Filename string
	// Path is the resolved location the image was written to.
	Path      string
	FileBytes []byte
	// Checksum is the sha256 of the diagram source.
	Checksum string
}

type Attacher interface {
	Attach(Attachment)
}

// Load reads a diagram source file relative to base.
func Load(opener vfs.Opener, base, name string) ([]byte, error) {
	sourcePath := name
	if !filepath.IsAbs(sourcePath) {
		sourcePath = filepath.Join(base, filepath.FromSlash(name))
	}

	file, err := opener.Open(sourcePath)
	if err != nil {
		return nil, karma.Format(err, "unable to open file: %q", sourcePath)
	}
	defer func() {
		_ = file.Close()
	}()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, karma.Format(err, "unable to read file: %q", sourcePath)
	}

	return fileBytes, nil
}

func GetChecksum(reader io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, reader); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Checksum is GetChecksum over an in-memory diagram.
func Checksum(data []byte) string {
	// reading from bytes.Reader never fails
	checksum, _ := GetChecksum(bytes.NewReader(data))
	return checksum
}
