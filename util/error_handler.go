package util

import (
	"fmt"

	"github.com/reconquest/pkg/log"
)

// FatalErrorHandler stops the run on the first failed document, or records
// it and carries on when ContinueOnError is set.
type FatalErrorHandler struct {
	ContinueOnError bool

	failed []string
}

func NewErrorHandler(continueOnError bool) *FatalErrorHandler {
	return &FatalErrorHandler{
		ContinueOnError: continueOnError,
	}
}

// Handle reports that file could not be processed.
func (h *FatalErrorHandler) Handle(file string, err error, format string, args ...interface{}) {
	h.failed = append(h.failed, file)

	if err == nil {
		if h.ContinueOnError {
			log.Error(fmt.Sprintf(format, args...))
			return
		}
		log.Fatal(fmt.Sprintf(format, args...))
	}

	if h.ContinueOnError {
		log.Errorf(err, format, args...)
		return
	}
	log.Fatalf(err, format, args...)
}

// Failed lists the documents that could not be processed, in the order they
// were reported.
func (h *FatalErrorHandler) Failed() []string {
	return h.failed
}
