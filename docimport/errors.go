package docimport

import (
	"errors"
	"fmt"
)

// Kind classifies an import failure.
type Kind string

const (
	KindUnsupportedFileType Kind = "unsupported_file_type"
	KindReadFailure         Kind = "read_failure"
	KindDecodeFailure       Kind = "decode_failure"
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrReadFailure         = errors.New("read failure")
	ErrDecodeFailure       = errors.New("decode failure")
)

// GenericDecodeMessage is reported when a decoder fails without a message.
const GenericDecodeMessage = "could not read document contents"

// Error is returned by Importer for every failure except cancellation.
// Message is fit for display to the person who uploaded the file.
type Error struct {
	Kind     Kind
	Filename string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind) + ": " + e.Filename
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnsupportedFileType:
		return e.Kind == KindUnsupportedFileType
	case ErrReadFailure:
		return e.Kind == KindReadFailure
	case ErrDecodeFailure:
		return e.Kind == KindDecodeFailure
	}
	return false
}

func unsupported(name string) *Error {
	return &Error{
		Kind:     KindUnsupportedFileType,
		Filename: name,
		Message:  fmt.Sprintf("unsupported file type: %s (upload a .docx or .pdf file)", name),
	}
}

func readFailure(name string, err error) *Error {
	return &Error{
		Kind:     KindReadFailure,
		Filename: name,
		Message:  fmt.Sprintf("failed to read %s: %v", name, err),
		Err:      err,
	}
}

func decodeFailure(name string, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = GenericDecodeMessage
	}
	return &Error{Kind: KindDecodeFailure, Filename: name, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
