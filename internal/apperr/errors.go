// Package apperr defines the error taxonomy shared by the preview server,
// the export path and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFile       = errors.New("invalid file")
	ErrUnsupportedMarkup = errors.New("unsupported markup")
	ErrDocumentRead      = errors.New("document read failed")
	ErrMalformedRequest  = errors.New("malformed request")
	ErrExportWrite       = errors.New("export write failed")
)

// InvalidFileError reports a target path that is missing or not a regular file.
type InvalidFileError struct {
	Path string
	Err  error
}

func (e *InvalidFileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid file %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid file %s: not a regular file", e.Path)
}

func (e *InvalidFileError) Unwrap() error        { return e.Err }
func (e *InvalidFileError) Is(target error) bool { return target == ErrInvalidFile }

// MarkupInfo describes one known markup kind for operator guidance.
type MarkupInfo struct {
	Kind       string
	Extensions []string
	Backend    string
	Available  bool
}

// UnsupportedMarkupError reports that no registered kind matches a filename.
// Known lists every kind the program knows about, registered or not, so the
// operator can tell which backend to install.
type UnsupportedMarkupError struct {
	Filename string
	Known    []MarkupInfo
}

func (e *UnsupportedMarkupError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unsupported markup: %s", e.Filename)
	if len(e.Known) == 0 {
		return b.String()
	}
	b.WriteString(" (supported:")
	for i, k := range e.Known {
		if i > 0 {
			b.WriteString(";")
		}
		state := "available"
		if !k.Available {
			state = "not installed"
		}
		fmt.Fprintf(&b, " %s [.%s] via %s, %s", k.Kind, strings.Join(k.Extensions, " ."), k.Backend, state)
	}
	b.WriteString(")")
	return b.String()
}

func (e *UnsupportedMarkupError) Is(target error) bool { return target == ErrUnsupportedMarkup }

// DocumentReadError wraps a filesystem failure on the previewed document
// after it has been resolved.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("read %s: %s", e.Path, Reason(e.Err))
}

func (e *DocumentReadError) Unwrap() error        { return e.Err }
func (e *DocumentReadError) Is(target error) bool { return target == ErrDocumentRead }

// MalformedRequestError reports an unusable staleness token.
type MalformedRequestError struct {
	Reason string
	Err    error
}

func (e *MalformedRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed request: %s: %v", e.Reason, e.Err)
	}
	return "malformed request: " + e.Reason
}

func (e *MalformedRequestError) Unwrap() error        { return e.Err }
func (e *MalformedRequestError) Is(target error) bool { return target == ErrMalformedRequest }

// ExportWriteError reports that the export output could not be written.
type ExportWriteError struct {
	Path string
	Err  error
}

func (e *ExportWriteError) Error() string {
	return fmt.Sprintf("export to %s: %v", e.Path, e.Err)
}

func (e *ExportWriteError) Unwrap() error        { return e.Err }
func (e *ExportWriteError) Is(target error) bool { return target == ErrExportWrite }

// Reason returns the innermost error text, which for *fs.PathError values
// is the bare OS reason ("no such file or directory").
func Reason(err error) string {
	if err == nil {
		return ""
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
