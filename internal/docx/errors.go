// Package docx loads .docx packages into a structural model and rewrites their formatting.
package docx

import "fmt"

// CorruptDocumentError reports a package that cannot be read at all
type CorruptDocumentError struct {
	Part    string
	Message string
	Cause   error
}

func (e *CorruptDocumentError) Error() string {
	msg := e.Message
	if e.Part != "" {
		msg = e.Part + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("corrupt document: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("corrupt document: %s", msg)
}

func (e *CorruptDocumentError) Unwrap() error {
	return e.Cause
}

// UnsupportedDocumentError reports a readable package using structure the loader cannot model
type UnsupportedDocumentError struct {
	Part    string
	Message string
}

func (e *UnsupportedDocumentError) Error() string {
	if e.Part != "" {
		return fmt.Sprintf("unsupported document: %s: %s", e.Part, e.Message)
	}
	return fmt.Sprintf("unsupported document: %s", e.Message)
}

// NotFoundError reports a mutation addressed to an element the document does not have
type NotFoundError struct {
	Kind  string
	Index int
}

func (e *NotFoundError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("%s %d not found", e.Kind, e.Index)
	}
	return fmt.Sprintf("%s not found", e.Kind)
}
