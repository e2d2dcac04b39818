package bankledger

import (
	"errors"
	"fmt"
)

var (
	ErrInternalServer      = errors.New("internal server error")
	ErrUnauthorized        = errors.New("credentials do not match")
	ErrAllocationExhausted = errors.New("account id space exhausted")
	ErrServiceBusy         = errors.New("service busy, try again later")
	ErrCorruptDocument     = errors.New("document is not valid JSON")
	ErrRateUnavailable     = errors.New("exchange rate unavailable")
)

type ErrBadRequest struct {
	Fields map[string]string `json:"fields"`
}

func (e ErrBadRequest) Error() string {
	return fmt.Sprintf("missing/invalid params: %v", e.Fields)
}

func badRequest(field, reason string) ErrBadRequest {
	return ErrBadRequest{Fields: map[string]string{field: reason}}
}

type ErrNotFound struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (e ErrNotFound) Error() string {
	if e.Kind == "" {
		return "record not found"
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ErrPersistence wraps I/O failures of the record store.
type ErrPersistence struct {
	Op   string
	Path string
	Err  error
}

func (e ErrPersistence) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e ErrPersistence) Unwrap() error {
	return e.Err
}

// ErrTransferFailed carries the reason recorded on a failed ledger entry.
type ErrTransferFailed struct {
	Reason string `json:"error"`
}

func (e ErrTransferFailed) Error() string {
	return "transfer failed: " + e.Reason
}
