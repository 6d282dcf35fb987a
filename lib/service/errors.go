package service

import (
	"errors"
	"strings"

	"github.com/ValentinKolb/hKV/lib/storage"
)

// NewErrorResponse converts an error into a response. This is the only place
// where errors are mapped to status codes:
//
//	RetCNotFound       -> 404
//	RetCInvalidCommand -> 400
//	RetCInternalError  -> 500
//	RetCStorageError   -> 500
//
// Errors that are not a *storage.Error are treated as internal errors.
func NewErrorResponse(err error) *CommandResponse {
	if err == nil {
		err = storage.NewInternalError("error response without error")
	}

	var sErr *storage.Error
	if !errors.As(err, &sErr) {
		sErr = storage.NewInternalError("%v", err)
	}

	return &CommandResponse{
		Status:  statusForCode(sErr.Code),
		Message: sErr.Error(),
	}
}

func statusForCode(code storage.RetCode) uint32 {
	switch code {
	case storage.RetCSuccess:
		return StatusOK
	case storage.RetCNotFound:
		return StatusNotFound
	case storage.RetCInvalidCommand:
		return StatusBadRequest
	default:
		return StatusInternalError
	}
}

// codeForStatus is the inverse of statusForCode. Both internal and storage
// errors use status 500, the message prefix tells them apart.
func codeForStatus(status uint32, message string) storage.RetCode {
	switch status {
	case StatusOK:
		return storage.RetCSuccess
	case StatusNotFound:
		return storage.RetCNotFound
	case StatusBadRequest:
		return storage.RetCInvalidCommand
	}
	if strings.HasPrefix(message, storage.NewStorageError("").Error()) {
		return storage.RetCStorageError
	}
	return storage.RetCInternalError
}
