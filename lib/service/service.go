package service

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("service")

// Service is the entry point of the command layer. It is a small value that
// points to shared state: copies made by assignment or Clone all use the same
// storage backend and may call Execute concurrently.
type Service struct {
	inner *serviceInner
}

type serviceInner struct {
	store storage.Storage
}

// NewService creates a Service around a storage backend. The backend is
// shared by all clones and lives as long as any of them is referenced.
func NewService(store storage.Storage) Service {
	return Service{inner: &serviceInner{store: store}}
}

// Clone returns a Service sharing the same backend
func (s Service) Clone() Service {
	return Service{inner: s.inner}
}

// Storage returns the shared backend
func (s Service) Storage() storage.Storage {
	if s.inner == nil {
		return nil
	}
	return s.inner.store
}

// Execute runs a request and returns its response. It never panics: a panic
// raised by the backend is recovered and reported as an internal error.
func (s Service) Execute(req *CommandRequest) (resp *CommandResponse) {
	start := time.Now()
	command := req.CommandName()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("recovered from panic while executing %s: %v", command, r)
			resp = NewErrorResponse(storage.NewInternalError("panic while executing %s: %v", command, r))
		}
		recordCommand(command, resp.Status, start)
		log.Debugf("%s -> %d (%s)", command, resp.Status, time.Since(start))
	}()

	if s.inner == nil || s.inner.store == nil {
		return NewErrorResponse(storage.NewInternalError("service has no storage"))
	}
	return Dispatch(req, s.inner.store)
}

func (s Service) String() string {
	return fmt.Sprintf("Service{%T}", s.Storage())
}
