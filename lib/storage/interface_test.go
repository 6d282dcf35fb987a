package storage

import (
	"errors"
	"testing"
)

func TestErrors(t *testing.T) {
	notFound := NewNotFoundError("score", "u9")
	if notFound.Error() != "Not found for table: score, key: u9" {
		t.Errorf("Unexpected message: %s", notFound.Error())
	}

	tests := []struct {
		err  error
		want RetCode
	}{
		{nil, RetCSuccess},
		{notFound, RetCNotFound},
		{NewInvalidCommandError("missing %s", "table"), RetCInvalidCommand},
		{NewInternalError("boom"), RetCInternalError},
		{NewStorageError("disk"), RetCStorageError},
		{errors.New("plain"), RetCInternalError},
		{wrap(NewStorageError("disk")), RetCStorageError},
	}

	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("CodeOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func wrap(err error) error {
	return errors.Join(errors.New("context"), err)
}

func TestParseError(t *testing.T) {
	for _, err := range []*Error{
		NewNotFoundError("t", "k"),
		NewInvalidCommandError("missing table"),
		NewInternalError("boom"),
		NewStorageError("disk full"),
	} {
		got := ParseError(err.Code, err.Error())
		if *got != *err {
			t.Errorf("ParseError(%s) = %+v, want %+v", err, got, err)
		}
	}
}
