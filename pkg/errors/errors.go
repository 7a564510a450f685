package errors

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrDuplicateKey      = errors.New("duplicate weld key")
	ErrRecordNotFound    = errors.New("record not found")
	ErrInvalidInput      = errors.New("invalid input")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
