package health

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateName = errors.New("probe name already registered")
	ErrProbeNotFound = errors.New("probe not found")
	ErrInvalidProbe  = errors.New("invalid probe")
)

// DuplicateNameError is returned by Register when a probe with the same name
// has already been registered.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("probe %q is already registered", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}
