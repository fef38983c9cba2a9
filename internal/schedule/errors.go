package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument matches every *ArgumentError.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	ParamSubmit     = "submit"
	ParamTurnaround = "turnaround"
)

// ArgumentError reports which parameter of a due date calculation was rejected.
type ArgumentError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("wrong %s parameter: %s", e.Param, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

func submitError(v any, reason string) error {
	return &ArgumentError{Param: ParamSubmit, Value: v, Reason: reason}
}

func turnaroundError(v any, reason string) error {
	return &ArgumentError{Param: ParamTurnaround, Value: v, Reason: reason}
}

// InvalidParam returns the rejected parameter name, or "" when err is not an
// argument error.
func InvalidParam(err error) string {
	var ae *ArgumentError
	if errors.As(err, &ae) {
		return ae.Param
	}
	return ""
}
