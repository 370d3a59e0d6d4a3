package core

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuitableDevice = errors.New("no suitable device found")
	ErrNoQueueFamily    = errors.New("no queue family found")
	ErrUnknown          = errors.New("unknown")
)

// ErrorKind tags which bootstrap stage produced a failure.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindConfig
	KindLayerEnumeration
	KindInstanceCreation
	KindWindowCreation
	KindSurfaceCreation
	KindDeviceEnumeration
	KindNoSuitableDevice
	KindDeviceCreation
	KindResourceAllocation
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindLayerEnumeration:
		return "layer enumeration failed"
	case KindInstanceCreation:
		return "instance creation failed"
	case KindWindowCreation:
		return "window creation failed"
	case KindSurfaceCreation:
		return "surface creation failed"
	case KindDeviceEnumeration:
		return "device enumeration failed"
	case KindNoSuitableDevice:
		return "no suitable device"
	case KindDeviceCreation:
		return "device creation failed"
	case KindResourceAllocation:
		return "resource allocation failed"
	default:
		return "unknown"
	}
}

// BootstrapError is the single error type surfaced by every stage. Kind keeps
// the failure class; Err carries the underlying cause.
type BootstrapError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewError(kind ErrorKind, op string, err error) *BootstrapError {
	if err == nil {
		err = ErrUnknown
	}
	return &BootstrapError{Kind: kind, Op: op, Err: err}
}

// Errorf builds a BootstrapError with a formatted cause. %w is honoured.
func Errorf(kind ErrorKind, op string, format string, args ...interface{}) *BootstrapError {
	return NewError(kind, op, fmt.Errorf(format, args...))
}

func (e *BootstrapError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// Is matches another BootstrapError of the same kind, so callers can test
// with errors.Is(err, &BootstrapError{Kind: KindDeviceCreation}).
func (e *BootstrapError) Is(target error) bool {
	t, ok := target.(*BootstrapError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first BootstrapError in err's chain.
func KindOf(err error) ErrorKind {
	var be *BootstrapError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}
