package errx

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Kind classifies failures so callers can pick user and operator messaging.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfig is fatal to a feature, never to the process.
	KindConfig
	// KindNodeResolution means a transition points at a node the graph lacks.
	KindNodeResolution
	// KindIO means the local workbook could not be written or read.
	KindIO
	// KindCloudUpload means the mirror failed after a successful local write.
	KindCloudUpload
	// KindRelayDelivery means the operator channel could not be reached.
	KindRelayDelivery
	// KindStore covers session-store backends.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNodeResolution:
		return "node_resolution"
	case KindIO:
		return "io"
	case KindCloudUpload:
		return "cloud_upload"
	case KindRelayDelivery:
		return "relay_delivery"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal error"
	ConfigErrorMessage = "configuration error"
	IOErrorMessage     = "local record file unavailable"
	CloudErrorMessage  = "cloud upload failed"
	RelayErrorMessage  = "operator channel unreachable"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
)

// AppError wraps an underlying error with a kind and a safe message.
type AppError struct {
	Err     error
	Kind    Kind
	Message string
	// Node is set for KindNodeResolution.
	Node string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Format prints the wrapped error's stack trace, when it has one, for %+v.
func (e *AppError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') && e.Err != nil {
		fmt.Fprintf(s, "%s: %+v", e.Message, e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, kind Kind, message string) *AppError {
	return &AppError{
		Err:     err,
		Kind:    kind,
		Message: message,
	}
}

// Config wraps a graph or settings problem.
func Config(err error) *AppError {
	return New(err, KindConfig, ConfigErrorMessage)
}

// Configf formats a configuration problem.
func Configf(format string, args ...any) *AppError {
	return Config(fmt.Errorf(format, args...))
}

// NodeResolution reports a missing destination node. The wrapped error carries
// a stack trace for operator diagnostics.
func NodeResolution(node string) *AppError {
	e := New(pkgerrors.Errorf("node %q is not defined", node), KindNodeResolution, "node resolution failed")
	e.Node = node
	return e
}

// IO wraps a local record-file failure.
func IO(err error) *AppError {
	return New(err, KindIO, IOErrorMessage)
}

// CloudUpload wraps a mirror failure that happened after a local success.
func CloudUpload(err error) *AppError {
	return New(err, KindCloudUpload, CloudErrorMessage)
}

// RelayDelivery wraps an operator channel send failure.
func RelayDelivery(err error) *AppError {
	return New(err, KindRelayDelivery, RelayErrorMessage)
}

// WrapRedis wraps a Redis error with a consistent kind and message.
func WrapRedis(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	return New(err, KindStore, RedisErrorMessage)
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) Kind {
	var app *AppError
	if errors.As(err, &app) {
		return app.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}
