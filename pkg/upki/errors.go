package upki

import (
	"errors"
	"strings"

	"github.com/Lukasz5660/Driver-checker/pkg/soap"
)

// Kind tags the failure classes a lookup can produce.
type Kind string

const (
	KindInvalidInput  Kind = "invalid_input"
	KindConfiguration Kind = "configuration"
	KindServiceFault  Kind = "service_fault"
	KindTransport     Kind = "transport"
)

// ClientError is the only error type crossing the package boundary.
// Message is safe to expose to callers: it names settings, never local
// file paths or vendor error internals. The underlying cause stays on
// the unwrap chain for logging.
type ClientError struct {
	Kind    Kind
	Message string

	// FaultCode and Details are set for KindServiceFault only.
	FaultCode string
	Details   soap.Value

	cause error
}

func (e *ClientError) Error() string {
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.cause
}

// AsClientError unwraps err into a *ClientError if one is on the chain.
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

func invalidInputError(message string) *ClientError {
	return &ClientError{Kind: KindInvalidInput, Message: message}
}

func configurationError(message string, cause error) *ClientError {
	return &ClientError{Kind: KindConfiguration, Message: message, cause: cause}
}

func transportError(message string, cause error) *ClientError {
	return &ClientError{Kind: KindTransport, Message: message, cause: cause}
}

func serviceFaultError(fault *soap.Fault) *ClientError {
	msg := fault.Message
	if msg == "" {
		msg = "the service rejected the request"
	}
	return &ClientError{
		Kind:      KindServiceFault,
		Message:   msg,
		FaultCode: fault.Code,
		Details:   fault.Detail,
	}
}

// ConfigError aggregates every configuration defect found during
// loading, so a deployment problem surfaces completely instead of one
// setting at a time.
type ConfigError struct {
	// Defects holds one entry per problem, each naming the setting and,
	// where relevant, the offending path. Intended for logs.
	Defects []string
	// Settings holds the offending setting names only, safe to expose.
	Settings []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Defects, "; ")
}

func (e *ConfigError) add(setting, problem string) {
	e.Defects = append(e.Defects, setting+": "+problem)
	e.Settings = append(e.Settings, setting)
}

// clientError converts the aggregate into the normalized boundary form,
// keeping paths out of the exposed message.
func (e *ConfigError) clientError() *ClientError {
	return configurationError("invalid configuration: "+strings.Join(e.Settings, ", "), e)
}
