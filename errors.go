package payluk

// ErrorCode identifies the failure class of an SDK operation. Every error
// returned across the public boundary carries exactly one code.
type ErrorCode string

const (
	NotInitialized  ErrorCode = "not_initialized"  // Operation invoked before a configuration was stored.
	BrowserOnly     ErrorCode = "browser_only"     // No widget host (browser-like environment) is attached.
	InvalidInput    ErrorCode = "invalid_input"    // Missing or blank required configuration or call input.
	WidgetLoad      ErrorCode = "widget_load"      // Widget script failed to load or did not publish its entry point.
	Network         ErrorCode = "network"          // Transport-level failure contacting the session endpoint.
	SessionCreate   ErrorCode = "session_create"   // Session endpoint returned a non-success status.
	SessionResponse ErrorCode = "session_response" // Session endpoint returned an unparseable or invalid success body.
)

// Error is the structured failure every SDK operation surfaces. None of the
// codes are retried by the SDK; each failure is terminal for its call.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Status is the HTTP status observed on the session endpoint, when one was.
	Status int `json:"status,omitempty"`
	// Details carries an opaque payload such as the parsed error body.
	Details any `json:"details,omitempty"`
}

// Error makes *Error satisfy the stdlib error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

type errorOption func(*Error)

// WithStatus records the HTTP status the session endpoint answered with.
func WithStatus(status int) errorOption {
	return func(er *Error) {
		er.Status = status
	}
}

// WithDetails attaches an opaque detail payload to the error.
func WithDetails(details any) errorOption {
	return func(er *Error) {
		er.Details = details
	}
}

// NewNotInitializedError signals that no configuration has been stored yet.
func NewNotInitializedError() *Error {
	return newError(NotInitialized, "payluk is not initialized: call Initialize or construct a Client first")
}

// NewBrowserOnlyError signals that no widget host is attached to the process.
func NewBrowserOnlyError() *Error {
	return newError(BrowserOnly, "a widget host is required: attach one with AttachHost or WithHost")
}

// NewInvalidInputError flags missing or blank required inputs.
func NewInvalidInputError(message string) *Error {
	return newError(InvalidInput, message)
}

// NewWidgetLoadError reports a widget bundle that failed to load or publish.
func NewWidgetLoadError(message string, opts ...errorOption) *Error {
	return newError(WidgetLoad, message, opts...)
}

// NewNetworkError wraps a transport-level failure reaching the backend.
func NewNetworkError(message string, opts ...errorOption) *Error {
	return newError(Network, message, opts...)
}

// NewSessionCreateError reports a non-success answer from the session endpoint.
func NewSessionCreateError(message string, opts ...errorOption) *Error {
	return newError(SessionCreate, message, opts...)
}

// NewSessionResponseError reports a success answer with an unusable body.
func NewSessionResponseError(message string, opts ...errorOption) *Error {
	return newError(SessionResponse, message, opts...)
}

func newError(code ErrorCode, message string, opts ...errorOption) *Error {
	errPayload := &Error{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(errPayload)
	}
	return errPayload
}
