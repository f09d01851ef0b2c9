package domain

import (
	"errors"
	"fmt"
)

// Category sentinels. Use with NewSubSystemError for subsystem-specific errors.
var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrTimeout       = fmt.Errorf("operation timed out")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrProviderError = fmt.Errorf("provider error")
)

// Sentinel errors for the domain layer.
var (
	ErrProviderNotFound    = fmt.Errorf("llm provider not found")
	ErrProviderUnavailable = fmt.Errorf("llm provider unavailable")

	// Canvas / rendering errors.
	ErrMissingField = fmt.Errorf("required field missing")

	// Prompt round-trip errors.
	ErrPromptEmpty        = fmt.Errorf("prompt is empty")
	ErrBusy               = fmt.Errorf("a prompt is already in flight")
	ErrTransport          = fmt.Errorf("transport failure")
	ErrHTTPStatus         = fmt.Errorf("unexpected http status")
	ErrInvalidModelOutput = fmt.Errorf("model returned invalid JSON")

	// History store errors.
	ErrHistoryStore = fmt.Errorf("history store failed")

	// Resilience errors.
	ErrContextOverflow = fmt.Errorf("context window exceeded")
	ErrRateLimit       = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid     = fmt.Errorf("authentication failed")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op        string // operation name (e.g., "Render.InfoBox")
	Err       error  // underlying sentinel or wrapped error
	Detail    string // human-readable detail
	SubSystem string // subsystem identifier (e.g., "render", "prompt"); used for ErrorCode dispatch
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// NewSubSystemError creates a DomainError tagged with a subsystem for ErrorCode dispatch.
func NewSubSystemError(subsystem, op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail, SubSystem: subsystem}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryableError reports whether err is a transient error that may succeed on retry.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrProviderUnavailable)
}

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

const (
	CodeUnknown             ErrorCode = "UNKNOWN"
	CodeProviderNotFound    ErrorCode = "PROVIDER_NOT_FOUND"
	CodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	CodeMissingField        ErrorCode = "MISSING_FIELD"
	CodePromptEmpty         ErrorCode = "PROMPT_EMPTY"
	CodeBusy                ErrorCode = "BUSY"
	CodeTransport           ErrorCode = "TRANSPORT"
	CodeHTTPStatus          ErrorCode = "HTTP_STATUS"
	CodeInvalidModelOutput  ErrorCode = "INVALID_MODEL_OUTPUT"
	CodeHistoryStore        ErrorCode = "HISTORY_STORE"
	CodeContextOverflow     ErrorCode = "CONTEXT_OVERFLOW"
	CodeRateLimit           ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid         ErrorCode = "AUTH_INVALID"

	// Subsystem-specific codes resolved through subSystemCodeMap.
	CodeRenderMissingField ErrorCode = "RENDER_MISSING_FIELD"
	CodeHistoryNotFound    ErrorCode = "HISTORY_NOT_FOUND"
	CodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"

	// Category codes; fallbacks when no subsystem-specific code matches.
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeProviderError ErrorCode = "PROVIDER_ERROR"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrNotFound:      CodeNotFound,
	ErrTimeout:       CodeTimeout,
	ErrInvalidInput:  CodeInvalidInput,
	ErrProviderError: CodeProviderError,

	ErrProviderNotFound:    CodeProviderNotFound,
	ErrProviderUnavailable: CodeProviderUnavailable,
	ErrMissingField:        CodeMissingField,
	ErrPromptEmpty:         CodePromptEmpty,
	ErrBusy:                CodeBusy,
	ErrTransport:           CodeTransport,
	ErrHTTPStatus:          CodeHTTPStatus,
	ErrInvalidModelOutput:  CodeInvalidModelOutput,
	ErrHistoryStore:        CodeHistoryStore,
	ErrContextOverflow:     CodeContextOverflow,
	ErrRateLimit:           CodeRateLimit,
	ErrAuthInvalid:         CodeAuthInvalid,
}

// subSystemCodeMap maps (sentinel, subsystem) pairs to specific ErrorCodes.
var subSystemCodeMap = map[error]map[string]ErrorCode{
	ErrMissingField: {
		"render": CodeRenderMissingField,
	},
	ErrNotFound: {
		"history": CodeHistoryNotFound,
	},
	ErrTimeout: {
		"llm": CodeLLMTimeout,
	},
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It unwraps DomainError and uses errors.Is to match sentinel errors.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code := de.Code(); code != CodeUnknown {
			return code
		}
	}

	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
// If SubSystem is set, checks the subSystemCodeMap for a specific code.
func (e *DomainError) Code() ErrorCode {
	if e.SubSystem != "" {
		if subsysMap, ok := subSystemCodeMap[e.Err]; ok {
			if code, ok := subsysMap[e.SubSystem]; ok {
				return code
			}
		}
	}
	if code, ok := errorCodeMap[e.Err]; ok {
		return code
	}
	return CodeUnknown
}
