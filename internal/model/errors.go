package model

import "fmt"

// AcquisitionError means both the rendered and the plain fetch path failed
type AcquisitionError struct {
	URL      string
	Primary  error
	Fallback error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: primary: %v; fallback: %v", e.URL, e.Primary, e.Fallback)
}

func (e *AcquisitionError) Unwrap() error { return e.Fallback }

// ResourceFetchError means one external resource was unreachable or unreadable
type ResourceFetchError struct {
	URL string
	Err error
}

func (e *ResourceFetchError) Error() string {
	return fmt.Sprintf("fetch resource %s: %v", e.URL, e.Err)
}

func (e *ResourceFetchError) Unwrap() error { return e.Err }

// ReasoningBackendError means a single backend call failed
type ReasoningBackendError struct {
	Backend string
	Err     error
}

func (e *ReasoningBackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Err)
}

func (e *ReasoningBackendError) Unwrap() error { return e.Err }

// SubmissionError means posting an answer failed at the transport level
type SubmissionError struct {
	URL string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit to %s: %v", e.URL, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// ValidationError means the caller supplied bad credentials
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConfigurationError means a required setting is missing or unusable
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Field, e.Reason)
}

// ClassifyError buckets an error for log labeling. The buckets mirror
// how the solve loop treats failures, not the error's concrete type.
func ClassifyError(err error) string {
	if err == nil {
		return "none"
	}
	switch err.(type) {
	case *AcquisitionError:
		return "acquisition"
	case *ResourceFetchError:
		return "resource"
	case *ReasoningBackendError:
		return "reasoning"
	case *SubmissionError:
		return "network"
	case *ValidationError:
		return "authentication"
	case *ConfigurationError:
		return "configuration"
	}
	return "unknown"
}
