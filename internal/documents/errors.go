package documents

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorKind classifies a document store failure so callers can decide
// between fallback query variants, remediation guidance, and plain errors.
type ErrorKind string

const (
	// KindUnknownAttribute means a write named an attribute the collection
	// schema does not have. Repositories retry with a reduced field set.
	KindUnknownAttribute ErrorKind = "unknown_attribute"
	// KindMissingIndex means a query needed an index that is not
	// provisioned. Repositories retry without the offending clause.
	KindMissingIndex ErrorKind = "missing_index"
	// KindMissingCollection means the collection itself is absent.
	KindMissingCollection ErrorKind = "missing_collection"
	// KindNotFound means the requested document does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindPermission means the caller's role lacks a required scope.
	KindPermission ErrorKind = "permission"
	// KindUnavailable covers connectivity and server-side failures;
	// these are the only retryable errors.
	KindUnavailable ErrorKind = "unavailable"
	// KindInvalid covers rejected requests that fit no other class.
	KindInvalid ErrorKind = "invalid"
)

// StoreError is a classified failure returned by the document store.
type StoreError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	// Attribute carries the offending attribute name for
	// KindUnknownAttribute, when the store names it.
	Attribute string
}

func (e *StoreError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("document store: %s (%s %q)", e.Message, e.Kind, e.Attribute)
	}
	return fmt.Sprintf("document store: %s (%s)", e.Message, e.Kind)
}

// Retryable reports whether the failure is transient
func (e *StoreError) Retryable() bool {
	return e.Kind == KindUnavailable
}

// AsStoreError extracts a *StoreError from err, if present
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err is a StoreError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	se, ok := AsStoreError(err)
	return ok && se.Kind == kind
}

var attributePattern = regexp.MustCompile(`[Uu]nknown attribute:?\s*"?([A-Za-z0-9_$]+)"?`)

// classify maps an HTTP status and error envelope from the store to a
// StoreError. The store reports schema drift in message text rather than
// machine-readable codes, so message sniffing is part of the contract.
func classify(status int, errType, message string) *StoreError {
	se := &StoreError{StatusCode: status, Message: message}
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "unknown attribute") || errType == "document_invalid_structure":
		se.Kind = KindUnknownAttribute
		if m := attributePattern.FindStringSubmatch(message); len(m) == 2 {
			se.Attribute = m[1]
		}
	case strings.Contains(lower, "index not found") ||
		strings.Contains(lower, "requires an index") ||
		strings.Contains(lower, "index_not_found"):
		se.Kind = KindMissingIndex
	case errType == "collection_not_found" || strings.Contains(lower, "collection with the requested id could not be found"):
		se.Kind = KindMissingCollection
	case status == 404:
		se.Kind = KindNotFound
	case status == 401 || status == 403:
		se.Kind = KindPermission
	case status == 429 || status >= 500 || status == 0:
		se.Kind = KindUnavailable
	default:
		se.Kind = KindInvalid
	}
	return se
}

// unreachable wraps a transport-level failure (no HTTP response at all)
func unreachable(err error) *StoreError {
	return &StoreError{
		Kind:    KindUnavailable,
		Message: fmt.Sprintf("endpoint unreachable: %v", err),
	}
}
