package common

// Kind classifies registry failures. Every failure aborts the whole
// operation, Kind only tells the caller what to fix before resubmitting.
type Kind uint8

// Failure kinds.
const (
	_ Kind = iota
	// KindAuthorization is a missing role, ownership or beneficiary status.
	KindAuthorization
	// KindValidation is malformed input: length mismatch, unknown node,
	// non-whitelisted attribute, duplicate operation and so on.
	KindValidation
	// KindStateConflict is an operation invalid for the current lifecycle
	// state (already claimed, already linked, type already set).
	KindStateConflict
	// KindSignature is a structured-data signature that failed verification.
	KindSignature
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindStateConflict:
		return "state conflict"
	case KindSignature:
		return "signature"
	default:
		return "unknown"
	}
}

// Error is a classified registry error with a stable message.
type Error struct {
	Kind Kind
	Msg  string
}

// Error implements error.
func (e *Error) Error() string {
	return e.Msg
}

// Is makes errors.Is match either the exact error (same kind and message)
// or a bare kind value such as ErrValidation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	return t.Msg == "" || t.Msg == e.Msg
}

// Kind-only values to match any error of the corresponding kind.
var (
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrStateConflict = &Error{Kind: KindStateConflict}
	ErrSignature     = &Error{Kind: KindSignature}
)

// Authorization returns new AuthorizationError with the given message.
func Authorization(msg string) *Error { return &Error{Kind: KindAuthorization, Msg: msg} }

// Validation returns new ValidationError with the given message.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Msg: msg} }

// StateConflict returns new StateConflict error with the given message.
func StateConflict(msg string) *Error { return &Error{Kind: KindStateConflict, Msg: msg} }

// Signature returns new SignatureError with the given message.
func Signature(msg string) *Error { return &Error{Kind: KindSignature, Msg: msg} }

// Errors shared by several modules.
var (
	// ErrInvalidSignature is the only signature failure ever reported, so
	// that a failing payload does not reveal which of its fields mismatched.
	ErrInvalidSignature = Signature("invalid signature")
	// ErrSameLength is returned by batch operations with mismatching inputs.
	ErrSameLength = Validation("same length")
	// ErrZeroAddress is returned when zero address is passed where an
	// account is expected.
	ErrZeroAddress = Validation("invalid address")
	// ErrInvalidArguments is returned when an operation receives arguments
	// of an unexpected type.
	ErrInvalidArguments = Validation("invalid arguments")
	// ErrInvalidNode is returned for unknown nodes.
	ErrInvalidNode = Validation("invalid node")
	// ErrInvalidParentNode is returned when a parent node is missing or has
	// a wrong type.
	ErrInvalidParentNode = Validation("invalid parent node")
)
