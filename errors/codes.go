package errors

// ErrorCode identifies a class of diagnostic. Codes group by stage:
// E1xxx for scanning, E2xxx for compilation, E3xxx for execution.
type ErrorCode string

const (
	// Scanning
	ErrUnterminatedString ErrorCode = "E1001"
	ErrUnterminatedPath   ErrorCode = "E1002"
	ErrMalformedNumber    ErrorCode = "E1003"
	ErrUnknownSymbol      ErrorCode = "E1004"

	// Compilation
	ErrUnexpectedToken   ErrorCode = "E2001"
	ErrMissingSeparator  ErrorCode = "E2002"
	ErrUnclosedBlock     ErrorCode = "E2003"
	ErrInvalidAssignment ErrorCode = "E2004"
	ErrUnknownExpression ErrorCode = "E2005"
	ErrDuplicateVariable ErrorCode = "E2006"
	ErrSelfReference     ErrorCode = "E2007"
	ErrNestedDefinition  ErrorCode = "E2008"
	ErrStrayReturn       ErrorCode = "E2009"

	// Execution
	ErrTypeMismatch      ErrorCode = "E3001"
	ErrUndefinedVariable ErrorCode = "E3002"
	ErrNotCallable       ErrorCode = "E3003"
	ErrArityMismatch     ErrorCode = "E3004"
	ErrNotIterable       ErrorCode = "E3005"
	ErrUnknownProperty   ErrorCode = "E3006"
	ErrBadDelay          ErrorCode = "E3007"
	ErrActionFailed      ErrorCode = "E3008"
	ErrInternal          ErrorCode = "E3009"
)

var codeDescriptions = map[ErrorCode]string{
	ErrUnterminatedString: "a string literal was opened but never closed",
	ErrUnterminatedPath:   "a path literal was opened but never closed",
	ErrMalformedNumber:    "a numeric literal is missing its digits",
	ErrUnknownSymbol:      "the scanner found a character the language does not use",
	ErrUnexpectedToken:    "a token appeared where the grammar does not allow it",
	ErrMissingSeparator:   "a separator between items or statements is missing",
	ErrUnclosedBlock:      "a block or grouping was opened but never closed",
	ErrInvalidAssignment:  "the left side of '=' cannot be assigned to",
	ErrUnknownExpression:  "the token cannot start or continue an expression",
	ErrDuplicateVariable:  "a variable with this name already exists in the scope",
	ErrSelfReference:      "a local variable was read inside its own initializer",
	ErrNestedDefinition:   "definitions of this kind cannot nest",
	ErrStrayReturn:        "return is only valid inside a function or generator",
	ErrTypeMismatch:       "the operand types do not support this operation",
	ErrUndefinedVariable:  "no variable with this name has been defined",
	ErrNotCallable:        "only functions and generators can be called",
	ErrArityMismatch:      "the call passed the wrong number of arguments",
	ErrNotIterable:        "only primed generators and built-in iterators can be iterated",
	ErrUnknownProperty:    "the enumeration has no member with this name",
	ErrBadDelay:           "wait expects a number of seconds",
	ErrActionFailed:       "an instrument action reported a failure",
	ErrInternal:           "the virtual machine hit an unexpected state",
}

func (c ErrorCode) String() string {
	return string(c)
}

// Description returns a short explanation of the code, or "" for a code
// this build does not know.
func (c ErrorCode) Description() string {
	return codeDescriptions[c]
}

// Category names the stage a code belongs to.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "scan"
	case '2':
		return "compile"
	case '3':
		return "runtime"
	}
	return "unknown"
}
