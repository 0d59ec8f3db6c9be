package docbind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/docbind/i18n"
)

// Issue codes.
const (
	CodeConfiguration   = "configuration"
	CodeRequired        = "required"
	CodeInvalidType     = "invalid_type"
	CodeParseError      = "parse_error"
	CodeUnknownProperty = "unknown_property"
)

// Sentinels matched through errors.Is on Issues.
var (
	ErrConfiguration        = errors.New("docbind: configuration error")
	ErrRequiredFieldMissing = errors.New("docbind: required property missing")
)

// Issue represents a single mapping problem.
type Issue struct {
	Path    string // JSON Pointer of the property (for example: /members/2/name).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, offending option names, etc.
	Cause   error  // Optional: underlying error.
}

// Issues is a collection of mapping errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at /name
		fmt.Fprintf(b, "%s at %s", it.Code, pathOrRoot(it.Path))
		if it.Hint != "" {
			fmt.Fprintf(b, " (%s)", it.Hint)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is matches ErrConfiguration and ErrRequiredFieldMissing against the issue
// codes.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		switch {
		case target == ErrConfiguration && it.Code == CodeConfiguration:
			return true
		case target == ErrRequiredFieldMissing && it.Code == CodeRequired:
			return true
		}
	}
	return false
}

// Unwrap exposes the underlying causes.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func issueAt(path, code, property, hint string, cause error) Issue {
	return Issue{
		Path:    path,
		Code:    code,
		Message: i18n.T(code, map[string]string{"property": property}),
		Hint:    hint,
		Cause:   cause,
	}
}

func configError(path, property, format string, args ...any) error {
	return Issues{issueAt(path, CodeConfiguration, property, fmt.Sprintf(format, args...), nil)}
}

func typeError(path, property, hint string, cause error) error {
	return Issues{issueAt(path, CodeInvalidType, property, hint, cause)}
}

func parseError(cause error) error {
	return Issues{issueAt("", CodeParseError, "", cause.Error(), cause)}
}
