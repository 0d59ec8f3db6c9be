package docbind_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/reoring/docbind"
)

func TestIssues_ErrorSummary(t *testing.T) {
	iss := docbind.Issues{
		{Path: "/a", Code: docbind.CodeInvalidType, Hint: "expected a string"},
		{Path: "", Code: docbind.CodeRequired},
		{Path: "/c", Code: docbind.CodeConfiguration},
		{Path: "/d", Code: docbind.CodeParseError},
	}
	s := iss.Error()
	for _, want := range []string{"invalid_type at /a (expected a string)", "required at /", "(total 4)"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary %q lacks %q", s, want)
		}
	}
	if docbind.Issues(nil).Error() != "" {
		t.Fatalf("empty issues must have an empty summary")
	}
}

func TestIssues_IsAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("mapping: %w", docbind.Issues{{Code: docbind.CodeRequired, Cause: cause}})
	if !errors.Is(err, docbind.ErrRequiredFieldMissing) {
		t.Fatalf("expected ErrRequiredFieldMissing")
	}
	if errors.Is(err, docbind.ErrConfiguration) {
		t.Fatalf("did not expect ErrConfiguration")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause must be reachable through errors.Is")
	}
	iss, ok := docbind.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("AsIssues failed: %v", err)
	}
	if _, ok := docbind.AsIssues(cause); ok {
		t.Fatalf("plain errors are not Issues")
	}
}

func TestAppendIssues(t *testing.T) {
	var iss docbind.Issues
	iss = docbind.AppendIssues(iss)
	if iss == nil || len(iss) != 0 {
		t.Fatalf("expected empty non-nil issues")
	}
	iss = docbind.AppendIssues(iss, docbind.Issue{Code: docbind.CodeRequired})
	if len(iss) != 1 {
		t.Fatalf("expected one issue")
	}
}
