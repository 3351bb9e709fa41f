package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
		expose    bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, expose: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, expose: true},
		{code: CodeForbidden, status: http.StatusForbidden, expose: true},
		{code: CodeNotFound, status: http.StatusNotFound, expose: true},
		{code: CodeConflict, status: http.StatusConflict, expose: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, expose: true},
		{code: CodeInsufficientStock, status: http.StatusBadRequest, expose: true},
		{code: CodeMixedVendorOrder, status: http.StatusBadRequest, expose: true},
		{code: CodeDuplicateRating, status: http.StatusBadRequest, expose: true},
		{code: CodeInvalidRating, status: http.StatusBadRequest, expose: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, expose: true},
		{code: CodeInternal, status: http.StatusInternalServerError, retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.ExposeMessage != tt.expose {
			t.Fatalf("code %s expected expose %v got %v", tt.code, tt.expose, meta.ExposeMessage)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("code %s has no public message", tt.code)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := stdErrors.New("db down")
	err := Wrap(CodeDependency, cause, "load product")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if !IsCode(err, CodeDependency) {
		t.Fatalf("expected dependency code")
	}
	if IsCode(stdErrors.New("plain"), CodeDependency) {
		t.Fatalf("plain error should not carry a code")
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	typed := New(CodeNotFound, "order not found").WithDetails(map[string]string{"id": "1"})
	wrapped := stdErrors.Join(stdErrors.New("outer"), typed)

	got := As(wrapped)
	if got == nil || got.Code() != CodeNotFound {
		t.Fatalf("expected to find typed error, got %v", got)
	}
	if got.Details() == nil {
		t.Fatalf("expected details to survive")
	}
}

func TestNilErrorAccessors(t *testing.T) {
	var e *Error
	if e.Code() != CodeInternal {
		t.Fatalf("nil error should report internal code")
	}
	if e.Message() != "" || e.Error() != "" || e.Unwrap() != nil {
		t.Fatalf("nil accessors should be zero valued")
	}
}
