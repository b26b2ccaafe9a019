package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToHTTPStatus(t *testing.T) {
	tcs := map[ErrorCode]int{
		CodeInvalidAPIKey:    http.StatusBadRequest,
		CodeUnknownProvider:  http.StatusBadRequest,
		CodeArticleNotFound:  http.StatusNotFound,
		CodeGenerationBusy:   http.StatusConflict,
		CodeTooManyRequests:  http.StatusTooManyRequests,
		CodeStageFailed:      http.StatusBadGateway,
		CodeCacheError:       http.StatusServiceUnavailable,
		CodeGenerationFailed: http.StatusInternalServerError,
	}
	for code, want := range tcs {
		t.Run(string(code), func(t *testing.T) {
			assert.Equal(t, want, New(code, "x").HTTPStatus)
		})
	}
}

func TestAsAppErrorUnwrapsChain(t *testing.T) {
	base := New(CodeInvalidAPIKey, "bad key")
	wrapped := fmt.Errorf("save settings: %w", base)

	assert.True(t, IsAppError(wrapped))
	assert.Same(t, base, AsAppError(wrapped))

	plain := stderrors.New("boom")
	got := AsAppError(plain)
	assert.Equal(t, CodeUnknown, got.Code)
	assert.ErrorIs(t, got, plain)
}

func TestWithDetailDoesNotMutateShared(t *testing.T) {
	d := ErrMissingAPIKey.WithDetail("provider OpenRouter")
	assert.Equal(t, "provider OpenRouter", d.Detail)
	assert.Empty(t, ErrMissingAPIKey.Detail)
}
