package docqa_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := docqa.Errorf(docqa.ENOTFOUND, "index %q not found", "test")

	assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
	assert.Equal(t, "index \"test\" not found", docqa.ErrorMessage(err))
	assert.Contains(t, err.Error(), "code=not_found")
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docqa.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docqa.ErrorMessage(nil))
}

func TestErrorCode_UnwrapsWrappedErrors(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("rebuild: %w", docqa.Errorf(docqa.EMISMATCH, "dimension 384 != 768"))

	assert.Equal(t, docqa.EMISMATCH, docqa.ErrorCode(err))
	assert.Equal(t, "dimension 384 != 768", docqa.ErrorMessage(err))
}

func TestErrorCode_PlainErrorIsInternal(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, docqa.EINTERNAL, docqa.ErrorCode(err))
	assert.Equal(t, "Internal error.", docqa.ErrorMessage(err))
}
