package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsKindSentinel(t *testing.T) {
	errRunMissing := New(KindNotFound, "payroll run not found")
	wrapped := fmt.Errorf("process run: %w", errRunMissing)

	assert.True(t, errors.Is(wrapped, errRunMissing))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrConflict))
	assert.Equal(t, "payroll run not found", errRunMissing.Error())
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{New(KindValidation, "bad month"), KindValidation},
		{fmt.Errorf("wrap: %w", New(KindConflict, "dup")), KindConflict},
		{New(KindNotFound, "missing"), KindNotFound},
		{errors.New("boom"), KindInternal},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, KindOf(c.err))
	}
}
