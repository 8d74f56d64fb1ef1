package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad"), KindValidation},
		{"not found wrapped", fmt.Errorf("lookup: %w", NotFound("missing")), KindNotFound},
		{"auth", Auth("nope"), KindAuth},
		{"conflict", Conflict("dup"), KindConflict},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil", nil, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "user exists", MessageOf(Conflict("user exists"), "fallback"))
	assert.Equal(t, "fallback", MessageOf(Internal("db down", errors.New("conn refused")), "fallback"))
	assert.Equal(t, "fallback", MessageOf(errors.New("raw"), "fallback"))
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("conn refused")
	err := Internal("failed to load user", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load user: conn refused", err.Error())
	assert.True(t, Is(err, KindInternal))
	assert.False(t, Is(err, KindNotFound))
}
