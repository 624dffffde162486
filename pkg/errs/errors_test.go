package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("name", "group name already exists")
	assert.Equal(t, "name: group name already exists", err.Error())
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsNotFound(err))

	bare := &ValidationError{Message: "bad input"}
	assert.Equal(t, "bad input", bare.Error())
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("group", 42)
	assert.Equal(t, "group 42 not found", err.Error())
	assert.True(t, IsNotFound(err))
}

func TestAuthorizationError(t *testing.T) {
	err := &AuthorizationError{Permission: "manage_groups"}
	assert.Equal(t, "access denied: manage_groups required", err.Error())
	assert.True(t, IsAuthorization(err))

	reason := &AuthorizationError{Reason: "cannot edit this user"}
	assert.Equal(t, "access denied: cannot edit this user", reason.Error())
}

func TestFailed(t *testing.T) {
	cause := errors.New("connection reset")
	err := Failed("add member", cause)
	assert.True(t, errors.Is(err, ErrOperationFailed))
	assert.Contains(t, err.Error(), "add member")
	assert.Contains(t, err.Error(), "connection reset")
}
