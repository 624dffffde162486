package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_Flags(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsAuthenticated())
	assert.False(t, nilUser.IsElevated())

	assert.False(t, (&User{}).IsAuthenticated())
	assert.True(t, (&User{ID: 1}).IsAuthenticated())
	assert.True(t, (&User{ID: 1, CanManageGroups: true}).IsElevated())
	assert.True(t, (&User{ID: 1, IsAdmin: true}).IsElevated())
	assert.False(t, (&User{ID: 1}).IsElevated())
}
