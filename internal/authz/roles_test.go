package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	id, err := ParseRole("Auditor")
	require.NoError(t, err)
	assert.Equal(t, RoleAuditor, id)

	id, err = ParseRole("50")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, id)

	_, err = ParseRole("31")
	assert.Error(t, err)
	_, err = ParseRole("guest")
	assert.Error(t, err)
}

func TestRoleClasses(t *testing.T) {
	assert.True(t, IsReadOnly(RoleAuditor))
	assert.False(t, IsReadOnly(RoleConsultant))
	assert.True(t, IsElevated(RoleManagement))
	assert.False(t, IsElevated(RoleAuditor))
}
