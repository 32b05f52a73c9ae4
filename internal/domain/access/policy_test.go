package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p, err := DefaultPolicy()
	require.NoError(t, err)

	assert.Equal(t, RoleSiteEngineer, p.RoleOrDefault(""))
	assert.True(t, p.Allows(RoleAdmin, ActionManageBilling))
	assert.True(t, p.Allows(RoleQAManager, ActionApprove))
	assert.False(t, p.Allows(RoleClient, ActionWrite))
	assert.False(t, p.Allows(RoleSiteEngineer, ActionApprove))
	assert.False(t, p.Allows("intern", ActionRead))
	assert.Contains(t, p.RoleNames(), RoleSubcontractor)
}

func TestParsePolicyRejectsUnknownDefault(t *testing.T) {
	_, err := ParsePolicy([]byte("default_role: ghost\nroles:\n  client: [read]\n"))
	require.Error(t, err)
}

func TestParsePolicyRejectsEmpty(t *testing.T) {
	_, err := ParsePolicy([]byte("default_role: client\n"))
	require.Error(t, err)
}
