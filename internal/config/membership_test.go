package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMembershipRulesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewMembershipRulesHolder(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultMembershipRules(), holder.Get())
}

func TestMembershipRulesFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "membership:\n  contractorSuffixLength: 7\n  branchProbeLimit: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "membership.yml"), []byte(content), 0o600))

	holder, err := NewMembershipRulesHolder(zap.NewNop())
	require.NoError(t, err)

	rules := holder.Get()
	assert.Equal(t, 7, rules.ContractorSuffixLength)
	assert.Equal(t, 3, rules.BranchProbeLimit)
	assert.Equal(t, 10, rules.PageSize)
}

func TestMembershipRulesRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "membership:\n  contractorSuffixLength: 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "membership.yml"), []byte(content), 0o600))

	_, err := NewMembershipRulesHolder(zap.NewNop())
	assert.Error(t, err)
}

func TestNilHolderFallsBackToDefaults(t *testing.T) {
	var holder *MembershipRulesHolder
	assert.Equal(t, DefaultMembershipRules(), holder.Get())
}
