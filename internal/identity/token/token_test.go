package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("secret", "branchops", time.Hour)

	raw, expiresAt, err := issuer.Issue("uid-1", "ana@acme.co")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.Subject)
	assert.Equal(t, "ana@acme.co", claims.Email)
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewIssuer("secret", "branchops", time.Minute)
	other := NewIssuer("other-secret", "branchops", time.Minute)

	raw, _, err := other.Issue("uid-1", "ana@acme.co")
	require.NoError(t, err)
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	raw, _, err = issuer.Issue("uid-1", "ana@acme.co")
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
