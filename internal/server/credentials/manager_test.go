package credentials

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(bcrypt.MinCost)
	require.NoError(t, err)
	return m
}

func TestHashVerify_RoundTrip(t *testing.T) {
	m := newManager(t)

	for _, p := range []string{"longenough1", "", "пароль-с-юникодом", strings.Repeat("x", MaxPasswordBytes)} {
		rec, err := m.Hash(p)
		require.NoError(t, err)

		ok, err := m.Verify(p, rec)
		require.NoError(t, err)
		assert.True(t, ok, "password %q must verify", p)
	}
}

func TestVerify_WrongPasswordIsNotAnError(t *testing.T) {
	m := newManager(t)
	rec, err := m.Hash("longenough1")
	require.NoError(t, err)

	ok, err := m.Verify("longenough2", rec)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_IsSalted(t *testing.T) {
	m := newManager(t)
	a, err := m.Hash("same")
	require.NoError(t, err)
	b, err := m.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHash_RecordCarriesCost(t *testing.T) {
	m, err := NewManager(6)
	require.NoError(t, err)

	rec, err := m.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(rec))
	require.NoError(t, err)
	assert.Equal(t, 6, cost)
	assert.True(t, strings.HasPrefix(rec, "$2a$06$"))
}

func TestHash_TooLong(t *testing.T) {
	m := newManager(t)
	_, err := m.Hash(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestVerify_CorruptRecord(t *testing.T) {
	m := newManager(t)
	good, err := m.Hash("pw")
	require.NoError(t, err)

	corrupt := []string{
		"",
		"plaintext",
		strings.Replace(good, "$04$", "$99$", 1),
		strings.Replace(good, "$2a$", "$9z$", 1),
		good[:20],
	}
	for _, rec := range corrupt {
		ok, err := m.Verify("pw", rec)
		assert.False(t, ok)
		assert.ErrorIs(t, err, common.ErrCredential, "record %q", rec)
	}
}

func TestNewManager_RejectsCost(t *testing.T) {
	_, err := NewManager(bcrypt.MinCost - 1)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = NewManager(bcrypt.MaxCost + 1)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestDummyVerify(t *testing.T) {
	m := newManager(t)
	m.DummyVerify("anything")
}
