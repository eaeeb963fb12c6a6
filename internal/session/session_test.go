package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"matjip/apps/backend/internal/curator"
)

var adminVerifier = StaticVerifier{User: "admin", Password: "1234"}

func TestMachineLoginWithValidCredentials(t *testing.T) {
	m := NewMachine()
	require.Equal(t, StateLoggedOut, m.State())

	require.NoError(t, m.Login(adminVerifier, "admin", "1234"))
	assert.Equal(t, StateInput, m.State())
	assert.Equal(t, "admin", m.User())
}

func TestMachineLoginRejectsWrongPassword(t *testing.T) {
	m := NewMachine()

	err := m.Login(adminVerifier, "admin", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, StateLoggedOut, m.State())
	assert.Empty(t, m.User())

	err = m.Login(nil, "admin", "1234")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, StateLoggedOut, m.State())
}

func TestMachineFullCycle(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Login(adminVerifier, "admin", "1234"))

	result := curator.Result{TopCategories: []string{"B", "A", "C"}, Answer: "추천"}
	require.NoError(t, m.ShowResult(result))
	assert.Equal(t, StateResult, m.State())

	got, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, []string{"B", "A", "C"}, got.TopCategories)
	assert.Equal(t, "추천", got.Answer)

	require.NoError(t, m.Restart())
	assert.Equal(t, StateInput, m.State())
	_, ok = m.Result()
	assert.False(t, ok)

	m.Logout()
	assert.Equal(t, StateLoggedOut, m.State())
	assert.Empty(t, m.User())
}

func TestMachineRejectsInvalidTransitions(t *testing.T) {
	m := NewMachine()
	assert.ErrorIs(t, m.ShowResult(curator.Result{}), ErrInvalidTransition)
	assert.ErrorIs(t, m.Restart(), ErrInvalidTransition)
	assert.Equal(t, StateLoggedOut, m.State())

	require.NoError(t, m.Login(adminVerifier, "admin", "1234"))
	assert.ErrorIs(t, m.Login(adminVerifier, "admin", "1234"), ErrInvalidTransition)
	assert.ErrorIs(t, m.Restart(), ErrInvalidTransition)

	require.NoError(t, m.ShowResult(curator.Result{Answer: "first"}))
	assert.ErrorIs(t, m.ShowResult(curator.Result{Answer: "second"}), ErrInvalidTransition)
	got, _ := m.Result()
	assert.Equal(t, "first", got.Answer)
}

func TestStaticVerifier(t *testing.T) {
	assert.True(t, adminVerifier.Verify("admin", "1234"))
	assert.False(t, adminVerifier.Verify("admin", "12345"))
	assert.False(t, adminVerifier.Verify("root", "1234"))
	assert.False(t, adminVerifier.Verify("", ""))
}

func TestBcryptVerifier(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	v, err := NewBcryptVerifier("admin", string(hash))
	require.NoError(t, err)
	assert.True(t, v.Verify("admin", "s3cret"))
	assert.False(t, v.Verify("admin", "1234"))
	assert.False(t, v.Verify("other", "s3cret"))

	_, err = NewBcryptVerifier("admin", "not-a-hash")
	assert.Error(t, err)
}

func TestStoreUpdateAndSnapshot(t *testing.T) {
	store := NewStore(time.Hour)
	id := store.Create(NewMachine())
	require.NotEmpty(t, id)
	assert.Equal(t, 1, store.Len())

	m, err := store.Update(id, func(m *Machine) error {
		return m.Login(adminVerifier, "admin", "1234")
	})
	require.NoError(t, err)
	assert.Equal(t, StateInput, m.State())

	// Mutating a snapshot does not touch the stored machine.
	m.Logout()
	stored, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StateInput, stored.State())
}

func TestStoreUpdateLeavesMachineOnError(t *testing.T) {
	store := NewStore(time.Hour)
	id := store.Create(NewMachine())

	boom := errors.New("boom")
	_, err := store.Update(id, func(m *Machine) error {
		m.state = StateResult
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StateLoggedOut, stored.State())
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour)
	store.now = func() time.Time { return now }

	id := store.Create(NewMachine())
	now = now.Add(30 * time.Minute)
	_, err := store.Get(id)
	require.NoError(t, err)

	now = now.Add(61 * time.Minute)
	_, err = store.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())

	_, err = store.Update("missing", func(*Machine) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(0)
	id := store.Create(NewMachine())
	store.Delete(id)
	_, err := store.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("0123456789abcdef-secret", "matjip-curator", time.Hour)
	raw, err := tokens.Issue("session-1")
	require.NoError(t, err)

	id, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
}

func TestTokensRejectTamperedOrExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokens("0123456789abcdef-secret", "matjip-curator", time.Hour)
	tokens.now = func() time.Time { return now }

	raw, err := tokens.Issue("session-1")
	require.NoError(t, err)

	other := NewTokens("another-secret-value-000", "matjip-curator", time.Hour)
	other.now = tokens.now
	_, err = other.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewTokens("0123456789abcdef-secret", "someone-else", time.Hour)
	wrongIssuer.now = tokens.now
	_, err = wrongIssuer.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	now = now.Add(2 * time.Hour)
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
