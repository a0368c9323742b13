package services

import (
	"testing"
	"time"

	"medstock/app/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

func newSessionService(env *testEnv, ttl time.Duration) *SessionService {
	return NewSessionService(repo.NewSessionRepository(env.db), ttl)
}

func TestSessionCreateAndResolve(t *testing.T) {
	env := newTestEnv(t)
	svc := newSessionService(env, time.Hour)

	sess, err := svc.Create(env.admin.ID, testUA, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Desktop", sess.Device)
	assert.Equal(t, "Chrome", sess.Browser)
	assert.Equal(t, "Windows", sess.OS)
	assert.Len(t, sess.Token, 64)

	got, err := svc.Resolve(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, env.admin.ID, got.UserID)
}

func TestSessionResolveExpired(t *testing.T) {
	env := newTestEnv(t)
	svc := newSessionService(env, -time.Minute)

	sess, err := svc.Create(env.admin.ID, testUA, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.Resolve(sess.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRotation(t *testing.T) {
	env := newTestEnv(t)
	svc := newSessionService(env, time.Hour)

	sess, err := svc.Create(env.admin.ID, testUA, "10.0.0.1")
	require.NoError(t, err)
	oldToken := sess.Token

	newToken, err := svc.Rotate(oldToken, env.admin.ID)
	require.NoError(t, err)
	require.NotEqual(t, oldToken, newToken)

	// the old token is dead, the new one works
	_, err = svc.Resolve(oldToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	got, err := svc.Resolve(newToken)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestSessionRotationWrongOwner(t *testing.T) {
	env := newTestEnv(t)
	svc := newSessionService(env, time.Hour)
	other, err := env.users.Register("other@test.local", "Other", "pw123456", "STAFF")
	require.NoError(t, err)

	sess, err := svc.Create(env.admin.ID, testUA, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.Rotate(sess.Token, other.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// the original token is still valid
	_, err = svc.Resolve(sess.Token)
	require.NoError(t, err)
}

func TestListActiveMarksCurrent(t *testing.T) {
	env := newTestEnv(t)
	svc := newSessionService(env, time.Hour)

	first, err := svc.Create(env.admin.ID, testUA, "10.0.0.1")
	require.NoError(t, err)
	second, err := svc.Create(env.admin.ID, testUA, "10.0.0.2")
	require.NoError(t, err)

	list, err := svc.ListActive(env.admin.ID, second.Token)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, s := range list {
		switch s.ID {
		case first.ID:
			assert.False(t, s.IsCurrent)
		case second.ID:
			assert.True(t, s.IsCurrent)
		default:
			t.Fatalf("unexpected session %s", s.ID)
		}
	}
}

func TestTerminateOnlyOwnSessions(t *testing.T) {
	env := newTestEnv(t)
	svc := newSessionService(env, time.Hour)
	other, err := env.users.Register("other@test.local", "Other", "pw123456", "STAFF")
	require.NoError(t, err)

	sess, err := svc.Create(env.admin.ID, testUA, "10.0.0.1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Terminate(sess.ID, other.ID), ErrSessionNotFound)
	require.NoError(t, svc.Terminate(sess.ID, env.admin.ID))
	_, err = svc.Resolve(sess.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPruneExpired(t *testing.T) {
	env := newTestEnv(t)
	expired := newSessionService(env, -time.Minute)
	active := newSessionService(env, time.Hour)

	_, err := expired.Create(env.admin.ID, testUA, "10.0.0.1")
	require.NoError(t, err)
	keep, err := active.Create(env.admin.ID, testUA, "10.0.0.2")
	require.NoError(t, err)

	n, err := active.PruneExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = active.Resolve(keep.Token)
	require.NoError(t, err)
}
