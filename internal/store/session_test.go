package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/model"
)

type fakeSessionClient struct {
	user       *model.User
	signInErr  error
	signOutErr error
	resumeErr  error
	resumeN    int
	signedOut  []string
}

func (f *fakeSessionClient) SignIn(_ context.Context, email, password string) (Session, error) {
	if f.signInErr != nil {
		return Session{}, f.signInErr
	}
	return Session{User: f.user, Access: "access-1", Refresh: "refresh-1"}, nil
}

func (f *fakeSessionClient) SignOut(_ context.Context, refreshToken string) error {
	f.signedOut = append(f.signedOut, refreshToken)
	return f.signOutErr
}

func (f *fakeSessionClient) Resume(_ context.Context, refreshToken string) (Session, error) {
	f.resumeN++
	if f.resumeErr != nil {
		return Session{}, f.resumeErr
	}
	return Session{User: f.user, Access: "access-2", Refresh: refreshToken}, nil
}

func staffUser() *model.User {
	return &model.User{ID: 7, Email: "waiter@pos.local", Role: model.RoleStaff, FullName: "Waiter One"}
}

func TestSessionStoreLogin(t *testing.T) {
	client := &fakeSessionClient{user: staffUser()}
	s := NewSessionStore(client, nil)

	var notified []Session
	s.OnChange(func(sess Session) { notified = append(notified, sess) })

	require.NoError(t, s.Login(context.Background(), "waiter@pos.local", "secret"))

	assert.True(t, s.Authenticated())
	assert.Equal(t, model.RoleStaff, s.Role())
	assert.Equal(t, "/staff", s.HomeRoute())
	assert.Empty(t, s.Err())
	require.Len(t, notified, 1)
	assert.True(t, notified[0].Authenticated())
}

func TestSessionStoreLoginFailure(t *testing.T) {
	client := &fakeSessionClient{signInErr: errors.New("invalid email or password")}
	s := NewSessionStore(client, nil)

	err := s.Login(context.Background(), "waiter@pos.local", "wrong")
	require.Error(t, err)

	assert.False(t, s.Authenticated(), "a failed login leaves the store signed out")
	assert.Nil(t, s.Current())
	assert.NotEmpty(t, s.Err())
	assert.Equal(t, "invalid email or password", s.Err())
	assert.False(t, s.Loading())
}

func TestSessionStoreLogoutClearsLocallyEvenOnRemoteFailure(t *testing.T) {
	client := &fakeSessionClient{user: staffUser(), signOutErr: errors.New("network down")}
	s := NewSessionStore(client, nil)
	require.NoError(t, s.Login(context.Background(), "waiter@pos.local", "secret"))

	err := s.Logout(context.Background())
	require.Error(t, err)

	assert.False(t, s.Authenticated(), "local session is dropped regardless of the remote outcome")
	assert.Equal(t, "network down", s.Err())
	assert.Equal(t, []string{"refresh-1"}, client.signedOut)
}

func TestSessionStoreLogoutWhenSignedOut(t *testing.T) {
	client := &fakeSessionClient{}
	s := NewSessionStore(client, nil)

	require.NoError(t, s.Logout(context.Background()))
	assert.Empty(t, client.signedOut, "no refresh token, no remote call")
}

func TestSessionStoreCheckAuthResumes(t *testing.T) {
	client := &fakeSessionClient{user: staffUser()}
	persist := NewStateFile(filepath.Join(t.TempDir(), "session.json"))
	s := NewSessionStore(client, persist)
	require.NoError(t, s.Login(context.Background(), "waiter@pos.local", "secret"))

	// A new store in a fresh process rehydrates the persisted session and
	// verifies it against the remote side.
	rehydrated := NewSessionStore(client, persist)
	assert.True(t, rehydrated.Authenticated())

	rehydrated.CheckAuth(context.Background())
	assert.True(t, rehydrated.Authenticated())
	assert.Equal(t, "access-2", rehydrated.Session().Access)
}

func TestSessionStoreCheckAuthFailureSignsOut(t *testing.T) {
	client := &fakeSessionClient{user: staffUser()}
	persist := NewStateFile(filepath.Join(t.TempDir(), "session.json"))
	s := NewSessionStore(client, persist)
	require.NoError(t, s.Login(context.Background(), "waiter@pos.local", "secret"))

	client.resumeErr = errors.New("session expired")
	rehydrated := NewSessionStore(client, persist)
	rehydrated.CheckAuth(context.Background())

	assert.False(t, rehydrated.Authenticated())

	// The persisted snapshot was cleared too.
	data, err := persist.Load()
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSessionStoreEnsureCheckedRunsOnce(t *testing.T) {
	client := &fakeSessionClient{user: staffUser()}
	s := NewSessionStore(client, nil)
	require.NoError(t, s.Login(context.Background(), "waiter@pos.local", "secret"))

	ctx := context.Background()
	s.EnsureChecked(ctx)
	s.EnsureChecked(ctx)
	s.EnsureChecked(ctx)

	assert.Equal(t, 1, client.resumeN)
}

func TestStateFileRoundTrip(t *testing.T) {
	f := NewStateFile(filepath.Join(t.TempDir(), "nested", "session.json"))

	data, err := f.Load()
	require.NoError(t, err)
	assert.Nil(t, data, "missing file loads as empty, not an error")

	require.NoError(t, f.Save([]byte(`{"session":{}}`)))
	data, err = f.Load()
	require.NoError(t, err)
	assert.JSONEq(t, `{"session":{}}`, string(data))

	require.NoError(t, f.Clear())
	require.NoError(t, f.Clear(), "clearing twice is fine")
}
