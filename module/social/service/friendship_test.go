package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SProject/module/social/model"
	errs "SProject/tools/errs"
)

type fakeStore struct {
	requests map[string]*model.FriendRequest
	users    map[string]*model.User
	notifs   []*model.Notification

	addFriendCalls []string // "user<-friend" in call order
	failAddFriend  map[string]error
}

func newFakeStore(users ...string) *fakeStore {
	s := &fakeStore{
		requests:      make(map[string]*model.FriendRequest),
		users:         make(map[string]*model.User),
		failAddFriend: make(map[string]error),
	}
	for _, u := range users {
		s.users[u] = &model.User{ID: u, Username: u + "-name"}
	}
	return s
}

func (s *fakeStore) InsertRequest(_ context.Context, req *model.FriendRequest) error {
	s.requests[req.ID] = req
	return nil
}

func (s *fakeStore) FindRequest(_ context.Context, id string) (*model.FriendRequest, error) {
	return s.requests[id], nil
}

func (s *fakeStore) FindPair(_ context.Context, requester, receiver string) (*model.FriendRequest, error) {
	for _, r := range s.requests {
		if r.Requester == requester && r.Receiver == receiver {
			return r, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) DeleteRequest(_ context.Context, id string) error {
	delete(s.requests, id)
	return nil
}

func (s *fakeStore) GetUser(_ context.Context, id string) (*model.User, error) {
	return s.users[id], nil
}

func (s *fakeStore) AddFriend(_ context.Context, userID, friendID string) error {
	if err := s.failAddFriend[userID]; err != nil {
		return err
	}
	s.addFriendCalls = append(s.addFriendCalls, userID+"<-"+friendID)
	u := s.users[userID]
	for _, f := range u.Friends {
		if f == friendID {
			return nil
		}
	}
	u.Friends = append(u.Friends, friendID)
	return nil
}

func (s *fakeStore) InsertNotification(_ context.Context, n *model.Notification) error {
	s.notifs = append(s.notifs, n)
	return nil
}

func pendingRequest(t *testing.T, f *Friendship, requester, receiver string) *model.FriendRequest {
	t.Helper()
	req, _, err := f.Send(context.Background(), requester, requester, receiver)
	require.NoError(t, err)
	return req
}

func TestSendCreatesPendingRequestAndNotification(t *testing.T) {
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)

	req, notif, err := f.Send(context.Background(), "alice", "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", req.Requester)
	assert.Equal(t, "bob", req.Receiver)
	assert.Equal(t, model.RequestPending, req.Status)

	require.NotNil(t, notif)
	assert.Equal(t, model.NotifyFriendRequest, notif.Type)
	assert.Equal(t, []string{"bob"}, notif.To)
	assert.Equal(t, "/alice-name", notif.Link)
}

func TestSendAsSomeoneElse(t *testing.T) {
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)

	_, _, err := f.Send(context.Background(), "mallory", "alice", "bob")
	assert.True(t, errs.ErrInvalidActor.Is(err))
	assert.Empty(t, s.requests)
}

func TestSendToSelf(t *testing.T) {
	s := newFakeStore("alice")
	f := NewFriendship(s, s, s)

	_, _, err := f.Send(context.Background(), "alice", "alice", "alice")
	assert.True(t, errs.ErrInvalidActor.Is(err))
}

func TestSendDuplicateSameDirection(t *testing.T) {
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)
	pendingRequest(t, f, "alice", "bob")

	_, _, err := f.Send(context.Background(), "alice", "alice", "bob")
	assert.True(t, errs.ErrConflict.Is(err))
	assert.Len(t, s.requests, 1)
}

func TestSendReverseDirectionAllowed(t *testing.T) {
	// the duplicate guard is directional; the reverse pair is distinct
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)
	pendingRequest(t, f, "alice", "bob")

	_, _, err := f.Send(context.Background(), "bob", "bob", "alice")
	require.NoError(t, err)
	assert.Len(t, s.requests, 2)
}

func TestAcceptAddsBothFriendsOnceAndDeletes(t *testing.T) {
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)
	req := pendingRequest(t, f, "alice", "bob")

	notif, err := f.Accept(context.Background(), req.ID, "bob")
	require.NoError(t, err)

	assert.Equal(t, []string{"bob"}, s.users["alice"].Friends)
	assert.Equal(t, []string{"alice"}, s.users["bob"].Friends)
	assert.Equal(t, []string{"alice<-bob", "bob<-alice"}, s.addFriendCalls)

	// record is gone: a second accept finds nothing
	_, err = f.Accept(context.Background(), req.ID, "bob")
	assert.True(t, errs.ErrNotFound.Is(err))

	require.NotNil(t, notif)
	assert.Equal(t, model.NotifyFriendAccepted, notif.Type)
	assert.Equal(t, []string{"alice"}, notif.To)
}

func TestAcceptOnlyByReceiver(t *testing.T) {
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)
	req := pendingRequest(t, f, "alice", "bob")

	_, err := f.Accept(context.Background(), req.ID, "alice")
	assert.True(t, errs.ErrForbidden.Is(err))
	assert.Empty(t, s.users["alice"].Friends)

	_, err = f.Accept(context.Background(), req.ID, "mallory")
	assert.True(t, errs.ErrForbidden.Is(err))
}

func TestAcceptMissingRequest(t *testing.T) {
	s := newFakeStore("bob")
	f := NewFriendship(s, s, s)

	_, err := f.Accept(context.Background(), "no-such-id", "bob")
	assert.True(t, errs.ErrNotFound.Is(err))
}

func TestAcceptSecondWriteFailureIsSurfaced(t *testing.T) {
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)
	req := pendingRequest(t, f, "alice", "bob")

	s.failAddFriend["bob"] = errors.New("write timeout")

	_, err := f.Accept(context.Background(), req.ID, "bob")
	require.Error(t, err)

	// first write applied, record kept so the accept can be retried
	assert.Equal(t, []string{"bob"}, s.users["alice"].Friends)
	require.NotNil(t, s.requests[req.ID])

	// retry succeeds and never duplicates the first entry
	delete(s.failAddFriend, "bob")
	_, err = f.Accept(context.Background(), req.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, s.users["alice"].Friends)
	assert.Equal(t, []string{"alice"}, s.users["bob"].Friends)
}

func TestDeclineDeletesWithoutSideEffects(t *testing.T) {
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)
	req := pendingRequest(t, f, "alice", "bob")
	notifsBefore := len(s.notifs)

	require.NoError(t, f.Decline(context.Background(), req.ID, "bob"))

	assert.Empty(t, s.users["alice"].Friends)
	assert.Empty(t, s.users["bob"].Friends)
	assert.Nil(t, s.requests[req.ID])
	assert.Len(t, s.notifs, notifsBefore)

	// decline again: the record no longer exists
	err := f.Decline(context.Background(), req.ID, "bob")
	assert.True(t, errs.ErrNotFound.Is(err))
}

func TestDeclineOnlyByReceiver(t *testing.T) {
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)
	req := pendingRequest(t, f, "alice", "bob")

	err := f.Decline(context.Background(), req.ID, "alice")
	assert.True(t, errs.ErrForbidden.Is(err))
	require.NotNil(t, s.requests[req.ID])
}

func TestCancelOnlyByRequester(t *testing.T) {
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)
	req := pendingRequest(t, f, "alice", "bob")

	err := f.Cancel(context.Background(), req.ID, "bob")
	assert.True(t, errs.ErrForbidden.Is(err))

	require.NoError(t, f.Cancel(context.Background(), req.ID, "alice"))
	assert.Nil(t, s.requests[req.ID])
}

func TestPairCollapsesAfterTerminalOutcome(t *testing.T) {
	// accepted or declined, the pair returns to "none" and a new request
	// can be sent again
	s := newFakeStore("alice", "bob")
	f := NewFriendship(s, s, s)

	req := pendingRequest(t, f, "alice", "bob")
	require.NoError(t, f.Decline(context.Background(), req.ID, "bob"))

	req2 := pendingRequest(t, f, "alice", "bob")
	_, err := f.Accept(context.Background(), req2.ID, "bob")
	require.NoError(t, err)

	pendingRequest(t, f, "alice", "bob")
}
