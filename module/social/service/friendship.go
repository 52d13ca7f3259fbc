package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"SProject/logger"
	"SProject/module/social/model"
	errs "SProject/tools/errs"
	ids "SProject/tools/ids"
)

// RequestStore is the persistence surface for friend requests. FindPair
// matches requester/receiver positions as-is: the reverse direction is a
// different pair and does not block a new request (kept compatible with
// the existing clients, see DESIGN.md).
type RequestStore interface {
	InsertRequest(ctx context.Context, req *model.FriendRequest) error
	FindRequest(ctx context.Context, id string) (*model.FriendRequest, error)
	FindPair(ctx context.Context, requester, receiver string) (*model.FriendRequest, error)
	DeleteRequest(ctx context.Context, id string) error
}

// UserStore reads users and appends to friends lists. AddFriend must be
// idempotent ($addToSet semantics): accepting twice can never produce a
// duplicate entry.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	AddFriend(ctx context.Context, userID, friendID string) error
}

type NotificationStore interface {
	InsertNotification(ctx context.Context, n *model.Notification) error
}

// Friendship drives the friend-request lifecycle:
//
//	none -> pending -> accepted | declined
//
// Both terminal outcomes delete the record, collapsing the pair back to
// "none". Every guard runs before any write, so a guard failure never
// leaves a partial mutation behind.
type Friendship struct {
	requests RequestStore
	users    UserStore
	notifs   NotificationStore
	now      func() time.Time
}

func NewFriendship(requests RequestStore, users UserStore, notifs NotificationStore) *Friendship {
	return &Friendship{requests: requests, users: users, notifs: notifs, now: time.Now}
}

// Send creates a pending request from requester to receiver and the
// notification that announces it.
func (f *Friendship) Send(ctx context.Context, caller, requester, receiver string) (*model.FriendRequest, *model.Notification, error) {
	if caller != requester {
		return nil, nil, errs.ErrInvalidActor.WithDetail("friend requests can only be sent as yourself")
	}
	if requester == receiver {
		return nil, nil, errs.ErrInvalidActor.WithDetail("cannot send a friend request to yourself")
	}
	if existing, err := f.requests.FindPair(ctx, requester, receiver); err != nil {
		return nil, nil, err
	} else if existing != nil {
		return nil, nil, errs.ErrConflict.WithDetail("friend request already sent")
	}

	from, err := f.users.GetUser(ctx, requester)
	if err != nil {
		return nil, nil, err
	}
	if from == nil {
		return nil, nil, errs.ErrNotFound.WithDetail("requester " + requester)
	}

	req := &model.FriendRequest{
		ID:         ids.GenerateString(),
		Requester:  requester,
		Receiver:   receiver,
		Status:     model.RequestPending,
		CreateTime: f.now(),
	}
	if err := f.requests.InsertRequest(ctx, req); err != nil {
		return nil, nil, err
	}

	n := &model.Notification{
		ID:         ids.GenerateString(),
		Type:       model.NotifyFriendRequest,
		Content:    "sent you a friend request",
		From:       requester,
		To:         []string{receiver},
		Link:       "/" + from.Username,
		CreateTime: f.now(),
	}
	if err := f.notifs.InsertNotification(ctx, n); err != nil {
		// The request stands; the recipient just loses the notification
		// record. Surface it so the caller can report a server error.
		return nil, nil, errors.Wrap(err, "friend request saved but notification write failed")
	}
	return req, n, nil
}

// Accept is the one transition with a real side effect: both users gain
// each other as friends exactly once, the record is deleted and the
// requester is notified.
//
// The two friends-list writes are deliberately not a transaction (the
// deployed store runs standalone). The second write always runs
// synchronously after the first succeeds; if it fails the half-applied
// state is transient, the error is surfaced and the request record is kept
// so the accept can be retried.
func (f *Friendship) Accept(ctx context.Context, requestID, caller string) (*model.Notification, error) {
	req, err := f.guardPending(ctx, requestID, caller)
	if err != nil {
		return nil, err
	}

	if err := f.users.AddFriend(ctx, req.Requester, req.Receiver); err != nil {
		return nil, errors.Wrap(err, "requester friends update failed")
	}
	if err := f.users.AddFriend(ctx, req.Receiver, req.Requester); err != nil {
		logger.Errorf("[friendship] half-applied accept request=%s: %v", requestID, err)
		return nil, errors.Wrap(err, "receiver friends update failed")
	}

	if err := f.requests.DeleteRequest(ctx, req.ID); err != nil {
		return nil, err
	}

	to, err := f.users.GetUser(ctx, req.Receiver)
	if err != nil {
		return nil, err
	}
	link := ""
	if to != nil {
		link = "/" + to.Username
	}
	n := &model.Notification{
		ID:         ids.GenerateString(),
		Type:       model.NotifyFriendAccepted,
		Content:    "accepted your friend request",
		From:       req.Receiver,
		To:         []string{req.Requester},
		Link:       link,
		CreateTime: f.now(),
	}
	if err := f.notifs.InsertNotification(ctx, n); err != nil {
		return nil, errors.Wrap(err, "accept applied but notification write failed")
	}
	return n, nil
}

// Decline deletes the pending request. No friends-list mutation, no
// notification.
func (f *Friendship) Decline(ctx context.Context, requestID, caller string) error {
	req, err := f.guardPending(ctx, requestID, caller)
	if err != nil {
		return err
	}
	return f.requests.DeleteRequest(ctx, req.ID)
}

// Cancel lets the original requester withdraw the request. No status
// check: a pending request can always be withdrawn.
func (f *Friendship) Cancel(ctx context.Context, requestID, caller string) error {
	req, err := f.requests.FindRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return errs.ErrNotFound.WithDetail("friend request " + requestID)
	}
	if req.Requester != caller {
		return errs.ErrForbidden.WithDetail("only the requester can cancel")
	}
	return f.requests.DeleteRequest(ctx, req.ID)
}

// guardPending runs the shared accept/decline guards: record exists,
// caller is the receiver, status is still pending.
func (f *Friendship) guardPending(ctx context.Context, requestID, caller string) (*model.FriendRequest, error) {
	req, err := f.requests.FindRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errs.ErrNotFound.WithDetail("friend request " + requestID)
	}
	if req.Receiver != caller {
		return nil, errs.ErrForbidden.WithDetail("only the receiver can handle this request")
	}
	if req.Status != model.RequestPending {
		return nil, errs.ErrInvalidState.WithDetail("request already handled")
	}
	return req, nil
}
