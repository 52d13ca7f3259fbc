package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"SProject/module/social/model"
)

// Repo is the MongoDB persistence gateway for the social domain. It
// implements the store interfaces of module/social/service and the
// DirectoryStore surface the realtime hub reads conversation members
// through.
type Repo struct {
	DB *mongo.Database
}

func NewRepo(db *mongo.Database) *Repo { return &Repo{DB: db} }

func (r *Repo) users() *mongo.Collection         { return r.DB.Collection("users") }
func (r *Repo) requests() *mongo.Collection      { return r.DB.Collection("friend_requests") }
func (r *Repo) conversations() *mongo.Collection { return r.DB.Collection("conversations") }
func (r *Repo) messages() *mongo.Collection      { return r.DB.Collection("messages") }
func (r *Repo) notifications() *mongo.Collection { return r.DB.Collection("notifications") }

// ---- users ----

func (r *Repo) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get user %s", id)
	}
	return &u, nil
}

// AddFriend appends friendID to userID's friends list. $addToSet keeps the
// operation idempotent: re-running an accept can never duplicate an entry.
func (r *Repo) AddFriend(ctx context.Context, userID, friendID string) error {
	res, err := r.users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet": bson.M{"friends": friendID},
			"$set":      bson.M{"update_time": time.Now()},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "add friend %s -> %s", friendID, userID)
	}
	if res.MatchedCount == 0 {
		return errors.Errorf("add friend: user %s not found", userID)
	}
	return nil
}

// ---- friend requests ----

func (r *Repo) InsertRequest(ctx context.Context, req *model.FriendRequest) error {
	_, err := r.requests().InsertOne(ctx, req)
	return errors.Wrap(err, "insert friend request")
}

func (r *Repo) FindRequest(ctx context.Context, id string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.requests().FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find friend request %s", id)
	}
	return &req, nil
}

// FindPair matches the directed (requester, receiver) pair exactly.
func (r *Repo) FindPair(ctx context.Context, requester, receiver string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.requests().FindOne(ctx, bson.M{"requester": requester, "receiver": receiver}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find friend request pair")
	}
	return &req, nil
}

func (r *Repo) DeleteRequest(ctx context.Context, id string) error {
	_, err := r.requests().DeleteOne(ctx, bson.M{"_id": id})
	return errors.Wrapf(err, "delete friend request %s", id)
}

// ListInbound pages the requests waiting on receiver, newest first.
func (r *Repo) ListInbound(ctx context.Context, receiver string, page int64) ([]model.FriendRequest, error) {
	const pageSize = 10
	if page < 0 {
		page = 0
	}
	cur, err := r.requests().Find(ctx,
		bson.M{"receiver": receiver},
		options.Find().
			SetSort(bson.M{"create_time": -1}).
			SetSkip(page*pageSize).
			SetLimit(pageSize),
	)
	if err != nil {
		return nil, errors.Wrap(err, "list inbound friend requests")
	}
	var out []model.FriendRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- conversations ----

func (r *Repo) InsertConversation(ctx context.Context, c *model.Conversation) error {
	_, err := r.conversations().InsertOne(ctx, c)
	return errors.Wrap(err, "insert conversation")
}

func (r *Repo) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	var c model.Conversation
	err := r.conversations().FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get conversation %s", id)
	}
	return &c, nil
}

// ConversationMembers satisfies the realtime hub's DirectoryStore.
func (r *Repo) ConversationMembers(ctx context.Context, id string) ([]string, error) {
	c, err := r.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	return c.Members, nil
}

// FindDirect returns the existing 1:1 conversation between a and b.
func (r *Repo) FindDirect(ctx context.Context, a, b string) (*model.Conversation, error) {
	var c model.Conversation
	err := r.conversations().FindOne(ctx, bson.M{
		"is_group_chat": false,
		"members":       bson.M{"$all": []string{a, b}},
	}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find direct conversation")
	}
	return &c, nil
}

func (r *Repo) ListConversations(ctx context.Context, member string) ([]model.Conversation, error) {
	cur, err := r.conversations().Find(ctx,
		bson.M{"members": member},
		options.Find().SetSort(bson.M{"update_time": -1}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "list conversations")
	}
	var out []model.Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) SetLastMessage(ctx context.Context, conversationID, messageID string) error {
	_, err := r.conversations().UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"last_message": messageID, "update_time": time.Now()}},
	)
	return errors.Wrapf(err, "set last message on %s", conversationID)
}

// ---- messages ----

func (r *Repo) InsertMessage(ctx context.Context, m *model.Message) error {
	_, err := r.messages().InsertOne(ctx, m)
	return errors.Wrap(err, "insert message")
}

func (r *Repo) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	cur, err := r.messages().Find(ctx,
		bson.M{"conversation": conversationID},
		options.Find().SetSort(bson.M{"create_time": -1}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	var out []model.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- notifications ----

func (r *Repo) InsertNotification(ctx context.Context, n *model.Notification) error {
	_, err := r.notifications().InsertOne(ctx, n)
	return errors.Wrap(err, "insert notification")
}

func (r *Repo) ListNotifications(ctx context.Context, recipient string, page int64) ([]model.Notification, error) {
	const pageSize = 30
	if page < 0 {
		page = 0
	}
	cur, err := r.notifications().Find(ctx,
		bson.M{"to": recipient},
		options.Find().
			SetSort(bson.M{"create_time": -1}).
			SetSkip(page*pageSize).
			SetLimit(pageSize),
	)
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	var out []model.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flips IsRead, scoped by recipient so one recipient cannot mark
// another's copy.
func (r *Repo) MarkRead(ctx context.Context, id, recipient string) (bool, error) {
	res, err := r.notifications().UpdateOne(ctx,
		bson.M{"_id": id, "to": recipient},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return false, errors.Wrapf(err, "mark notification %s read", id)
	}
	return res.MatchedCount > 0, nil
}

func (r *Repo) MarkAllRead(ctx context.Context, recipient string) error {
	_, err := r.notifications().UpdateMany(ctx,
		bson.M{"to": recipient},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	return errors.Wrap(err, "mark all notifications read")
}

func (r *Repo) DeleteNotification(ctx context.Context, id, recipient string) (bool, error) {
	res, err := r.notifications().DeleteOne(ctx, bson.M{"_id": id, "to": recipient})
	if err != nil {
		return false, errors.Wrapf(err, "delete notification %s", id)
	}
	return res.DeletedCount > 0, nil
}
