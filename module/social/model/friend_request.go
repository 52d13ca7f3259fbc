package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"SProject/service/mgo"
)

// Friend request handling result. A request leaves pending exactly once;
// both terminal outcomes delete the record, so anything persisted is
// pending in practice and the field exists for the wire shape.
const (
	RequestPending  int32 = 0
	RequestAccepted int32 = 1
	RequestDeclined int32 = 2
)

// FriendRequest is one outstanding friend request. Uniqueness is per
// directed (requester, receiver) pair; the reverse direction is a distinct
// pair.
type FriendRequest struct {
	ID        string `bson:"_id" json:"_id"`
	Requester string `bson:"requester" json:"requester"`
	Receiver  string `bson:"receiver" json:"receiver"`
	Status    int32  `bson:"status" json:"status"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (r *FriendRequest) GetTableName() string { return "friend_requests" }

func (r *FriendRequest) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(r.GetTableName())
}
