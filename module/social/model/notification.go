package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"SProject/service/mgo"
)

const (
	NotifyLike           = "like"
	NotifyComment        = "comment"
	NotifyFriendRequest  = "friendRequest"
	NotifyFriendAccepted = "friendAccepted"
	NotifyStory          = "story"
)

// Notification is a single record shared by every recipient in To. Reads,
// read-marking and deletes are always scoped by "is the caller in To" so
// one recipient can never affect another's view. Immutable except IsRead.
type Notification struct {
	ID      string   `bson:"_id" json:"_id"`
	Type    string   `bson:"type" json:"type"`
	Content string   `bson:"content" json:"content"`
	From    string   `bson:"from" json:"from"`
	To      []string `bson:"to" json:"to"`
	Link    string   `bson:"link,omitempty" json:"link,omitempty"`
	IsRead  bool     `bson:"is_read" json:"isRead"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (n *Notification) GetTableName() string { return "notifications" }

func (n *Notification) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(n.GetTableName())
}
