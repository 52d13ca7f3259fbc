package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"SProject/service/mgo"
)

// Conversation groups users for messaging. Members is the authoritative
// input for room membership and fan-out targeting; the realtime layer
// reads it but only mutates LastMessage indirectly through the message
// write path.
type Conversation struct {
	ID          string   `bson:"_id" json:"_id"`
	ChatName    string   `bson:"chat_name,omitempty" json:"chatName,omitempty"`
	IsGroupChat bool     `bson:"is_group_chat" json:"isGroupChat"`
	Avatar      string   `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Members     []string `bson:"members" json:"members"`
	GroupAdmin  []string `bson:"group_admin,omitempty" json:"groupAdmin,omitempty"`
	LastMessage string   `bson:"last_message,omitempty" json:"lastMessage,omitempty"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
	UpdateTime time.Time `bson:"update_time" json:"updatedAt"`
}

func (c *Conversation) GetTableName() string { return "conversations" }

func (c *Conversation) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(c.GetTableName())
}
