package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"SProject/service/mgo"
)

const (
	MessageTypeText         = "message"
	MessageTypeAsset        = "asset"
	MessageTypeNotification = "notification"
)

type Message struct {
	ID           string `bson:"_id" json:"_id"`
	Type         string `bson:"type" json:"type"`
	Sender       string `bson:"sender" json:"sender"`
	Content      string `bson:"content,omitempty" json:"content,omitempty"`
	Conversation string `bson:"conversation" json:"conversation"`
	IsDeleted    bool   `bson:"is_deleted" json:"isDeleted"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
}

func (m *Message) GetTableName() string { return "messages" }

func (m *Message) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(m.GetTableName())
}
