package model

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"SProject/service/mgo"
)

// User is the slice of the account document this service reads and
// mutates. Profile fields beyond identity live in the account service.
type User struct {
	ID       string `bson:"_id" json:"_id"`
	Username string `bson:"username" json:"username"`
	FullName string `bson:"full_name" json:"fullName"`
	Avatar   string `bson:"avatar,omitempty" json:"avatar,omitempty"`

	Friends []string `bson:"friends" json:"friends"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
	UpdateTime time.Time `bson:"update_time" json:"updatedAt"`
}

func (u *User) GetTableName() string { return "users" }

func (u *User) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(u.GetTableName())
}
