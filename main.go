package main

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	global "SProject/global"
	mid "SProject/middleware"
	"SProject/module/social/handler"
	"SProject/module/social/service"
	"SProject/module/social/store"
	"SProject/service/chat"
	mgo "SProject/service/mgo"
)

func main() {
	conf := global.Load()

	global.ConfigIds()
	global.ConfigRedis()
	if err := global.ConfigMgo(); err != nil {
		log.Fatalf("mongo init failed: %v", err)
	}

	repo := store.NewRepo(mgo.GetDB())
	friends := service.NewFriendship(repo, repo, repo)

	hub := chat.NewServer(chat.Config{
		NodeID:      "social-gw-" + strconv.FormatInt(conf.NodeID, 10),
		PresenceTTL: conf.PresenceTTL,
	}, repo)

	h := handler.New(repo, friends, hub)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mid.Origin(nil))

	// realtime
	r.GET("/chat", hub.HandleWS)

	// friend requests
	mid.POST(r, "/friend", h.SendFriendRequest, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/friend", h.GetFriendRequestPair, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/friend/all", h.ListFriendRequests, mid.RouteOpt{IsAuth: true})
	mid.PUT(r, "/friend/:requestId/accept", h.AcceptFriendRequest, mid.RouteOpt{IsAuth: true})
	mid.PUT(r, "/friend/:requestId/decline", h.DeclineFriendRequest, mid.RouteOpt{IsAuth: true})
	mid.DELETE(r, "/friend/:requestId", h.CancelFriendRequest, mid.RouteOpt{IsAuth: true})

	// conversations and messages
	mid.POST(r, "/conversation", h.CreateConversation, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/conversation", h.ListConversations, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/message", h.CreateMessage, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/message/:conversationId", h.ListMessages, mid.RouteOpt{IsAuth: true})

	// notifications and presence
	mid.GET(r, "/notification", h.ListNotifications, mid.RouteOpt{IsAuth: true})
	mid.PUT(r, "/notification/:notificationId/read", h.MarkNotificationRead, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/notification/read-all", h.MarkAllNotificationsRead, mid.RouteOpt{IsAuth: true})
	mid.DELETE(r, "/notification/:notificationId", h.DeleteNotification, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/online", h.OnlineUsers, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/online/:userId", h.UserPresence, mid.RouteOpt{IsAuth: true})

	addr := ":" + strconv.Itoa(conf.Port)
	log.Printf("[HTTP] Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
