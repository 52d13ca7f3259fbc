package handler

import (
	"github.com/gin-gonic/gin"

	midsec "SProject/middleware/security"
	storage "SProject/service/storage"
	errs "SProject/tools/errs"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	out, err := h.Repo.ListNotifications(c.Request.Context(), midsec.CallerID(c), pageParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

// MarkNotificationRead flips one notification to read. Scoped to the
// caller: a notification addressed to someone else answers 404.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	matched, err := h.Repo.MarkRead(c.Request.Context(), c.Param("notificationId"), midsec.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if !matched {
		fail(c, errs.ErrNotFound.WithDetail("notification "+c.Param("notificationId")))
		return
	}
	ok(c, gin.H{"read": true})
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.Repo.MarkAllRead(c.Request.Context(), midsec.CallerID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"read": true})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	deleted, err := h.Repo.DeleteNotification(c.Request.Context(), c.Param("notificationId"), midsec.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if !deleted {
		fail(c, errs.ErrNotFound.WithDetail("notification "+c.Param("notificationId")))
		return
	}
	ok(c, gin.H{"deleted": true})
}

// OnlineUsers answers the current presence snapshot from the hub.
func (h *Handler) OnlineUsers(c *gin.Context) {
	ok(c, gin.H{"online": h.Hub.OnlineUsers()})
}

// UserPresence reports one user's liveness. The local registry answers for
// connections this node owns; the redis mirror answers for users attached
// to sibling gateways. With the mirror disabled the local answer stands.
func (h *Handler) UserPresence(c *gin.Context) {
	user := c.Param("userId")
	if _, live := h.Hub.Registry().Lookup(user); live {
		ok(c, gin.H{"online": true})
		return
	}
	node, online, err := storage.Lookup(user)
	if err != nil {
		ok(c, gin.H{"online": false})
		return
	}
	ok(c, gin.H{"online": online, "node": node})
}
