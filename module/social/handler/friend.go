package handler

import (
	"github.com/gin-gonic/gin"

	midsec "SProject/middleware/security"
	"SProject/service/chat"
	errs "SProject/tools/errs"
)

type sendFriendRequestBody struct {
	Requester string `json:"requester" binding:"required"`
	Receiver  string `json:"receiver" binding:"required"`
}

// SendFriendRequest creates a pending request and tells the receiver
// right away over the socket, if they are online.
func (h *Handler) SendFriendRequest(c *gin.Context) {
	var body sendFriendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	req, notif, err := h.Friends.Send(c.Request.Context(), midsec.CallerID(c), body.Requester, body.Receiver)
	if err != nil {
		fail(c, err)
		return
	}

	h.Hub.PushToUsers(chat.EvtGetFriendRequest, req, []string{req.Receiver}, "")
	h.Hub.PushToUsers(chat.EvtGetNotification, notif, notif.To, "")
	ok(c, req)
}

// AcceptFriendRequest applies the one transition with side effects and
// notifies the original requester.
func (h *Handler) AcceptFriendRequest(c *gin.Context) {
	notif, err := h.Friends.Accept(c.Request.Context(), c.Param("requestId"), midsec.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}

	h.Hub.PushToUsers(chat.EvtGetNotification, notif, notif.To, "")
	ok(c, gin.H{"accepted": true})
}

func (h *Handler) DeclineFriendRequest(c *gin.Context) {
	if err := h.Friends.Decline(c.Request.Context(), c.Param("requestId"), midsec.CallerID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"declined": true})
}

func (h *Handler) CancelFriendRequest(c *gin.Context) {
	if err := h.Friends.Cancel(c.Request.Context(), c.Param("requestId"), midsec.CallerID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"cancelled": true})
}

// GetFriendRequestPair looks up the directed pair, used by clients to
// decide which button to render. 200 with null body means no request.
func (h *Handler) GetFriendRequestPair(c *gin.Context) {
	requester := c.Query("requester")
	receiver := c.Query("receiver")
	if requester == "" || receiver == "" {
		fail(c, errs.ErrInvalidParam.WithDetail("requester and receiver are required"))
		return
	}
	req, err := h.Repo.FindPair(c.Request.Context(), requester, receiver)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, req)
}

// ListFriendRequests pages the caller's inbound requests, newest first.
func (h *Handler) ListFriendRequests(c *gin.Context) {
	out, err := h.Repo.ListInbound(c.Request.Context(), midsec.CallerID(c), pageParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}
