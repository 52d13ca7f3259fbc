package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"SProject/logger"
	midsec "SProject/middleware/security"
	"SProject/module/social/model"
	errs "SProject/tools/errs"
	ids "SProject/tools/ids"
)

type createMessageBody struct {
	Conversation string `json:"conversation" binding:"required"`
	Content      string `json:"content" binding:"required"`
	Type         string `json:"type"`
}

// CreateMessage persists a message and bumps the conversation's
// last-message pointer. Realtime delivery is the socket's job: the sender
// emits newMessage after this call returns.
func (h *Handler) CreateMessage(c *gin.Context) {
	var body createMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}
	caller := midsec.CallerID(c)

	conv, err := h.Repo.GetConversation(c.Request.Context(), body.Conversation)
	if err != nil {
		fail(c, err)
		return
	}
	if conv == nil {
		fail(c, errs.ErrNotFound.WithDetail("conversation "+body.Conversation))
		return
	}
	if !contains(conv.Members, caller) {
		fail(c, errs.ErrForbidden.WithDetail("not a member of this conversation"))
		return
	}

	msgType := body.Type
	if msgType == "" {
		msgType = model.MessageTypeText
	}
	msg := &model.Message{
		ID:           ids.GenerateString(),
		Type:         msgType,
		Sender:       caller,
		Content:      body.Content,
		Conversation: conv.ID,
		CreateTime:   time.Now(),
	}
	if err := h.Repo.InsertMessage(c.Request.Context(), msg); err != nil {
		fail(c, err)
		return
	}
	if err := h.Repo.SetLastMessage(c.Request.Context(), conv.ID, msg.ID); err != nil {
		// The message is saved; the pointer catches up on the next write.
		logger.Warnf("[api] last-message update on %s: %v", conv.ID, err)
	}
	ok(c, msg)
}

func (h *Handler) ListMessages(c *gin.Context) {
	caller := midsec.CallerID(c)
	conv, err := h.Repo.GetConversation(c.Request.Context(), c.Param("conversationId"))
	if err != nil {
		fail(c, err)
		return
	}
	if conv == nil {
		fail(c, errs.ErrNotFound.WithDetail("conversation "+c.Param("conversationId")))
		return
	}
	if !contains(conv.Members, caller) {
		fail(c, errs.ErrForbidden.WithDetail("not a member of this conversation"))
		return
	}
	out, err := h.Repo.ListMessages(c.Request.Context(), conv.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
