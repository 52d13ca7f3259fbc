package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	midsec "SProject/middleware/security"
	"SProject/module/social/model"
	"SProject/service/chat"
	errs "SProject/tools/errs"
	ids "SProject/tools/ids"
)

type createConversationBody struct {
	Members     []string `json:"members" binding:"required"`
	IsGroupChat bool     `json:"isGroupChat"`
	ChatName    string   `json:"chatName"`
	Avatar      string   `json:"avatar"`
}

// CreateConversation starts a chat. Direct chats are deduplicated: if the
// two members already share one it is returned instead of creating a
// second. The other members learn about a new conversation over the
// socket.
func (h *Handler) CreateConversation(c *gin.Context) {
	var body createConversationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}
	caller := midsec.CallerID(c)
	members := withMember(body.Members, caller)

	if !body.IsGroupChat {
		if len(members) != 2 {
			fail(c, errs.ErrInvalidParam.WithDetail("a direct chat has exactly two members"))
			return
		}
		existing, err := h.Repo.FindDirect(c.Request.Context(), members[0], members[1])
		if err != nil {
			fail(c, err)
			return
		}
		if existing != nil {
			ok(c, existing)
			return
		}
	} else if body.ChatName == "" {
		fail(c, errs.ErrInvalidParam.WithDetail("group chats need a chatName"))
		return
	}

	now := time.Now()
	conv := &model.Conversation{
		ID:          ids.GenerateString(),
		ChatName:    body.ChatName,
		IsGroupChat: body.IsGroupChat,
		Avatar:      body.Avatar,
		Members:     members,
		CreateTime:  now,
		UpdateTime:  now,
	}
	if body.IsGroupChat {
		conv.GroupAdmin = []string{caller}
	}
	if err := h.Repo.InsertConversation(c.Request.Context(), conv); err != nil {
		fail(c, err)
		return
	}

	h.Hub.PushToUsers(chat.EvtGetConversation, gin.H{"conversation": conv}, conv.Members, caller)
	ok(c, conv)
}

func (h *Handler) ListConversations(c *gin.Context) {
	out, err := h.Repo.ListConversations(c.Request.Context(), midsec.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

// withMember makes sure the caller is part of their own conversation and
// drops duplicate ids while keeping order.
func withMember(members []string, id string) []string {
	seen := make(map[string]struct{}, len(members)+1)
	out := make([]string, 0, len(members)+1)
	for _, m := range append(members, id) {
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
