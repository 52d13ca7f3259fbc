package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"SProject/logger"
	"SProject/module/social/service"
	"SProject/module/social/store"
	"SProject/service/chat"
	errs "SProject/tools/errs"
)

// Handler wires the REST surface to the domain services and the realtime
// hub. Every mutation that another user should see immediately is pushed
// through the hub after it has been persisted.
type Handler struct {
	Repo    *store.Repo
	Friends *service.Friendship
	Hub     *chat.Server
}

func New(repo *store.Repo, friends *service.Friendship, hub *chat.Server) *Handler {
	return &Handler{Repo: repo, Friends: friends, Hub: hub}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// fail answers with the CodeError carried by err; anything without one is
// a server fault and gets logged with the route for triage.
func fail(c *gin.Context, err error) {
	ce := errs.Code(err)
	if ce == nil {
		// log the innermost cause so infra failures grep the same whatever
		// wrapped them on the way up
		logger.Errorf("[api] %s %s: %v (cause: %v)", c.Request.Method, c.FullPath(), err, errs.Unwrap(err))
		ce = errs.ErrServer
	}
	c.JSON(errs.HTTPStatus(ce), ce)
}

func pageParam(c *gin.Context) int64 {
	p, err := strconv.ParseInt(c.DefaultQuery("page", "0"), 10, 64)
	if err != nil || p < 0 {
		return 0
	}
	return p
}
