package httpserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ai-task-orchestrator/internal/scheduler"
	"ai-task-orchestrator/pkg/response"
)

var errSessionNotFound = errors.New("session not found")

// listSessions godoc
// @Summary     List live streaming sessions
// @Description Returns every active streaming session with its owner.
// @Tags        Sessions
// @Produce     json
// @Success     200 {object} response.Resp
// @Router      /api/v1/sessions [GET]
func (srv HTTPServer) listSessions(c *gin.Context) {
	response.OK(c, gin.H{
		"sessions": srv.conversation.AllStreamingSessions(),
	})
}

// sessionActive godoc
// @Summary     Check one session
// @Description Reports whether a session id is tracked and active.
// @Tags        Sessions
// @Produce     json
// @Param       id path string true "External session identifier"
// @Success     200 {object} response.Resp
// @Router      /api/v1/sessions/{id}/active [GET]
func (srv HTTPServer) sessionActive(c *gin.Context) {
	id := c.Param("id")
	response.OK(c, gin.H{
		"sessionId": id,
		"active":    srv.conversation.IsSessionActive(id),
	})
}

// abortSession godoc
// @Summary     Abort a live session
// @Description Requests cooperative cancellation of a streaming session.
// @Tags        Sessions
// @Produce     json
// @Param       id path string true "External session identifier"
// @Success     200 {object} response.Resp
// @Failure     400 {object} response.Resp "Unknown session"
// @Router      /api/v1/sessions/{id}/abort [POST]
func (srv HTTPServer) abortSession(c *gin.Context) {
	ctx := c.Request.Context()

	id := c.Param("id")
	if !srv.conversation.AbortSession(ctx, id) {
		response.Error(c, errSessionNotFound, nil)
		return
	}
	response.OK(c, gin.H{"sessionId": id, "aborted": true})
}

// conversationStreaming godoc
// @Summary     Find the live session of a conversation
// @Description Reverse lookup from conversation id to its streaming session.
// @Tags        Sessions
// @Produce     json
// @Param       id path string true "Conversation identifier"
// @Success     200 {object} response.Resp
// @Router      /api/v1/conversations/{id}/streaming [GET]
func (srv HTTPServer) conversationStreaming(c *gin.Context) {
	session, ok := srv.conversation.StreamingByConversation(c.Param("id"))
	if !ok {
		response.OK(c, gin.H{"streaming": false})
		return
	}
	response.OK(c, gin.H{"streaming": true, "session": session})
}

type validateCronReq struct {
	Expression string `json:"expression" binding:"required"`
}

// validateCron godoc
// @Summary     Validate a cron expression
// @Description Validates a five-field cron expression and reports its next run.
// @Tags        Cron
// @Accept      json
// @Produce     json
// @Param       body body validateCronReq true "Expression to validate"
// @Success     200 {object} response.Resp
// @Failure     400 {object} response.Resp "Malformed request body"
// @Router      /api/v1/cron/validate [POST]
func (srv HTTPServer) validateCron(c *gin.Context) {
	var req validateCronReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err, nil)
		return
	}
	response.OK(c, scheduler.ValidateCron(req.Expression))
}
