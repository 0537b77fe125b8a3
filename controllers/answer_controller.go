package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/qaforum/models"
	"github.com/cppla/qaforum/store"
	"github.com/cppla/qaforum/thread"
	"github.com/cppla/qaforum/utils"
)

// AnswerController manages answers, nested replies and read markers.
type AnswerController struct {
	store  *store.GormStore
	engine *thread.Engine
}

// NewAnswerController creates an AnswerController.
func NewAnswerController(st *store.GormStore, engine *thread.Engine) *AnswerController {
	return &AnswerController{store: st, engine: engine}
}

type answerRequest struct {
	Text string `json:"text" binding:"required"`
}

func (a *AnswerController) bindText(ctx *gin.Context) (string, bool) {
	var req answerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
		return "", false
	}
	text := strings.TrimSpace(utils.Sanitize(req.Text))
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40032, "text cannot be empty")
		return "", false
	}
	return text, true
}

// AnswerQuestion posts a top-level answer on a question.
func (a *AnswerController) AnswerQuestion(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	questionID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	text, ok := a.bindText(ctx)
	if !ok {
		return
	}
	answer := models.Answer{AuthorID: userID, Text: text, QuestionID: &questionID}
	if err := a.store.CreateAnswer(ctx.Request.Context(), &answer); err != nil {
		storeError(ctx, err, "answer", 50030)
		return
	}
	invalidateListings(ctx)
	utils.Success(ctx, gin.H{"answer": answer})
}

// Reply posts a nested reply to an answer.
func (a *AnswerController) Reply(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	parentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	text, ok := a.bindText(ctx)
	if !ok {
		return
	}
	answer := models.Answer{AuthorID: userID, Text: text, ParentAnswerID: &parentID}
	if err := a.store.CreateAnswer(ctx.Request.Context(), &answer); err != nil {
		storeError(ctx, err, "answer", 50031)
		return
	}
	invalidateListings(ctx)
	utils.Success(ctx, gin.H{"answer": answer})
}

// DeleteAnswer removes an answer and its replies. Author or moderator only.
func (a *AnswerController) DeleteAnswer(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rctx := ctx.Request.Context()
	answer, err := a.store.GetAnswer(rctx, id)
	if err != nil {
		storeError(ctx, err, "answer", 50032)
		return
	}
	if answer.AuthorID != userID && !canModerate(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40304, "you can only delete your own answers")
		return
	}
	if err := a.store.DeleteAnswer(rctx, id); err != nil {
		storeError(ctx, err, "delete answer", 50032)
		return
	}
	invalidateListings(ctx)
	utils.Success(ctx, gin.H{"message": "answer deleted"})
}

// MarkRead records that the caller has read an answer.
func (a *AnswerController) MarkRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := a.engine.MarkRead(ctx.Request.Context(), id, userID); err != nil {
		storeError(ctx, err, "answer", 50033)
		return
	}
	utils.Success(ctx, gin.H{"answer_id": id, "is_read": true})
}

// QuestionOf resolves the question an answer ultimately belongs to.
func (a *AnswerController) QuestionOf(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	question, err := a.engine.QuestionForAnswer(ctx.Request.Context(), id)
	if err != nil {
		storeError(ctx, err, "question of answer", 50034)
		return
	}
	utils.Success(ctx, gin.H{"question": question})
}
