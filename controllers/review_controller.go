package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/qaforum/models"
	"github.com/cppla/qaforum/store"
	"github.com/cppla/qaforum/thread"
	"github.com/cppla/qaforum/utils"
)

// ReviewController manages reviews and their votes.
type ReviewController struct {
	store  *store.GormStore
	engine *thread.Engine
}

// NewReviewController creates a ReviewController.
func NewReviewController(st *store.GormStore, engine *thread.Engine) *ReviewController {
	return &ReviewController{store: st, engine: engine}
}

// ReviewQuestion posts a review on a question.
func (r *ReviewController) ReviewQuestion(ctx *gin.Context) {
	r.create(ctx, true)
}

// ReviewAnswer posts a review on an answer.
func (r *ReviewController) ReviewAnswer(ctx *gin.Context) {
	r.create(ctx, false)
}

func (r *ReviewController) create(ctx *gin.Context, forQuestion bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	targetID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid request payload")
		return
	}
	text := utils.PlainText(req.Text)
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40042, "text cannot be empty")
		return
	}
	review := models.Review{AuthorID: userID, ForQuestion: forQuestion, RelatedID: targetID, Text: text}
	if err := r.store.CreateReview(ctx.Request.Context(), &review); err != nil {
		storeError(ctx, err, "review target", 50040)
		return
	}
	invalidateListings(ctx)
	utils.Success(ctx, gin.H{"review": review})
}

// DeleteReview removes a review. Author or moderator only.
func (r *ReviewController) DeleteReview(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rctx := ctx.Request.Context()
	review, err := r.store.GetReview(rctx, id)
	if err != nil {
		storeError(ctx, err, "review", 50041)
		return
	}
	if review.AuthorID != userID && !canModerate(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40305, "you can only delete your own reviews")
		return
	}
	if err := r.store.DeleteReview(rctx, id); err != nil {
		storeError(ctx, err, "delete review", 50041)
		return
	}
	invalidateListings(ctx)
	utils.Success(ctx, gin.H{"message": "review deleted"})
}

// Vote adds +1 or -1 to a review and returns the new total.
func (r *ReviewController) Vote(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid request payload")
		return
	}
	rctx := ctx.Request.Context()
	if err := r.engine.Vote(rctx, id, req.Delta); err != nil {
		storeError(ctx, err, "review", 50042)
		return
	}
	review, err := r.store.GetReview(rctx, id)
	if err != nil {
		storeError(ctx, err, "review", 50042)
		return
	}
	utils.Success(ctx, gin.H{
		"review_id":  review.ID,
		"vote_count": review.VoteCount,
		"votes":      thread.FormatVotes(review.VoteCount),
	})
}

// QuestionOf resolves the question a review belongs to.
func (r *ReviewController) QuestionOf(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	question, err := r.engine.QuestionForReviewID(ctx.Request.Context(), id)
	if err != nil {
		storeError(ctx, err, "question of review", 50043)
		return
	}
	utils.Success(ctx, gin.H{"question": question})
}
