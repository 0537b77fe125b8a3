package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/qaforum/config"
	"github.com/cppla/qaforum/middleware"
	"github.com/cppla/qaforum/models"
	"github.com/cppla/qaforum/store"
	"github.com/cppla/qaforum/thread"
	"github.com/cppla/qaforum/utils"
)

// QuestionController serves questions and their assembled threads.
type QuestionController struct {
	store    *store.GormStore
	engine   *thread.Engine
	cacheTTL time.Duration
}

// NewQuestionController creates a QuestionController.
func NewQuestionController(st *store.GormStore, engine *thread.Engine) *QuestionController {
	return &QuestionController{
		store:    st,
		engine:   engine,
		cacheTTL: time.Duration(config.Get().CacheTTLSeconds) * time.Second,
	}
}

type pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type questionListItem struct {
	Question models.Question `json:"question"`
	Summary  thread.Summary  `json:"summary"`
}

type questionListPage struct {
	Items      []questionListItem `json:"items"`
	Pagination pagination         `json:"pagination"`
}

// ListQuestions returns paginated questions with per-thread counts.
// unresolved=1 limits the page to questions without a preferred answer.
func (q *QuestionController) ListQuestions(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	unresolved := ctx.Query("unresolved") == "1" || strings.EqualFold(ctx.Query("unresolved"), "true")
	rctx := ctx.Request.Context()

	key := fmt.Sprintf("%sunresolved=%t:page=%d:size=%d", listCachePrefix, unresolved, page, pageSize)
	var payload questionListPage
	err := utils.CacheJSON(rctx, key, q.cacheTTL, &payload, func(fillCtx context.Context) (interface{}, error) {
		return q.buildList(fillCtx, page, pageSize, unresolved)
	})
	if err != nil {
		storeError(ctx, err, "list questions", 50020)
		return
	}
	utils.Success(ctx, payload)
}

func (q *QuestionController) buildList(ctx context.Context, page, pageSize int, unresolved bool) (questionListPage, error) {
	questions, total, err := q.store.ListQuestions(ctx, page, pageSize, unresolved)
	if err != nil {
		return questionListPage{}, err
	}
	items := make([]questionListItem, 0, len(questions))
	for i := range questions {
		summary, err := q.engine.Summarize(ctx, &questions[i])
		if err != nil {
			utils.Logger.Warn("thread summary unavailable", zap.Uint("question_id", questions[i].ID), zap.Error(err))
			summary = thread.Summary{QuestionID: questions[i].ID, Unresolved: thread.IsUnresolved(&questions[i])}
		}
		items = append(items, questionListItem{Question: questions[i], Summary: summary})
	}
	return questionListPage{
		Items: items,
		Pagination: pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}, nil
}

// GetQuestion returns a single question.
func (q *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	question, err := q.store.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		storeError(ctx, err, "question", 50021)
		return
	}
	utils.Success(ctx, gin.H{"question": question, "unresolved": thread.IsUnresolved(question)})
}

type rowView struct {
	Kind       thread.Kind `json:"kind"`
	ID         uint        `json:"id"`
	AuthorID   uint        `json:"author_id"`
	Depth      int         `json:"depth"`
	Text       string      `json:"text"`
	HTML       string      `json:"html,omitempty"`
	RelatedIDs []uint      `json:"related_ids"`
	VoteCount  *int        `json:"vote_count,omitempty"`
	Preferred  bool        `json:"preferred,omitempty"`
	IsRead     *bool       `json:"is_read,omitempty"`
}

// toRowViews builds the JSON rows. read is nil for anonymous callers, who get
// no read badges.
func toRowViews(rows []thread.Row, preferredID uint, renderHTML bool, read map[uint]bool) []rowView {
	views := make([]rowView, 0, len(rows))
	for _, r := range rows {
		v := rowView{
			Kind:       r.Kind,
			ID:         r.ContentID,
			AuthorID:   r.AuthorID,
			Depth:      r.Depth,
			Text:       r.DisplayText,
			RelatedIDs: r.RelatedIDs,
		}
		switch r.Kind {
		case thread.KindQuestion:
		case thread.KindAnswer:
			v.Preferred = preferredID > 0 && r.ContentID == preferredID
			if renderHTML {
				v.HTML = utils.RenderMarkdown(r.DisplayText)
			}
			if read != nil {
				isRead := read[r.ContentID]
				v.IsRead = &isRead
			}
		case thread.KindReview:
			votes := r.VoteCount
			v.VoteCount = &votes
		}
		views = append(views, v)
	}
	return views
}

// GetThread assembles the full thread of a question. render=html adds
// sanitized HTML for the question body and every answer. Authenticated
// callers get an is_read badge on each answer.
func (q *QuestionController) GetThread(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rctx := ctx.Request.Context()
	question, err := q.store.GetQuestion(rctx, id)
	if err != nil {
		storeError(ctx, err, "question", 50022)
		return
	}
	rows, err := q.engine.AssembleRows(rctx, question)
	if err != nil {
		storeError(ctx, err, "thread", 50023)
		return
	}
	var read map[uint]bool
	if userID, ok := middleware.CurrentUserID(ctx); ok {
		if read, err = q.readBadges(rctx, rows, userID); err != nil {
			storeError(ctx, err, "read state", 50023)
			return
		}
	}
	renderHTML := ctx.Query("render") == "html"
	data := gin.H{
		"question":   question,
		"unresolved": thread.IsUnresolved(question),
		"rows":       toRowViews(rows, question.PreferredAnswerID, renderHTML, read),
	}
	if renderHTML {
		data["question_html"] = utils.RenderMarkdown(question.Text)
	}
	utils.Success(ctx, data)
}

func (q *QuestionController) readBadges(ctx context.Context, rows []thread.Row, userID uint) (map[uint]bool, error) {
	read := make(map[uint]bool)
	for _, r := range rows {
		if r.Kind != thread.KindAnswer {
			continue
		}
		ok, err := q.engine.IsRead(ctx, r.ContentID, userID)
		if err != nil {
			return nil, err
		}
		read[r.ContentID] = ok
	}
	return read, nil
}

// PotentialAnswers lists every answer in the thread except the preferred one.
func (q *QuestionController) PotentialAnswers(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	answers, err := q.engine.PotentialAnswers(ctx.Request.Context(), id)
	if err != nil {
		storeError(ctx, err, "question", 50024)
		return
	}
	utils.Success(ctx, gin.H{"items": answers})
}

// ReadState splits the thread's answers by the caller's read markers.
func (q *QuestionController) ReadState(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	p, err := q.engine.Partition(ctx.Request.Context(), id, userID)
	if err != nil {
		storeError(ctx, err, "question", 50025)
		return
	}
	utils.Success(ctx, p)
}

type questionRequest struct {
	Title string `json:"title" binding:"required"`
	Text  string `json:"text" binding:"required"`
}

func (r questionRequest) clean() (string, string, bool) {
	title := utils.PlainText(r.Title)
	text := strings.TrimSpace(utils.Sanitize(r.Text))
	return title, text, title != "" && text != "" && len([]rune(title)) <= 255
}

// CreateQuestion posts a new question for the caller.
func (q *QuestionController) CreateQuestion(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	var req questionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	title, text, valid := req.clean()
	if !valid {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title and text are required, title at most 255 characters")
		return
	}
	question := models.Question{AuthorID: userID, Title: title, Text: text}
	if err := q.store.CreateQuestion(ctx.Request.Context(), &question); err != nil {
		storeError(ctx, err, "create question", 50026)
		return
	}
	invalidateListings(ctx)
	utils.Success(ctx, gin.H{"question": question})
}

// UpdateQuestion lets the author edit title and text.
func (q *QuestionController) UpdateQuestion(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req questionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}
	title, text, valid := req.clean()
	if !valid {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title and text are required, title at most 255 characters")
		return
	}
	rctx := ctx.Request.Context()
	existing, err := q.store.GetQuestion(rctx, id)
	if err != nil {
		storeError(ctx, err, "question", 50027)
		return
	}
	if existing.AuthorID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only update your own questions")
		return
	}
	updated, err := q.store.UpdateQuestion(rctx, id, title, text)
	if err != nil {
		storeError(ctx, err, "update question", 50027)
		return
	}
	invalidateListings(ctx)
	utils.Success(ctx, gin.H{"question": updated})
}

// DeleteQuestion removes a question with its whole thread. Author or admin only.
func (q *QuestionController) DeleteQuestion(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rctx := ctx.Request.Context()
	existing, err := q.store.GetQuestion(rctx, id)
	if err != nil {
		storeError(ctx, err, "question", 50028)
		return
	}
	if existing.AuthorID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40302, "you can only delete your own questions")
		return
	}
	if err := q.store.DeleteQuestion(rctx, id); err != nil {
		storeError(ctx, err, "delete question", 50028)
		return
	}
	invalidateListings(ctx)
	utils.Success(ctx, gin.H{"message": "question deleted"})
}

// SetPreferred designates (or with answer_id 0 clears) the preferred answer.
// The question's author and moderators may do this; the answer must belong to
// the question's thread.
func (q *QuestionController) SetPreferred(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		AnswerID *uint `json:"answer_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}
	rctx := ctx.Request.Context()
	question, err := q.store.GetQuestion(rctx, id)
	if err != nil {
		storeError(ctx, err, "question", 50029)
		return
	}
	if question.AuthorID != userID && !canModerate(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40303, "only the author or a moderator can choose the preferred answer")
		return
	}

	candidate := *question
	candidate.PreferredAnswerID = *req.AnswerID
	if err := q.engine.CheckPreferred(rctx, &candidate); err != nil {
		storeError(ctx, err, "preferred answer", 50029)
		return
	}
	if err := q.store.SetPreferredAnswer(rctx, id, *req.AnswerID); err != nil {
		storeError(ctx, err, "set preferred answer", 50029)
		return
	}
	invalidateListings(ctx)
	utils.Success(ctx, gin.H{"question": candidate, "unresolved": thread.IsUnresolved(&candidate)})
}
