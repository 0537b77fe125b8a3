package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/qaforum/models"
	"github.com/cppla/qaforum/thread"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "forum.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db)
}

func mustQuestion(t *testing.T, s *GormStore, title string) *models.Question {
	t.Helper()
	q := &models.Question{AuthorID: 1, Title: title, Text: title + " body"}
	require.NoError(t, s.CreateQuestion(context.Background(), q))
	return q
}

func mustAnswer(t *testing.T, s *GormStore, questionID uint, text string) *models.Answer {
	t.Helper()
	qid := questionID
	a := &models.Answer{AuthorID: 2, Text: text, QuestionID: &qid}
	require.NoError(t, s.CreateAnswer(context.Background(), a))
	return a
}

func mustReply(t *testing.T, s *GormStore, parentID uint, text string) *models.Answer {
	t.Helper()
	pid := parentID
	a := &models.Answer{AuthorID: 3, Text: text, ParentAnswerID: &pid}
	require.NoError(t, s.CreateAnswer(context.Background(), a))
	return a
}

func mustReview(t *testing.T, s *GormStore, forQuestion bool, relatedID uint, text string) *models.Review {
	t.Helper()
	r := &models.Review{AuthorID: 4, ForQuestion: forQuestion, RelatedID: relatedID, Text: text}
	require.NoError(t, s.CreateReview(context.Background(), r))
	return r
}

func TestGetters_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetQuestion(ctx, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.GetAnswer(ctx, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.GetReview(ctx, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.GetAnswersForAnswer(ctx, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.GetReviewsForAnswer(ctx, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateAnswer_AppendsRelatedIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q := mustQuestion(t, s, "q")
	a1 := mustAnswer(t, s, q.ID, "a1")
	a2 := mustAnswer(t, s, q.ID, "a2")
	r1 := mustReply(t, s, a1.ID, "r1")

	got, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a1.ID, a2.ID}, got.RelatedIDs)

	parent, err := s.GetAnswer(ctx, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{r1.ID}, parent.RelatedIDs)

	top, err := s.GetAnswersForQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, a1.ID, top[0].ID)
	assert.Equal(t, a2.ID, top[1].ID)

	replies, err := s.GetAnswersForAnswer(ctx, a1.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, r1.ID, replies[0].ID)
}

func TestCreateAnswer_InvalidParent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q := mustQuestion(t, s, "q")
	a := mustAnswer(t, s, q.ID, "a")

	err := s.CreateAnswer(ctx, &models.Answer{Text: "orphan"})
	assert.ErrorIs(t, err, models.ErrInvalidParent)

	qid, pid := q.ID, a.ID
	err = s.CreateAnswer(ctx, &models.Answer{Text: "both", QuestionID: &qid, ParentAnswerID: &pid})
	assert.ErrorIs(t, err, models.ErrInvalidParent)

	missing := uint(404)
	err = s.CreateAnswer(ctx, &models.Answer{Text: "lost", ParentAnswerID: &missing})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRegisterVoteForReview(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q := mustQuestion(t, s, "q")
	r := mustReview(t, s, true, q.ID, "nice")

	require.NoError(t, s.RegisterVoteForReview(ctx, r.ID, 1))
	require.NoError(t, s.RegisterVoteForReview(ctx, r.ID, 1))
	require.NoError(t, s.RegisterVoteForReview(ctx, r.ID, -1))
	require.NoError(t, s.RegisterVoteForReview(ctx, r.ID, -1))
	require.NoError(t, s.RegisterVoteForReview(ctx, r.ID, -1))

	got, err := s.GetReview(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, got.VoteCount)

	assert.ErrorIs(t, s.RegisterVoteForReview(ctx, 999, 1), models.ErrNotFound)
}

func TestCreateReview_TargetMustExist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.CreateReview(ctx, &models.Review{ForQuestion: true, RelatedID: 7, Text: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
	err = s.CreateReview(ctx, &models.Review{ForQuestion: false, RelatedID: 7, Text: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMarkAnswerAsRead_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q := mustQuestion(t, s, "q")
	a := mustAnswer(t, s, q.ID, "a")

	read, err := s.IsAnswerMarkedAsRead(ctx, a.ID, 5)
	require.NoError(t, err)
	assert.False(t, read)

	require.NoError(t, s.MarkAnswerAsRead(ctx, a.ID, 5))
	require.NoError(t, s.MarkAnswerAsRead(ctx, a.ID, 5))

	read, err = s.IsAnswerMarkedAsRead(ctx, a.ID, 5)
	require.NoError(t, err)
	assert.True(t, read)

	read, err = s.IsAnswerMarkedAsRead(ctx, a.ID, 6)
	require.NoError(t, err)
	assert.False(t, read)

	var n int64
	require.NoError(t, s.DB().Model(&models.ReadMarker{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestDeleteAnswer_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q := mustQuestion(t, s, "q")
	a1 := mustAnswer(t, s, q.ID, "a1")
	a2 := mustAnswer(t, s, q.ID, "a2")
	r1 := mustReply(t, s, a1.ID, "r1")
	r2 := mustReply(t, s, r1.ID, "r2")
	rev := mustReview(t, s, false, r2.ID, "deep")
	require.NoError(t, s.MarkAnswerAsRead(ctx, r1.ID, 9))
	require.NoError(t, s.SetPreferredAnswer(ctx, q.ID, r1.ID))

	require.NoError(t, s.DeleteAnswer(ctx, a1.ID))

	for _, id := range []uint{a1.ID, r1.ID, r2.ID} {
		_, err := s.GetAnswer(ctx, id)
		assert.ErrorIs(t, err, models.ErrNotFound, "answer %d", id)
	}
	_, err := s.GetReview(ctx, rev.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := s.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(0), got.PreferredAnswerID)
	assert.Equal(t, []uint{a2.ID}, got.RelatedIDs)

	var markers int64
	require.NoError(t, s.DB().Model(&models.ReadMarker{}).Count(&markers).Error)
	assert.Zero(t, markers)

	assert.ErrorIs(t, s.DeleteAnswer(ctx, a1.ID), models.ErrNotFound)
}

func TestDeleteAnswer_UnlinksFromParentAnswer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q := mustQuestion(t, s, "q")
	a := mustAnswer(t, s, q.ID, "a")
	r1 := mustReply(t, s, a.ID, "r1")
	r2 := mustReply(t, s, a.ID, "r2")

	require.NoError(t, s.DeleteAnswer(ctx, r1.ID))

	parent, err := s.GetAnswer(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{r2.ID}, parent.RelatedIDs)
}

func TestDeleteQuestion_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q := mustQuestion(t, s, "q")
	other := mustQuestion(t, s, "other")
	a := mustAnswer(t, s, q.ID, "a")
	mustReply(t, s, a.ID, "r")
	mustReview(t, s, true, q.ID, "on question")
	mustReview(t, s, false, a.ID, "on answer")
	keep := mustReview(t, s, true, other.ID, "elsewhere")
	require.NoError(t, s.RecordQuestionView(ctx, q.ID))

	require.NoError(t, s.DeleteQuestion(ctx, q.ID))

	_, err := s.GetQuestion(ctx, q.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	var answers, reviews, views int64
	require.NoError(t, s.DB().Model(&models.Answer{}).Count(&answers).Error)
	require.NoError(t, s.DB().Model(&models.Review{}).Count(&reviews).Error)
	require.NoError(t, s.DB().Model(&models.QuestionView{}).Count(&views).Error)
	assert.Zero(t, answers)
	assert.EqualValues(t, 1, reviews)
	assert.Zero(t, views)

	_, err = s.GetReview(ctx, keep.ID)
	assert.NoError(t, err)
}

func TestListQuestionsAndCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q1 := mustQuestion(t, s, "first")
	q2 := mustQuestion(t, s, "second")
	mustQuestion(t, s, "third")
	a := mustAnswer(t, s, q1.ID, "a")
	require.NoError(t, s.SetPreferredAnswer(ctx, q1.ID, a.ID))
	mustReview(t, s, true, q2.ID, "r")

	page, total, err := s.ListQuestions(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)

	unresolved, total, err := s.ListQuestions(ctx, 1, 10, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, q := range unresolved {
		assert.NotEqual(t, q1.ID, q.ID)
	}

	require.NoError(t, s.RecordQuestionView(ctx, q2.ID))
	require.NoError(t, s.RecordQuestionView(ctx, q2.ID))

	c := s.CountContent(ctx)
	assert.EqualValues(t, 3, c.Questions)
	assert.EqualValues(t, 2, c.Unresolved)
	assert.EqualValues(t, 1, c.Answers)
	assert.EqualValues(t, 1, c.Reviews)
	assert.EqualValues(t, 2, c.ViewsToday)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, models.RoleMember, u.Role)

	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "alice"}), ErrUsernameTaken)

	got, err := s.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.FindUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.GetUser(ctx, 1234)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// Engine over the relational store: preferred reply promoted, reviews
// interleaved, the rest in posting order.
func TestEngineOverGormStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q := mustQuestion(t, s, "Q1")
	a1 := mustAnswer(t, s, q.ID, "A1")
	a2 := mustAnswer(t, s, q.ID, "A2")
	a3 := mustReply(t, s, a1.ID, "A3")
	rq := mustReview(t, s, true, q.ID, "R1")
	ra := mustReview(t, s, false, a3.ID, "R2")
	require.NoError(t, s.RegisterVoteForReview(ctx, ra.ID, 1))
	require.NoError(t, s.SetPreferredAnswer(ctx, q.ID, a2.ID))

	e := thread.NewEngine(s)
	rows, err := e.AssembleRows(ctx, q)
	require.NoError(t, err)

	type ref struct {
		kind  thread.Kind
		id    uint
		depth int
	}
	got := make([]ref, len(rows))
	for i, r := range rows {
		got[i] = ref{r.Kind, r.ContentID, r.Depth}
	}
	assert.Equal(t, []ref{
		{thread.KindQuestion, q.ID, 0},
		{thread.KindReview, rq.ID, 1},
		{thread.KindAnswer, a2.ID, 1},
		{thread.KindAnswer, a1.ID, 1},
		{thread.KindAnswer, a3.ID, 2},
		{thread.KindReview, ra.ID, 3},
	}, got)
	assert.Equal(t, "[+1] R2", rows[5].DisplayText)

	owner, err := e.QuestionForAnswer(ctx, a3.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, owner.ID)

	require.NoError(t, s.DeleteAnswer(ctx, a1.ID))
	_, err = e.QuestionForAnswer(ctx, a3.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	rows, err = e.AssembleRows(ctx, q)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestCountReviews(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q := mustQuestion(t, s, "Q1")
	other := mustQuestion(t, s, "Q2")
	a1 := mustAnswer(t, s, q.ID, "A1")
	a2 := mustReply(t, s, a1.ID, "A2")
	mustReview(t, s, true, q.ID, "on question")
	mustReview(t, s, false, a2.ID, "on reply")
	mustReview(t, s, true, other.ID, "elsewhere")

	n, err := s.CountReviews(ctx, q.ID, []uint{a1.ID, a2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.CountReviews(ctx, q.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var _ thread.ReviewCounter = s
	sum, err := thread.NewEngine(s).Summarize(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, thread.Summary{QuestionID: q.ID, Unresolved: true, Answers: 2, PotentialAnswers: 2, Reviews: 2}, sum)
}
