package thread

import (
	"context"
	"fmt"
	"sync"

	"github.com/cppla/qaforum/models"
)

type readKey struct{ answer, user uint }

// fakeStore keeps content in maps. Child lists are explicit so tests can
// build duplicate parents and cycles that a relational store would reject.
type fakeStore struct {
	mu sync.Mutex

	questions map[uint]*models.Question
	answers   map[uint]*models.Answer
	reviews   map[uint]*models.Review

	questionAnswers map[uint][]uint
	replies         map[uint][]uint
	questionReviews map[uint][]uint
	answerReviews   map[uint][]uint

	read      map[readKey]bool
	markCalls int

	// vanished answers are still listed by their parent but fail child lookups,
	// as if deleted mid-traversal.
	vanished map[uint]bool
	// failures injects store errors keyed by method name.
	failures map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		questions:       map[uint]*models.Question{},
		answers:         map[uint]*models.Answer{},
		reviews:         map[uint]*models.Review{},
		questionAnswers: map[uint][]uint{},
		replies:         map[uint][]uint{},
		questionReviews: map[uint][]uint{},
		answerReviews:   map[uint][]uint{},
		read:            map[readKey]bool{},
		vanished:        map[uint]bool{},
		failures:        map[string]error{},
	}
}

func (s *fakeStore) addQuestion(id uint) *models.Question {
	q := &models.Question{ID: id, AuthorID: 1, Title: fmt.Sprintf("question %d", id), Text: "body", RelatedIDs: []uint{}}
	s.questions[id] = q
	return q
}

func (s *fakeStore) addAnswer(questionID, id uint) *models.Answer {
	qid := questionID
	a := &models.Answer{ID: id, AuthorID: 2, Text: fmt.Sprintf("answer %d", id), QuestionID: &qid, RelatedIDs: []uint{}}
	s.answers[id] = a
	s.questionAnswers[questionID] = append(s.questionAnswers[questionID], id)
	if q, ok := s.questions[questionID]; ok {
		q.RelatedIDs = append(q.RelatedIDs, id)
	}
	return a
}

func (s *fakeStore) addReply(parentID, id uint) *models.Answer {
	pid := parentID
	a := &models.Answer{ID: id, AuthorID: 3, Text: fmt.Sprintf("reply %d", id), ParentAnswerID: &pid, RelatedIDs: []uint{}}
	s.answers[id] = a
	s.link(parentID, id)
	return a
}

// link adds child to parent's reply list without touching parent pointers.
func (s *fakeStore) link(parentID, childID uint) {
	s.replies[parentID] = append(s.replies[parentID], childID)
	if p, ok := s.answers[parentID]; ok {
		p.RelatedIDs = append(p.RelatedIDs, childID)
	}
}

func (s *fakeStore) addReview(forQuestion bool, relatedID, id uint, votes int) *models.Review {
	r := &models.Review{ID: id, AuthorID: 4, ForQuestion: forQuestion, RelatedID: relatedID, Text: fmt.Sprintf("review %d", id), VoteCount: votes}
	s.reviews[id] = r
	if forQuestion {
		s.questionReviews[relatedID] = append(s.questionReviews[relatedID], id)
	} else {
		s.answerReviews[relatedID] = append(s.answerReviews[relatedID], id)
	}
	return r
}

func (s *fakeStore) fail(method string) error {
	return s.failures[method]
}

func (s *fakeStore) GetQuestion(_ context.Context, id uint) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetQuestion"); err != nil {
		return nil, err
	}
	q, ok := s.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %d: %w", id, models.ErrNotFound)
	}
	cp := *q
	return &cp, nil
}

func (s *fakeStore) GetAnswer(_ context.Context, id uint) (*models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[id]
	if !ok {
		return nil, fmt.Errorf("answer %d: %w", id, models.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) GetReview(_ context.Context, id uint) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %d: %w", id, models.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) answerList(ids []uint) []models.Answer {
	out := make([]models.Answer, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.answers[id]; ok {
			out = append(out, *a)
		}
	}
	return out
}

func (s *fakeStore) reviewList(ids []uint) []models.Review {
	out := make([]models.Review, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.reviews[id]; ok {
			out = append(out, *r)
		}
	}
	return out
}

func (s *fakeStore) GetAnswersForQuestion(_ context.Context, questionID uint) ([]models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetAnswersForQuestion"); err != nil {
		return nil, err
	}
	return s.answerList(s.questionAnswers[questionID]), nil
}

func (s *fakeStore) GetAnswersForAnswer(_ context.Context, answerID uint) ([]models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetAnswersForAnswer"); err != nil {
		return nil, err
	}
	if _, ok := s.answers[answerID]; !ok || s.vanished[answerID] {
		return nil, fmt.Errorf("answer %d: %w", answerID, models.ErrNotFound)
	}
	return s.answerList(s.replies[answerID]), nil
}

func (s *fakeStore) GetReviewsForQuestion(_ context.Context, questionID uint) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewList(s.questionReviews[questionID]), nil
}

func (s *fakeStore) GetReviewsForAnswer(_ context.Context, answerID uint) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.answers[answerID]; !ok || s.vanished[answerID] {
		return nil, fmt.Errorf("answer %d: %w", answerID, models.ErrNotFound)
	}
	return s.reviewList(s.answerReviews[answerID]), nil
}

func (s *fakeStore) IsAnswerMarkedAsRead(_ context.Context, answerID, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read[readKey{answerID, userID}], nil
}

func (s *fakeStore) MarkAnswerAsRead(_ context.Context, answerID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markCalls++
	s.read[readKey{answerID, userID}] = true
	return nil
}

func (s *fakeStore) RegisterVoteForReview(_ context.Context, reviewID uint, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[reviewID]
	if !ok {
		return fmt.Errorf("review %d: %w", reviewID, models.ErrNotFound)
	}
	r.VoteCount += delta
	return nil
}
