package thread

import (
	"fmt"
	"strconv"

	"github.com/cppla/qaforum/models"
)

// Kind tags the content a Row was built from.
type Kind string

const (
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
	KindReview   Kind = "review"
)

// Row is one line of an assembled thread. Depth is the indent level: the
// question sits at 0, top-level answers at 1, replies one below their parent
// and reviews one below the content they review.
type Row struct {
	Kind        Kind   `json:"kind"`
	DisplayText string `json:"display_text"`
	ContentID   uint   `json:"content_id"`
	AuthorID    uint   `json:"author_id"`
	RelatedIDs  []uint `json:"related_ids"`
	Depth       int    `json:"depth"`
	VoteCount   int    `json:"vote_count,omitempty"`
}

func questionRow(q *models.Question) Row {
	return Row{
		Kind:        KindQuestion,
		DisplayText: q.Title,
		ContentID:   q.ID,
		AuthorID:    q.AuthorID,
		RelatedIDs:  cloneIDs(q.RelatedIDs),
	}
}

func answerRow(a *models.Answer, depth int) Row {
	return Row{
		Kind:        KindAnswer,
		DisplayText: a.Text,
		ContentID:   a.ID,
		AuthorID:    a.AuthorID,
		RelatedIDs:  cloneIDs(a.RelatedIDs),
		Depth:       depth,
	}
}

func reviewRow(r *models.Review, depth int) Row {
	return Row{
		Kind:        KindReview,
		DisplayText: fmt.Sprintf("[%s] %s", FormatVotes(r.VoteCount), r.Text),
		ContentID:   r.ID,
		AuthorID:    r.AuthorID,
		RelatedIDs:  []uint{r.RelatedID},
		Depth:       depth,
		VoteCount:   r.VoteCount,
	}
}

// FormatVotes renders a vote total with an explicit sign: "+3", "-2", "0".
func FormatVotes(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func cloneIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return []uint{}
	}
	out := make([]uint, len(ids))
	copy(out, ids)
	return out
}
