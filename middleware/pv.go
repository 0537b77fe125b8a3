package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/qaforum/utils"
)

// ViewRecorder persists per-day question views.
type ViewRecorder interface {
	RecordQuestionView(ctx context.Context, questionID uint) error
}

// QuestionViewRecorder counts a view of the question named by the :id route
// parameter after every successful GET.
func QuestionViewRecorder(rec ViewRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			return
		}
		if err := rec.RecordQuestionView(c.Request.Context(), uint(id)); err != nil {
			utils.Logger.Warn("record question view failed", zap.Uint64("question_id", id), zap.Error(err))
		}
	}
}
