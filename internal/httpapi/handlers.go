package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

// коды ошибок в теле ответа, стабильные для клиентов
const (
	codeBadRequest      = "bad_request"
	codeTooShort        = "essay_too_short"
	codeTooLong         = "essay_too_long"
	codeRateLimited     = "rate_limited"
	codeInferenceFailed = "inference_failed"
	codeInternal        = "internal"
)

type feedbackRequest struct {
	Essay  string `json:"essay" binding:"required"`
	Prompt string `json:"prompt"`
}

type feedbackResponse struct {
	ID         string               `json:"id"`
	Format     domain.FormatKind    `json:"format"`
	WordCount  int                  `json:"word_count"`
	Provider   string               `json:"provider"`
	DurationMS int64                `json:"duration_ms"`
	Feedback   domain.EssayFeedback `json:"feedback"`
	Levels     levels               `json:"levels"`
}

// levels - цвет плашек, чтобы клиенту не дублировать пороги
type levels struct {
	Overall    domain.Level    `json:"overall"`
	PromptFit  domain.Level    `json:"prompt_fit"`
	Categories []categoryLevel `json:"categories"`
}

type categoryLevel struct {
	Name  string       `json:"name"`
	Level domain.Level `json:"level"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Words    int    `json:"words,omitempty"`
	MinWords int    `json:"min_words,omitempty"`
}

type rubricResponse struct {
	MinWords   int               `json:"min_words"`
	Categories []string          `json:"categories"`
	Thresholds domain.Thresholds `json:"thresholds"`
	Format     domain.FormatKind `json:"format"`
}

func (s *Server) rubric(c *gin.Context) {
	r := s.feedback.Rubric()
	c.JSON(http.StatusOK, rubricResponse{
		MinWords:   r.MinWords,
		Categories: r.Categories,
		Thresholds: r.Thresholds,
		Format:     r.Format,
	})
}

func (s *Server) createFeedback(c *gin.Context) {
	start := time.Now()

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.recordRequest("bad_request", start)
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid request body: " + err.Error(),
			Code:  codeBadRequest,
		})
		return
	}

	res, err := s.feedback.Review(c.Request.Context(), &domain.FeedbackRequest{
		Essay:  req.Essay,
		Prompt: req.Prompt,
	})
	if err != nil {
		status, body := mapError(err)
		s.recordRequest(body.Code, start)
		c.Error(err)
		c.JSON(status, body)
		return
	}

	outcome := domain.StatusOK
	if res.Feedback.Degraded {
		outcome = domain.StatusDegraded
	}
	s.recordRequest(outcome, start)

	c.JSON(http.StatusOK, feedbackResponse{
		ID:         res.ID,
		Format:     res.Format,
		WordCount:  res.WordCount,
		Provider:   res.Provider,
		DurationMS: res.Duration.Milliseconds(),
		Feedback:   res.Feedback,
		Levels:     classify(res.Feedback, s.feedback.Rubric().Thresholds),
	})
}

func (s *Server) recordRequest(status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordRequest(surface, status, time.Since(start))
	}
}

func classify(fb domain.EssayFeedback, t domain.Thresholds) levels {
	out := levels{
		Overall:    t.Classify(fb.OverallScore),
		PromptFit:  t.Classify(fb.PromptFitScore),
		Categories: make([]categoryLevel, 0, len(fb.Categories)),
	}
	for _, c := range fb.Categories {
		out.Categories = append(out.Categories, categoryLevel{Name: c.Name, Level: t.Classify(c.Score)})
	}
	return out
}

// mapError: слишком короткое -> 422, длинное -> 413, модель -> 502
func mapError(err error) (int, errorResponse) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorResponse{
			Error:    "essay is too short",
			Code:     codeTooShort,
			Words:    verr.Words,
			MinWords: verr.MinWords,
		}
	case errors.Is(err, domain.ErrEssayTooLong):
		return http.StatusRequestEntityTooLarge, errorResponse{
			Error: "essay is too long",
			Code:  codeTooLong,
		}
	case errors.Is(err, domain.ErrInferenceFailed):
		return http.StatusBadGateway, errorResponse{
			Error: "model request failed",
			Code:  codeInferenceFailed,
		}
	default:
		return http.StatusInternalServerError, errorResponse{
			Error: "internal error",
			Code:  codeInternal,
		}
	}
}
