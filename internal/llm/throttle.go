package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Throttled ограничивает частоту запросов к провайдеру на стороне клиента,
// чтобы не ловить 429 от бесплатных тарифов.
type Throttled struct {
	next    Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewThrottled: requestsPerMinute <= 0 означает без ограничений
func NewThrottled(next Client, requestsPerMinute int, logger *zap.Logger) Client {
	if requestsPerMinute <= 0 {
		return next
	}

	rps := float64(requestsPerMinute) / 60.0
	burst := max(1, requestsPerMinute/5)

	logger.Debug("llm throttle enabled",
		zap.String("provider", next.Name()),
		zap.Int("rpm", requestsPerMinute),
		zap.Int("burst", burst),
	)

	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

func (t *Throttled) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRateLimit, err)
	}
	return t.next.CompleteWithSystem(ctx, system, prompt)
}

func (t *Throttled) Name() string {
	return t.next.Name()
}

var _ Client = (*Throttled)(nil)
