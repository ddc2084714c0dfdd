package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	breakerConsecutiveFailures = 5
	breakerOpenTimeout         = 30 * time.Second
	maxErrorBodyLength         = 512
)

// newBreaker trips after consecutive failures. Calls are never retried; an open
// breaker simply fails fast until the timeout elapses.
func newBreaker[T any](name string, log *zap.Logger) *gobreaker.CircuitBreaker[T] {
	log = logger.OrNop(log)
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func statusError(service, operation string, resp *resty.Response) error {
	msg := logger.TruncateForLog(resp.String(), maxErrorBodyLength)
	if msg == "" {
		return fmt.Errorf("%s %s status: %s", service, operation, resp.Status())
	}
	return fmt.Errorf("%s %s status: %s: %s", service, operation, resp.Status(), strings.TrimSpace(msg))
}
