package metadata

import (
	"context"

	"github.com/sony/gobreaker"

	"csvreporter/internal/config"
	"csvreporter/pkg/circuitbreaker"
)

// CircuitBreakerRepository protects the metadata store from being hammered
// while it is down. Disabled it is a transparent pass-through, which is the
// default: request isolation normally comes from redelivery, not from
// shedding load.
type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	if !cfg.Enabled {
		return &CircuitBreakerRepository{
			repo: repo,
			cb:   nil,
		}
	}

	cbConfig := circuitbreaker.DefaultConfig("mongodb-metadata")
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 && cfg.MinRequests > 0 {
		cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		}
	}

	return &CircuitBreakerRepository{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(cbConfig),
	}
}

func (r *CircuitBreakerRepository) Exists(ctx context.Context, fileName string) (bool, error) {
	if r.cb == nil {
		return r.repo.Exists(ctx, fileName)
	}

	result, err := r.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return r.repo.Exists(ctx, fileName)
	})
	r.cb.RecordRequest(err == nil)
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (r *CircuitBreakerRepository) Upsert(ctx context.Context, record CompletionRecord) error {
	if r.cb == nil {
		return r.repo.Upsert(ctx, record)
	}

	_, err := r.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return nil, r.repo.Upsert(ctx, record)
	})
	r.cb.RecordRequest(err == nil)
	return err
}
