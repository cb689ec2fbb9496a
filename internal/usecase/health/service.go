package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index     IndexChecker
	inference InferenceChecker
	cache     CachePinger
}

// New creates a Service. cache can be nil.
func New(index IndexChecker, inference InferenceChecker, cache CachePinger) *Service {
	return &Service{index: index, inference: inference, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.index.HealthCheck(ctx); err != nil {
		checks["vector_index"] = CheckError
	} else {
		checks["vector_index"] = CheckOK
	}

	if err := s.inference.HealthCheck(ctx); err != nil {
		checks["inference"] = CheckError
	} else {
		checks["inference"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	failures := 0
	for _, v := range checks {
		if v == CheckError {
			failures++
		}
	}

	status := Healthy
	switch {
	case failures == len(checks):
		status = Unhealthy
	case failures > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
