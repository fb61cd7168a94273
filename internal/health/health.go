package health

import (
	"context"
	"fmt"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Service aggregates dependency checkers for the readiness probe.
type Service struct {
	checkers []Checker
}

func NewService(checkers ...Checker) *Service {
	return &Service{checkers: checkers}
}

// Ready returns the first failing check, prefixed with its name.
func (s *Service) Ready(ctx context.Context) error {
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			return fmt.Errorf("%s: %w", ch.Name(), err)
		}
	}
	return nil
}

// Names lists the registered checkers in order.
func (s *Service) Names() []string {
	names := make([]string, len(s.checkers))
	for i, ch := range s.checkers {
		names[i] = ch.Name()
	}
	return names
}
