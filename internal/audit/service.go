package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/yardguard/internal/core/events"
)

// Service persists access decisions published on the event bus and serves
// them back for review.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// RegisterHandlers subscribes the trail to the decision stream.
func (s *Service) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeAccessDecision, s.HandleAccessDecision)
}

// HandleAccessDecision records one published decision. Handlers run off the
// request path, so a write failure is logged and reported to the bus but
// never blocks the original request.
func (s *Service) HandleAccessDecision(_ context.Context, event events.Event) error {
	decisionEvent, ok := event.(*events.AccessDecisionEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	decision := &Decision{
		ID:              decisionEvent.EventID(),
		UserID:          decisionEvent.UserID,
		Module:          decisionEvent.Module,
		Action:          decisionEvent.Action,
		Allowed:         decisionEvent.Allowed,
		RejectionGate:   decisionEvent.RejectionGate,
		RejectionReason: decisionEvent.RejectionReason,
		RecordID:        decisionEvent.RecordID,
		ClientIP:        decisionEvent.ClientIP,
		DeviceType:      decisionEvent.DeviceType,
		DecidedAt:       decisionEvent.DecidedAt,
	}

	if err := s.repo.Create(decision); err != nil {
		s.logger.Error("failed to persist access decision",
			"error", err,
			"event_id", decisionEvent.EventID(),
			"user_id", decisionEvent.UserID)
		return err
	}
	return nil
}

func (s *Service) ListByUser(userID string, limit, offset int) ([]*Decision, error) {
	return s.repo.ListByUser(userID, limit, offset)
}

func (s *Service) ListDenied(limit, offset int) ([]*Decision, error) {
	return s.repo.ListDenied(limit, offset)
}

// PruneBefore trims the trail past the retention window. Run from the
// worker.
func (s *Service) PruneBefore(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	n, err := s.repo.DeleteBefore(cutoff)
	if err != nil {
		s.logger.Error("failed to prune audit trail", "error", err)
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned audit trail", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
