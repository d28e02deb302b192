package capability

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/yardguard/internal"
	"github.com/frahmantamala/yardguard/internal/authz"
	"github.com/frahmantamala/yardguard/internal/core/events"
)

// EventPublisher is the slice of the event bus the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service owns the authoring lifecycle of capability grants. Structural
// validation happens here, at save time: the evaluator downstream assumes it
// only ever sees well-formed grants and fails closed on anything else.
type Service struct {
	repo   RepositoryAPI
	bus    EventPublisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) publishChange(eventType string, grant *Grant, changedBy int64) {
	if s.bus == nil {
		return
	}
	event := events.NewCapabilityChangeEvent(eventType, grant.ID, grant.UserID,
		string(grant.Cap.Module), string(grant.Cap.Action), changedBy)
	if err := s.bus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish capability change", "error", err, "grant_id", grant.ID)
	}
}

// CapabilitiesForUser returns the engine-facing capability list for one
// user. Rows that fail to decode are skipped with a warning rather than
// failing the whole set; a skipped grant simply cannot authorize anything.
func (s *Service) CapabilitiesForUser(userID int64) ([]authz.Capability, error) {
	grants, err := s.repo.GetByUserID(userID)
	if err != nil {
		s.logger.Error("failed to load capabilities", "error", err, "user_id", userID)
		return nil, err
	}

	caps := make([]authz.Capability, 0, len(grants))
	for _, g := range grants {
		caps = append(caps, g.Cap)
	}
	return caps, nil
}

func (s *Service) ListGrants(userID int64) ([]*Grant, error) {
	return s.repo.GetByUserID(userID)
}

func (s *Service) CreateGrant(dto CreateGrantDTO, grantedBy int64) (*Grant, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	cap := dto.toCapability()
	if err := cap.Validate(); err != nil {
		s.logger.Warn("rejected malformed capability at authoring time",
			"error", err,
			"user_id", dto.UserID,
			"module", dto.Module,
			"action", dto.Action)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidCapability)
	}

	grant := &Grant{
		UserID:    dto.UserID,
		GrantedBy: &grantedBy,
		Cap:       cap,
	}
	if err := s.repo.Create(grant); err != nil {
		s.logger.Error("failed to persist grant", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	s.logger.Info("capability granted",
		"grant_id", grant.ID,
		"user_id", dto.UserID,
		"module", dto.Module,
		"action", dto.Action,
		"scope", dto.Scope)
	s.publishChange(events.EventTypeCapabilityGranted, grant, grantedBy)
	return grant, nil
}

func (s *Service) UpdateGrant(id int64, dto UpdateGrantDTO) (*Grant, error) {
	grant, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrCapabilityNotFound
	}

	if dto.Scope != nil {
		grant.Cap.Scope = authz.Scope(*dto.Scope)
	}
	if dto.CustomFilter != nil {
		grant.Cap.CustomFilter = dto.CustomFilter
	}
	if dto.TimeRestrictions != nil {
		grant.Cap.TimeRestrictions = dto.TimeRestrictions
	}
	if dto.Conditions != nil {
		grant.Cap.Conditions = dto.Conditions
	}
	if dto.ContextRestrictions != nil {
		grant.Cap.ContextRestrictions = dto.ContextRestrictions
	}
	if dto.FieldPermissions != nil {
		grant.Cap.FieldPermissions = dto.FieldPermissions
	}
	if dto.Reason != nil {
		grant.Cap.Reason = *dto.Reason
	}
	if dto.ExpiresAt != nil {
		grant.Cap.ExpiresAt = dto.ExpiresAt
	}

	if err := grant.Cap.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidCapability)
	}

	if err := s.repo.Update(grant); err != nil {
		s.logger.Error("failed to update grant", "error", err, "grant_id", id)
		return nil, err
	}
	return grant, nil
}

func (s *Service) RevokeGrant(id int64) error {
	grant, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrCapabilityNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to revoke grant", "error", err, "grant_id", id)
		return err
	}
	s.logger.Info("capability revoked", "grant_id", id)
	changedBy := int64(0)
	if grant.GrantedBy != nil {
		changedBy = *grant.GrantedBy
	}
	s.publishChange(events.EventTypeCapabilityRevoked, grant, changedBy)
	return nil
}

// PruneExpired deletes grants whose absolute deadline passed more than the
// retention window ago. Expired grants are already inert at evaluation time;
// pruning just keeps the table small. Run from the worker.
func (s *Service) PruneExpired(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	n, err := s.repo.DeleteExpiredBefore(cutoff)
	if err != nil {
		s.logger.Error("failed to prune expired grants", "error", err)
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned expired grants", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
