package gatepass

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/yardguard/internal"
	"github.com/frahmantamala/yardguard/internal/authz"
	"github.com/frahmantamala/yardguard/internal/core/events"
	"github.com/google/uuid"
)

// Repository interface defines the data access methods for gate passes
type Repository interface {
	Create(pass *GatePass) error
	GetByID(id int64) (*GatePass, error)
	List(limit, offset int) ([]*GatePass, error)
	Update(pass *GatePass) error
	UpdateStatus(id int64, status string, processedAt time.Time) error
	Delete(id int64) error
}

// EventPublisher is the slice of the event bus the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Actor bundles who is asking with the trust signals of the request. The
// auth middleware assembled all three; the service never reads ambient
// state.
type Actor struct {
	Subject      authz.Subject
	Capabilities []authz.Capability
	Context      authz.AccessContext
}

// Service handles gate pass business logic. Every operation runs through
// the capability engine first; repository access only happens after an
// ALLOW, and read results are trimmed to the decision's field mask.
type Service struct {
	repo   Repository
	engine *authz.Engine
	bus    EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, engine *authz.Engine, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		bus:    bus,
		logger: logger,
	}
}

// IssueGatePass creates a new pending gate pass owned by the actor.
func (s *Service) IssueGatePass(actor Actor, dto CreateGatePassDTO) (*GatePass, error) {
	if err := dto.Validate(); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if _, err := s.authorize(actor, authz.ActionCreate, nil, ""); err != nil {
		return nil, err
	}

	issuedAt := dto.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	pass := &GatePass{
		PassNumber:   newPassNumber(),
		VehiclePlate: dto.VehiclePlate,
		VehicleType:  dto.VehicleType,
		DriverName:   dto.DriverName,
		Status:       StatusPending,
		AmountIDR:    dto.AmountIDR,
		YardID:       dto.YardID,
		Department:   actor.Subject.Department,
		CreatedBy:    actor.Subject.ID,
		AssignedTo:   dto.AssignedTo,
		Notes:        dto.Notes,
		IssuedAt:     issuedAt,
	}

	if err := s.repo.Create(pass); err != nil {
		s.logger.Error("failed to create gate pass", "error", err, "user_id", actor.Subject.ID)
		return nil, err
	}

	s.logger.Info("gate pass issued",
		"gate_pass_id", pass.ID,
		"pass_number", pass.PassNumber,
		"yard_id", pass.YardID,
		"created_by", actor.Subject.ID)

	return pass, nil
}

// GetGatePass returns one pass trimmed to the actor's read field mask.
func (s *Service) GetGatePass(actor Actor, id int64) (authz.RecordView, error) {
	pass, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrGatePassNotFound
	}

	decision, err := s.authorize(actor, authz.ActionRead, pass.ToRecordView(), pass.PassNumber)
	if err != nil {
		return nil, err
	}

	return decision.FieldMask.Apply(pass.ToRecordView()), nil
}

// ListGatePasses returns the page of passes the actor may read, each
// trimmed to its field mask. Records the actor's grants do not reach are
// silently dropped rather than erroring the whole page.
func (s *Service) ListGatePasses(actor Actor, limit, offset int) ([]authz.RecordView, error) {
	passes, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list gate passes", "error", err)
		return nil, err
	}

	visible := make([]authz.RecordView, 0, len(passes))
	for _, pass := range passes {
		record := pass.ToRecordView()
		decision, err := s.engine.Evaluate(actor.Capabilities, authz.ModuleGatePass, authz.ActionRead, actor.Subject, actor.Context, record)
		if err != nil {
			return nil, internal.NewInternalError("capability set unavailable", err)
		}
		if !decision.Allowed {
			continue
		}
		visible = append(visible, decision.FieldMask.Apply(record))
	}
	return visible, nil
}

// UpdateGatePass applies a partial update after checking both the update
// grant and its writable field mask against the touched fields.
func (s *Service) UpdateGatePass(actor Actor, id int64, dto UpdateGatePassDTO) (*GatePass, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	pass, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrGatePassNotFound
	}

	decision, err := s.authorize(actor, authz.ActionUpdate, pass.ToRecordView(), pass.PassNumber)
	if err != nil {
		return nil, err
	}

	for _, field := range dto.TouchedFields() {
		if !decision.FieldMask.Allows(field) {
			s.logger.Warn("update touches a non-writable field",
				"gate_pass_id", id,
				"field", field,
				"user_id", actor.Subject.ID)
			return nil, internal.NewForbiddenError(
				fmt.Sprintf("field %q is not writable under the current grants", field),
				internal.ErrCodeFieldNotWritable)
		}
	}

	applyUpdate(pass, dto)
	if err := s.repo.Update(pass); err != nil {
		s.logger.Error("failed to update gate pass", "error", err, "gate_pass_id", id)
		return nil, err
	}

	s.logger.Info("gate pass updated", "gate_pass_id", id, "fields", dto.TouchedFields(), "user_id", actor.Subject.ID)
	return pass, nil
}

// ApproveGatePass moves a pending pass to approved.
func (s *Service) ApproveGatePass(actor Actor, id int64) error {
	pass, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrGatePassNotFound
	}

	if _, err := s.authorize(actor, authz.ActionApprove, pass.ToRecordView(), pass.PassNumber); err != nil {
		return err
	}

	if !pass.CanBeApproved() {
		s.logger.Warn("cannot approve gate pass in current status",
			"gate_pass_id", id,
			"current_status", pass.Status)
		return internal.ErrInvalidGatePassStatus
	}

	if err := s.repo.UpdateStatus(id, StatusApproved, time.Now()); err != nil {
		s.logger.Error("failed to approve gate pass", "error", err, "gate_pass_id", id)
		return err
	}

	s.logger.Info("gate pass approved", "gate_pass_id", id, "approved_by", actor.Subject.ID, "amount", pass.AmountIDR)
	return nil
}

// RejectGatePass moves a pending pass to rejected.
func (s *Service) RejectGatePass(actor Actor, id int64, reason string) error {
	pass, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrGatePassNotFound
	}

	if _, err := s.authorize(actor, authz.ActionApprove, pass.ToRecordView(), pass.PassNumber); err != nil {
		return err
	}

	if !pass.CanBeRejected() {
		s.logger.Warn("cannot reject gate pass in current status",
			"gate_pass_id", id,
			"current_status", pass.Status)
		return internal.ErrInvalidGatePassStatus
	}

	if err := s.repo.UpdateStatus(id, StatusRejected, time.Now()); err != nil {
		s.logger.Error("failed to reject gate pass", "error", err, "gate_pass_id", id)
		return err
	}

	s.logger.Info("gate pass rejected", "gate_pass_id", id, "rejected_by", actor.Subject.ID, "reason", reason)
	return nil
}

// DeleteGatePass removes a pass entirely.
func (s *Service) DeleteGatePass(actor Actor, id int64) error {
	pass, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrGatePassNotFound
	}

	if _, err := s.authorize(actor, authz.ActionDelete, pass.ToRecordView(), pass.PassNumber); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete gate pass", "error", err, "gate_pass_id", id)
		return err
	}

	s.logger.Info("gate pass deleted", "gate_pass_id", id, "deleted_by", actor.Subject.ID)
	return nil
}

// authorize runs one evaluation, publishes the decision for the audit
// trail and converts a deny into the API-facing forbidden error.
func (s *Service) authorize(actor Actor, action authz.Action, record authz.RecordView, recordID string) (authz.Decision, error) {
	decision, err := s.engine.Evaluate(actor.Capabilities, authz.ModuleGatePass, action, actor.Subject, actor.Context, record)
	if err != nil {
		s.logger.Error("authorization evaluation failed", "error", err, "action", action, "user_id", actor.Subject.ID)
		return decision, internal.NewInternalError("capability set unavailable", err)
	}

	s.publishDecision(actor, action, decision, recordID)

	if !decision.Allowed {
		s.logger.Warn("access denied",
			"action", action,
			"user_id", actor.Subject.ID,
			"gate", decision.Rejection.Gate.String(),
			"reason", decision.Rejection.Message)
		return decision, internal.NewForbiddenError(decision.Rejection.Message, internal.ErrCodeAccessDenied)
	}
	return decision, nil
}

func (s *Service) publishDecision(actor Actor, action authz.Action, decision authz.Decision, recordID string) {
	if s.bus == nil {
		return
	}

	var gate, reason string
	if decision.Rejection != nil {
		gate = decision.Rejection.Gate.String()
		reason = decision.Rejection.Message
	}

	event := events.NewAccessDecisionEvent(
		actor.Subject.ID,
		string(authz.ModuleGatePass),
		string(action),
		decision.Allowed,
		gate,
		reason,
		recordID,
		actor.Context.ClientIP,
		string(actor.Context.DeviceType),
		actor.Context.Now,
	)
	if err := s.bus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish access decision", "error", err)
	}
}

func applyUpdate(pass *GatePass, dto UpdateGatePassDTO) {
	if dto.VehiclePlate != nil {
		pass.VehiclePlate = *dto.VehiclePlate
	}
	if dto.VehicleType != nil {
		pass.VehicleType = *dto.VehicleType
	}
	if dto.DriverName != nil {
		pass.DriverName = *dto.DriverName
	}
	if dto.AmountIDR != nil {
		pass.AmountIDR = *dto.AmountIDR
	}
	if dto.AssignedTo != nil {
		pass.AssignedTo = *dto.AssignedTo
	}
	if dto.Flagged != nil {
		pass.Flagged = *dto.Flagged
	}
	if dto.Notes != nil {
		pass.Notes = *dto.Notes
	}
}

func newPassNumber() string {
	return "GP-" + uuid.New().String()[:8]
}
