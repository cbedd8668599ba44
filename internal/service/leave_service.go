package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/techtimeoff/leave-service/internal/config"
	"github.com/techtimeoff/leave-service/internal/domain"
	"github.com/techtimeoff/leave-service/internal/events"
	"github.com/techtimeoff/leave-service/internal/repository"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

const leaveResource = "Leave request"

// Actor identifies the authenticated caller of a workflow operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// LeaveInput describes the editable part of a leave request.
type LeaveInput struct {
	LeaveType    domain.LeaveType `validate:"leavetype"`
	StartDate    time.Time        `validate:"required"`
	EndDate      time.Time        `validate:"required,gtefield=StartDate"`
	NumberOfDays float64          `validate:"gt=0"`
	Reason       string           `validate:"notblank"`
	Attachment   *string
}

// LeaveService coordinates the leave request lifecycle.
type LeaveService struct {
	leaves             repository.LeaveRepository
	history            repository.LeaveHistoryRepository
	users              repository.UserRepository
	dispatcher         events.Dispatcher
	allowCancelDecided bool
	now                func() time.Time
	logger             *zap.Logger
}

// LeaveDependencies bundles repositories for the leave service.
type LeaveDependencies struct {
	LeaveRepo   repository.LeaveRepository
	HistoryRepo repository.LeaveHistoryRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
}

// NewLeaveService constructs the service.
func NewLeaveService(cfg config.Config, deps LeaveDependencies) *LeaveService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &LeaveService{
		leaves:             deps.LeaveRepo,
		history:            deps.HistoryRepo,
		users:              deps.UserRepo,
		dispatcher:         deps.Dispatcher,
		allowCancelDecided: cfg.Leave.AllowCancelDecided,
		now:                clock,
		logger:             logger,
	}
}

// Create submits a new request owned by ownerID. It always starts Pending.
func (s *LeaveService) Create(ctx context.Context, ownerID string, in LeaveInput) (*domain.LeaveView, error) {
	in, err := validateLeaveInput(in)
	if err != nil {
		return nil, err
	}

	leave := &domain.LeaveRequest{
		UserID:       ownerID,
		LeaveType:    in.LeaveType,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		NumberOfDays: in.NumberOfDays,
		Reason:       in.Reason,
		Status:       domain.LeaveStatusPending,
		Attachment:   in.Attachment,
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, mapRepoError(err, leaveResource)
	}

	s.record(ctx, leave, ownerID, nil, "")
	s.publish(ctx, events.EventLeaveRequested, leave, ownerID, nil)
	return s.view(ctx, leave)
}

// ListFor returns the requests visible to actor, newest first. Faculty see
// their own; the coordinator tier sees everything.
func (s *LeaveService) ListFor(ctx context.Context, actor Actor) ([]domain.LeaveView, error) {
	filter := repository.LeaveFilter{}
	if !actor.Role.CanViewAllLeaves() {
		filter.UserID = &actor.ID
	}
	leaves, err := s.leaves.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return s.views(ctx, leaves)
}

// Get returns one request if actor owns it or belongs to the coordinator tier.
func (s *LeaveService) Get(ctx context.Context, id string, actor Actor) (*domain.LeaveView, error) {
	leave, err := s.visible(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, leave)
}

// History returns the audit trail of one request, oldest first.
func (s *LeaveService) History(ctx context.Context, id string, actor Actor) ([]domain.LeaveHistory, error) {
	if _, err := s.visible(ctx, id, actor); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByLeave(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

// Update edits a request the actor owns while it is still Pending.
func (s *LeaveService) Update(ctx context.Context, id string, actor Actor, in LeaveInput) (*domain.LeaveView, error) {
	leave, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, leaveResource)
	}
	if leave.UserID != actor.ID {
		return nil, apperrors.NewForbidden("You can only edit your own leave requests")
	}
	if leave.Status != domain.LeaveStatusPending {
		return nil, pendingOnly(leave.Status)
	}
	in, err = validateLeaveInput(in)
	if err != nil {
		return nil, err
	}

	leave.LeaveType = in.LeaveType
	leave.StartDate = in.StartDate
	leave.EndDate = in.EndDate
	leave.NumberOfDays = in.NumberOfDays
	leave.Reason = in.Reason
	leave.Attachment = in.Attachment
	if err := s.leaves.UpdatePending(ctx, leave); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, pendingOnly("")
		}
		return nil, mapRepoError(err, leaveResource)
	}

	s.publish(ctx, events.EventLeaveUpdated, leave, actor.ID, nil)
	return s.view(ctx, leave)
}

// Approve moves a Pending request to Approved on behalf of a reviewer.
func (s *LeaveService) Approve(ctx context.Context, id string, actor Actor) (*domain.LeaveView, error) {
	if !actor.Role.CanDecideLeave() {
		return nil, apperrors.NewForbidden("You do not have permission to approve leave requests")
	}
	return s.decide(ctx, id, actor, domain.LeaveStatusApproved, nil)
}

// Reject moves a Pending request to Rejected. An empty reason is recorded
// as the default text.
func (s *LeaveService) Reject(ctx context.Context, id string, actor Actor, reason string) (*domain.LeaveView, error) {
	if !actor.Role.CanDecideLeave() {
		return nil, apperrors.NewForbidden("You do not have permission to reject leave requests")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = domain.DefaultRejectionReason
	}
	return s.decide(ctx, id, actor, domain.LeaveStatusRejected, &reason)
}

func (s *LeaveService) decide(ctx context.Context, id string, actor Actor, target domain.LeaveStatus, reason *string) (*domain.LeaveView, error) {
	reviewer, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}

	now := s.now().UTC()
	approverID := reviewer.ID
	approverName := reviewer.Name
	decision := domain.LeaveDecision{
		Status:          target,
		ApprovedBy:      &approverID,
		ApproverName:    &approverName,
		ActionDate:      &now,
		RejectionReason: reason,
	}

	from := domain.LeaveStatusPending
	leave, err := s.transition(ctx, id, []domain.LeaveStatus{from}, decision)
	if err != nil {
		return nil, err
	}

	comment := ""
	if reason != nil {
		comment = *reason
	}
	s.record(ctx, leave, actor.ID, &from, comment)
	s.publish(ctx, events.EventForStatus(target), leave, actor.ID, &from)
	return s.view(ctx, leave)
}

// Cancel withdraws a request. Only the owner may cancel, whatever their role.
func (s *LeaveService) Cancel(ctx context.Context, id string, actor Actor) (*domain.LeaveView, error) {
	current, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, leaveResource)
	}
	if current.UserID != actor.ID {
		return nil, apperrors.NewForbidden("You can only cancel your own leave requests")
	}

	allowed := []domain.LeaveStatus{domain.LeaveStatusPending}
	if s.allowCancelDecided {
		allowed = append(allowed, domain.LeaveStatusApproved, domain.LeaveStatusRejected)
	}

	// One status per write, so the audit entry names the status that was
	// actually replaced even if a decision lands after the read above.
	decision := domain.LeaveDecision{Status: domain.LeaveStatusCancelled}
	var (
		leave *domain.LeaveRequest
		from  domain.LeaveStatus
	)
	for _, candidate := range readFirst(allowed, current.Status) {
		leave, err = s.leaves.Transition(ctx, id, []domain.LeaveStatus{candidate}, decision)
		if err == nil {
			from = candidate
			break
		}
		if !errors.Is(err, repository.ErrStatusConflict) {
			return nil, mapRepoError(err, leaveResource)
		}
	}
	if leave == nil {
		return nil, s.conflict(ctx, id, decision.Status)
	}

	s.record(ctx, leave, actor.ID, &from, "")
	s.publish(ctx, events.EventLeaveCancelled, leave, actor.ID, &from)
	return s.view(ctx, leave)
}

// transition performs the conditional write and converts a lost race or a
// terminal status into InvalidTransition.
func (s *LeaveService) transition(ctx context.Context, id string, from []domain.LeaveStatus, decision domain.LeaveDecision) (*domain.LeaveRequest, error) {
	leave, err := s.leaves.Transition(ctx, id, from, decision)
	if err == nil {
		return leave, nil
	}
	if errors.Is(err, repository.ErrStatusConflict) {
		return nil, s.conflict(ctx, id, decision.Status)
	}
	return nil, mapRepoError(err, leaveResource)
}

// conflict reports a refused transition against the status stored now.
func (s *LeaveService) conflict(ctx context.Context, id string, target domain.LeaveStatus) error {
	current, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err, leaveResource)
	}
	return apperrors.NewInvalidTransition(string(current.Status), string(target))
}

// readFirst orders allowed so the status seen by the last read is tried first.
func readFirst(allowed []domain.LeaveStatus, seen domain.LeaveStatus) []domain.LeaveStatus {
	out := make([]domain.LeaveStatus, 0, len(allowed))
	for _, st := range allowed {
		if st == seen {
			out = append(out, st)
		}
	}
	for _, st := range allowed {
		if st != seen {
			out = append(out, st)
		}
	}
	return out
}

func (s *LeaveService) visible(ctx context.Context, id string, actor Actor) (*domain.LeaveRequest, error) {
	leave, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, leaveResource)
	}
	if leave.UserID != actor.ID && !actor.Role.CanViewAllLeaves() {
		return nil, apperrors.NewForbidden("You do not have permission to view this leave request")
	}
	return leave, nil
}

// record appends an audit entry. The transition is already committed, so a
// failure here is logged rather than returned.
func (s *LeaveService) record(ctx context.Context, leave *domain.LeaveRequest, actorID string, from *domain.LeaveStatus, comment string) {
	if s.history == nil {
		return
	}
	entry := &domain.LeaveHistory{
		LeaveID:    leave.ID,
		ActorID:    actorID,
		FromStatus: from,
		ToStatus:   leave.Status,
		Comment:    comment,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("record leave history", zap.String("leave_id", leave.ID), zap.Error(err))
	}
}

func (s *LeaveService) publish(ctx context.Context, eventType events.EventType, leave *domain.LeaveRequest, actorID string, from *domain.LeaveStatus) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		LeaveID:   leave.ID,
		ActorID:   actorID,
		Timestamp: s.now().UTC(),
		Payload:   events.NewLeavePayload(leave, from),
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish leave event", zap.String("type", string(eventType)), zap.Error(err))
	}
}

func (s *LeaveService) view(ctx context.Context, leave *domain.LeaveRequest) (*domain.LeaveView, error) {
	views, err := s.views(ctx, []domain.LeaveRequest{*leave})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves owner and approver summaries with one user lookup.
func (s *LeaveService) views(ctx context.Context, leaves []domain.LeaveRequest) ([]domain.LeaveView, error) {
	ids := make([]string, 0, len(leaves))
	seen := map[string]bool{}
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, leave := range leaves {
		add(leave.UserID)
		if leave.ApprovedBy != nil {
			add(*leave.ApprovedBy)
		}
	}

	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	byID := make(map[string]*domain.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = &domain.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Department: u.Department}
	}

	out := make([]domain.LeaveView, 0, len(leaves))
	for _, leave := range leaves {
		v := domain.LeaveView{LeaveRequest: leave, Owner: byID[leave.UserID]}
		if leave.ApprovedBy != nil {
			v.Approver = byID[*leave.ApprovedBy]
		}
		out = append(out, v)
	}
	return out, nil
}

func validateLeaveInput(in LeaveInput) (LeaveInput, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	in.Attachment = optional(in.Attachment)
	return in, apperrors.ValidateStruct(in)
}

func pendingOnly(status domain.LeaveStatus) error {
	details := map[string]any{}
	if status != "" {
		details["status"] = status
	}
	return apperrors.NewConflict("only pending leave requests can be edited", details)
}
