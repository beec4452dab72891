package gatepass

import (
	"campusgate/src/config"
	"campusgate/src/directory"
	"campusgate/src/models"
	"campusgate/src/notify"
	"campusgate/src/types"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

const maxReasonLength = 255

type Service struct {
	store Store
	dir   directory.Directory
	// recipients resolves notification targets; it may be cached.
	recipients directory.Directory
	notifier   notify.Notifier
	settings   config.GatePassSettings
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecipientDirectory sets the directory used for notification recipient
// lookups. Eligibility and routing always use the directory passed to
// NewService.
func WithRecipientDirectory(dir directory.Directory) Option {
	return func(s *Service) { s.recipients = dir }
}

func WithSettings(settings config.GatePassSettings) Option {
	return func(s *Service) { s.settings = settings }
}

func NewService(store Store, dir directory.Directory, notifier notify.Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &Service{
		store:    store,
		dir:      dir,
		notifier: notifier,
		settings: config.DefaultGatePassSettings(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.recipients == nil {
		s.recipients = dir
	}
	return s
}

type CreateInput struct {
	RequesterID uint
	Type        types.GatePassType
	Reason      string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.GatePass, error) {
	requester, err := s.lookup(ctx, in.RequesterID, "requester")
	if err != nil {
		return nil, err
	}
	rt, ok := types.RequesterTypeFor(requester.Role)
	if !ok {
		return nil, forbidden("role %q cannot request gate passes", requester.Role)
	}
	status, _ := InitialStatus(rt)

	reason := strings.TrimSpace(in.Reason)
	switch {
	case reason == "":
		return nil, invalid("reason is required")
	case len(reason) > maxReasonLength:
		return nil, invalid("reason must be at most %d characters", maxReasonLength)
	case in.StartDate.After(in.EndDate):
		return nil, invalid("start date must not be after end date")
	case in.StartDate.Before(s.now()):
		return nil, invalid("start date must not be in the past")
	}
	gpType := in.Type
	if gpType == "" {
		gpType = types.GATEPASS_TYPE_LEAVE
	}
	if gpType == types.GATEPASS_TYPE_OFFICIAL && rt == types.REQUESTER_STUDENT {
		return nil, invalid("official gate passes are for staff only")
	}

	gp := &models.GatePass{
		RequesterID:   requester.ID,
		RequesterType: rt,
		DepartmentID:  requester.DepartmentID,
		Type:          gpType,
		Reason:        reason,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Status:        status,
	}
	if rt == types.REQUESTER_STUDENT {
		id := requester.ID
		gp.StudentID = &id
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		gp.Description = &d
	}
	trail := &models.GatePassTrail{
		ToStatus:  status,
		ActorID:   requester.ID,
		ActorRole: requester.Role,
	}
	if err := s.store.Create(ctx, gp, trail); err != nil {
		log.Printf("[gatepass] Error creating gate pass for [%d]: %s\n", requester.ID, err.Error())
		return nil, err
	}
	s.notifyAfter(gp.Clone(), requester)
	return gp, nil
}

func (s *Service) DecideAsStaff(ctx context.Context, id, staffID uint, d types.Decision, comment string) (*models.GatePass, error) {
	return s.decide(ctx, StageStaff, id, staffID, d, comment)
}

func (s *Service) DecideAsHod(ctx context.Context, id, hodID uint, d types.Decision, comment string) (*models.GatePass, error) {
	return s.decide(ctx, StageHod, id, hodID, d, comment)
}

func (s *Service) DecideAsHostelWarden(ctx context.Context, id, wardenID uint, d types.Decision, comment string) (*models.GatePass, error) {
	return s.decide(ctx, StageHostelWarden, id, wardenID, d, comment)
}

func (s *Service) DecideAsAcademicDirector(ctx context.Context, id, directorID uint, d types.Decision, comment string) (*models.GatePass, error) {
	return s.decide(ctx, StageAcademicDirector, id, directorID, d, comment)
}

// MarkUsedAsSecurity checks an approved pass out of the gate. It is only
// accepted within SecurityBuffer of the validity window.
func (s *Service) MarkUsedAsSecurity(ctx context.Context, id, securityID uint, comment string) (*models.GatePass, error) {
	return s.decide(ctx, StageSecurity, id, securityID, decisionCheckout, comment)
}

func (s *Service) decide(ctx context.Context, stage Stage, id, actorID uint, d types.Decision, comment string) (*models.GatePass, error) {
	if stage != StageSecurity && d != types.DECISION_APPROVE && d != types.DECISION_REJECT {
		return nil, invalid("unknown decision %q", d)
	}
	rule := stageRules[stage]

	actor, err := s.lookup(ctx, actorID, "actor")
	if err != nil {
		return nil, err
	}
	if actor.Role != rule.Role {
		return nil, forbidden("user %d is not a %s", actor.ID, rule.Role)
	}

	route := RouteAny
	if stage == StageHod && d == types.DECISION_APPROVE {
		route, err = s.hodRoute(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	var note *string
	if c := strings.TrimSpace(comment); c != "" {
		note = &c
	}
	var from types.GatePassStatus
	updated, err := s.store.Transition(ctx, id, func(gp *models.GatePass) (*models.GatePassTrail, error) {
		tr, ok := TransitionFor(stage, gp.Status, d, route)
		if !ok {
			return nil, invalidState(gp.ID, gp.Status, ExpectedStatuses(stage))
		}
		if rule.DepartmentScoped && !actor.InDepartment(gp.DepartmentID) {
			return nil, forbidden("gate pass %d belongs to another department", gp.ID)
		}
		now := s.now()
		if stage == StageSecurity {
			buf := s.settings.SecurityBuffer
			if now.Before(gp.StartDate.Add(-buf)) || now.After(gp.EndDate.Add(buf)) {
				return nil, invalid("gate pass %d is outside its validity window", gp.ID)
			}
		}
		if d == types.DECISION_REJECT && s.settings.RequireRejectionComment && note == nil {
			return nil, invalid("a comment is required when rejecting")
		}
		from = gp.Status
		recordDecision(gp, stage, actor.ID, note, now)
		gp.Status = tr.To
		return &models.GatePassTrail{
			FromStatus: from,
			ToStatus:   tr.To,
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Comment:    note,
		}, nil
	})
	if err != nil {
		if KindOf(err) == "" {
			log.Printf("[gatepass] Error deciding gate pass [%d] as %s: %s\n", id, stage, err.Error())
		}
		return nil, err
	}
	s.notifyAfter(updated.Clone(), nil)
	return updated, nil
}

// hodRoute reads the requester's boarding type live, before the record is
// locked. The result is fixed into the status and never re-derived. Records
// already past the HOD stage fail with InvalidState without a lookup.
func (s *Service) hodRoute(ctx context.Context, id uint) (Route, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return RouteAny, err
	}
	if current.Status != types.GATEPASS_PENDING_HOD {
		return RouteAny, invalidState(current.ID, current.Status, ExpectedStatuses(StageHod))
	}
	requester, err := s.lookup(ctx, current.RequesterID, "requester")
	if err != nil {
		return RouteAny, err
	}
	return RouteFor(current.RequesterType, requester.BoardingType), nil
}

func (s *Service) lookup(ctx context.Context, id uint, what string) (*directory.Person, error) {
	p, err := s.dir.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, notFound("%s %d not found", what, id)
		}
		return nil, fmt.Errorf("lookup %s %d: %w", what, id, err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.GatePass, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Trail(ctx context.Context, id uint) ([]models.GatePassTrail, error) {
	return s.store.Trail(ctx, id)
}

// notifyAfter fans out notifications for the committed state of gp. It
// runs detached from the request context so a finished request does not
// cancel delivery.
func (s *Service) notifyAfter(gp *models.GatePass, requester *directory.Person) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if stage, ok := NextStage(gp.Status); ok && gp.Status.Pending() {
			s.notifyApprovers(ctx, gp, stage)
			return
		}
		if !gp.Status.Terminal() {
			return
		}
		if requester == nil {
			p, err := s.recipients.GetUser(ctx, gp.RequesterID)
			if err != nil {
				log.Printf("[gatepass] Error loading requester [%d] for notification: %s\n", gp.RequesterID, err.Error())
				return
			}
			requester = p
		}
		s.notifier.NotifyOutcome(ctx, gp, *requester)
	}()
}

func (s *Service) notifyApprovers(ctx context.Context, gp *models.GatePass, stage Stage) {
	rule := stageRules[stage]
	var dept *uint
	if rule.DepartmentScoped {
		if gp.DepartmentID == nil {
			return
		}
		dept = gp.DepartmentID
	}
	approvers, err := s.recipients.FindByRole(ctx, rule.Role, dept)
	if err != nil {
		log.Printf("[gatepass] Error finding %s approvers for [%d]: %s\n", rule.Role, gp.ID, err.Error())
		return
	}
	for _, a := range approvers {
		s.notifier.NotifyApprovalPending(ctx, gp, a)
	}
}
