package service

import (
	"context"
	"errors"
	"time"

	"studyhub/internal/apperr"
	"studyhub/internal/domain"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
)

type CreateStudyInput struct {
	Title       string
	Description string
	Category    string
	MaxMembers  *int
}

// StudyService owns the membership workflow: join requests, capacity-bounded
// approval and the leader invariants.
type StudyService struct {
	studies repository.StudyRepository
	members repository.MemberRepository
	users   repository.UserRepository
}

func NewStudyService(studies repository.StudyRepository, members repository.MemberRepository, users repository.UserRepository) *StudyService {
	return &StudyService{studies: studies, members: members, users: users}
}

func (s *StudyService) Create(ctx context.Context, actor Actor, input CreateStudyInput) (*domain.Study, error) {
	if input.Title == "" {
		return nil, apperr.ErrValidation.WithDetails(map[string]string{"title": "required"})
	}
	if input.MaxMembers != nil && *input.MaxMembers < 1 {
		return nil, apperr.ErrValidation.WithDetails(map[string]string{"max_members": "must be positive"})
	}
	study := &domain.Study{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		MaxMembers:  input.MaxMembers,
		Status:      domain.StudyRecruiting,
		LeaderID:    actor.UserID,
	}
	if err := s.studies.CreateWithLeader(study); err != nil {
		return nil, err
	}
	observability.RecordMembershipTransition(ctx, string(domain.MemberApproved), "leader_created")
	return study, nil
}

func (s *StudyService) Get(id uint) (*domain.Study, error) {
	study, err := s.studies.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrStudyNotFound) {
			return nil, apperr.ErrStudyNotFound
		}
		return nil, err
	}
	return study, nil
}

func (s *StudyService) List(query repository.StudyListQuery) (repository.PageResult[domain.Study], error) {
	return s.studies.ListPaged(query)
}

// Join creates or resets a membership to PENDING. An APPROVED membership
// conflicts; a REJECTED one is reset. Capacity is not checked here: the
// pending queue is unbounded and the gate sits at approval time.
func (s *StudyService) Join(ctx context.Context, actor Actor, studyID uint) (*domain.StudyMember, error) {
	if _, err := s.Get(studyID); err != nil {
		return nil, err
	}
	existing, err := s.members.Find(studyID, actor.UserID)
	if err != nil && !errors.Is(err, repository.ErrMemberNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == domain.MemberApproved || existing.Role == domain.MemberRoleLeader {
			return nil, apperr.ErrAlreadyJoined
		}
		if existing.Status == domain.MemberPending {
			return existing, nil
		}
		existing.Status = domain.MemberPending
		existing.JoinedAt = time.Now().UTC()
		if err := s.members.Update(existing); err != nil {
			return nil, err
		}
		observability.RecordMembershipTransition(ctx, string(domain.MemberPending), "rejoined")
		return existing, nil
	}
	member := &domain.StudyMember{
		StudyID:  studyID,
		UserID:   actor.UserID,
		Role:     domain.MemberRoleMember,
		Status:   domain.MemberPending,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.members.Create(member); err != nil {
		return nil, err
	}
	observability.RecordMembershipTransition(ctx, string(domain.MemberPending), "joined")
	return member, nil
}

// SetMemberStatus is the capacity enforcement point. The APPROVED count is
// read immediately before the write; concurrent approvals near capacity race
// within the backing store's isolation level.
func (s *StudyService) SetMemberStatus(ctx context.Context, actor Actor, studyID, targetUserID uint, status domain.MemberStatus) (*domain.StudyMember, error) {
	switch status {
	case domain.MemberApproved, domain.MemberPending, domain.MemberRejected:
	default:
		return nil, apperr.ErrInvalidStatus
	}
	study, err := s.Get(studyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireLeaderOrAdmin(study, actor); err != nil {
		return nil, err
	}
	member, err := s.members.Find(studyID, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, apperr.ErrMemberNotFound
		}
		return nil, err
	}
	if member.Role == domain.MemberRoleLeader {
		return nil, apperr.ErrInvalidOperation
	}
	if status == domain.MemberApproved && study.MaxMembers != nil {
		approved, err := s.members.CountApproved(studyID, targetUserID)
		if err != nil {
			return nil, err
		}
		if approved >= int64(*study.MaxMembers) {
			observability.RecordMembershipTransition(ctx, string(status), "capacity_exceeded")
			return nil, apperr.ErrCapacityExceeded
		}
	}
	member.Status = status
	if err := s.members.Update(member); err != nil {
		return nil, err
	}
	observability.RecordMembershipTransition(ctx, string(status), "success")
	return member, nil
}

func (s *StudyService) RemoveMember(ctx context.Context, actor Actor, studyID, targetUserID uint) error {
	study, err := s.Get(studyID)
	if err != nil {
		return err
	}
	if err := s.requireLeaderOrAdmin(study, actor); err != nil {
		return err
	}
	return s.deleteMembership(ctx, study, targetUserID)
}

func (s *StudyService) Leave(ctx context.Context, actor Actor, studyID uint) error {
	study, err := s.Get(studyID)
	if err != nil {
		return err
	}
	return s.deleteMembership(ctx, study, actor.UserID)
}

func (s *StudyService) deleteMembership(ctx context.Context, study *domain.Study, userID uint) error {
	member, err := s.members.Find(study.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return apperr.ErrMemberNotFound
		}
		return err
	}
	if member.Role == domain.MemberRoleLeader {
		return apperr.ErrInvalidOperation
	}
	if err := s.members.Delete(study.ID, userID); err != nil {
		return err
	}
	observability.RecordMembershipTransition(ctx, "removed", "success")
	return nil
}

func (s *StudyService) ListMembers(query repository.MemberListQuery) (repository.PageResult[domain.StudyMember], error) {
	if _, err := s.Get(query.StudyID); err != nil {
		return repository.PageResult[domain.StudyMember]{}, err
	}
	return s.members.ListByStudy(query)
}

func (s *StudyService) ListMyStudies(query repository.MyStudiesQuery) (repository.PageResult[domain.StudyMember], error) {
	return s.members.ListByUser(query)
}

func (s *StudyService) requireLeaderOrAdmin(study *domain.Study, actor Actor) error {
	if actor.IsAdmin() || study.LeaderID == actor.UserID {
		return nil
	}
	return apperr.ErrForbidden
}
