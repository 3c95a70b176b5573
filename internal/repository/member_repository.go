package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"studyhub/internal/domain"
	"studyhub/internal/observability"
)

var ErrMemberNotFound = errors.New("membership not found")

type MemberListQuery struct {
	PageRequest
	StudyID uint
	Status  string
}

type MyStudiesQuery struct {
	PageRequest
	UserID      uint
	Role        string
	StudyStatus string
}

type MemberRepository interface {
	Find(studyID, userID uint) (*domain.StudyMember, error)
	Create(member *domain.StudyMember) error
	Update(member *domain.StudyMember) error
	Delete(studyID, userID uint) error
	CountApproved(studyID uint, excludeUserID uint) (int64, error)
	ListByStudy(query MemberListQuery) (PageResult[domain.StudyMember], error)
	ListByUser(query MyStudiesQuery) (PageResult[domain.StudyMember], error)
}

type GormMemberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) MemberRepository { return &GormMemberRepository{db: db} }

func (r *GormMemberRepository) Find(studyID, userID uint) (*domain.StudyMember, error) {
	var m domain.StudyMember
	err := r.db.Where("study_id = ? AND user_id = ?", studyID, userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "member", "find", "not_found")
			return nil, ErrMemberNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "member", "find", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "member", "find", "success")
	return &m, nil
}

func (r *GormMemberRepository) Create(member *domain.StudyMember) error {
	err := r.db.Create(member).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "member", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "member", "create", "success")
	return nil
}

func (r *GormMemberRepository) Update(member *domain.StudyMember) error {
	err := r.db.Save(member).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "member", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "member", "update", "success")
	return nil
}

func (r *GormMemberRepository) Delete(studyID, userID uint) error {
	res := r.db.Where("study_id = ? AND user_id = ?", studyID, userID).Delete(&domain.StudyMember{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "member", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "member", "delete", "not_found")
		return ErrMemberNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "member", "delete", "success")
	return nil
}

// CountApproved counts APPROVED members of the study, optionally excluding one
// user. This is the read half of the approval-time capacity check.
func (r *GormMemberRepository) CountApproved(studyID uint, excludeUserID uint) (int64, error) {
	var count int64
	q := r.db.Model(&domain.StudyMember{}).
		Where("study_id = ? AND status = ?", studyID, domain.MemberApproved)
	if excludeUserID != 0 {
		q = q.Where("user_id <> ?", excludeUserID)
	}
	err := q.Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "member", "count_approved", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(context.Background(), "member", "count_approved", "success")
	return count, nil
}

func (r *GormMemberRepository) ListByStudy(query MemberListQuery) (PageResult[domain.StudyMember], error) {
	req := normalizePageRequest(query.PageRequest)
	result := PageResult[domain.StudyMember]{
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	base := r.db.Model(&domain.StudyMember{}).Where("study_id = ?", query.StudyID)
	if query.Status != "" {
		base = base.Where("status = ?", query.Status)
	}

	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "member", "list_by_study", "error")
		return PageResult[domain.StudyMember]{}, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := base.Preload("User").Order("joined_at ASC").Offset(offset).Limit(req.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "member", "list_by_study", "error")
		return PageResult[domain.StudyMember]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "member", "list_by_study", "success")
	return result, nil
}

func (r *GormMemberRepository) ListByUser(query MyStudiesQuery) (PageResult[domain.StudyMember], error) {
	req := normalizePageRequest(query.PageRequest)
	result := PageResult[domain.StudyMember]{
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	base := r.db.Model(&domain.StudyMember{}).Where("user_id = ?", query.UserID)
	if query.Role != "" {
		base = base.Where("role = ?", query.Role)
	}
	if query.StudyStatus != "" {
		base = base.Joins("JOIN studies ON studies.id = study_members.study_id").
			Where("studies.status = ?", query.StudyStatus)
	}

	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "member", "list_by_user", "error")
		return PageResult[domain.StudyMember]{}, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := base.Preload("Study").Order("joined_at DESC").Offset(offset).Limit(req.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "member", "list_by_user", "error")
		return PageResult[domain.StudyMember]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "member", "list_by_user", "success")
	return result, nil
}
