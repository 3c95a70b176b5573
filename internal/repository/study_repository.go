package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"studyhub/internal/domain"
	"studyhub/internal/observability"
)

var ErrStudyNotFound = errors.New("study not found")

type StudyListQuery struct {
	PageRequest
	Status   string
	Category string
}

type StudyRepository interface {
	CreateWithLeader(study *domain.Study) error
	FindByID(id uint) (*domain.Study, error)
	Update(study *domain.Study) error
	ListPaged(query StudyListQuery) (PageResult[domain.Study], error)
}

type GormStudyRepository struct{ db *gorm.DB }

func NewStudyRepository(db *gorm.DB) StudyRepository { return &GormStudyRepository{db: db} }

// CreateWithLeader creates the study and its LEADER membership row in one
// transaction. Both writes succeed or neither does.
func (r *GormStudyRepository) CreateWithLeader(study *domain.Study) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(study).Error; err != nil {
			return err
		}
		member := &domain.StudyMember{
			StudyID:  study.ID,
			UserID:   study.LeaderID,
			Role:     domain.MemberRoleLeader,
			Status:   domain.MemberApproved,
			JoinedAt: time.Now().UTC(),
		}
		return tx.Create(member).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "study", "create_with_leader", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "study", "create_with_leader", "success")
	return nil
}

func (r *GormStudyRepository) FindByID(id uint) (*domain.Study, error) {
	var s domain.Study
	err := r.db.Preload("Leader").First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "study", "find_by_id", "not_found")
			return nil, ErrStudyNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "study", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "study", "find_by_id", "success")
	return &s, nil
}

func (r *GormStudyRepository) Update(study *domain.Study) error {
	err := r.db.Save(study).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "study", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "study", "update", "success")
	return nil
}

func (r *GormStudyRepository) ListPaged(query StudyListQuery) (PageResult[domain.Study], error) {
	req := normalizePageRequest(query.PageRequest)
	result := PageResult[domain.Study]{
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	base := r.db.Model(&domain.Study{})
	if query.Status != "" {
		base = base.Where("status = ?", query.Status)
	}
	if query.Category != "" {
		base = base.Where("category = ?", query.Category)
	}

	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "study", "list_paged", "error")
		return PageResult[domain.Study]{}, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := base.Preload("Leader").Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "study", "list_paged", "error")
		return PageResult[domain.Study]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "study", "list_paged", "success")
	return result, nil
}
