package domain

import "time"

type StudyStatus string

const (
	StudyRecruiting StudyStatus = "RECRUITING"
	StudyClosed     StudyStatus = "CLOSED"
)

// Study is a member group. The leader is fixed at creation time.
type Study struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Description string      `gorm:"size:2048" json:"description"`
	Category    string      `gorm:"size:64" json:"category,omitempty"`
	MaxMembers  *int        `json:"max_members,omitempty"`
	Status      StudyStatus `gorm:"size:16;not null;default:RECRUITING" json:"status"`
	LeaderID    uint        `gorm:"index;not null" json:"leader_id"`
	Leader      *User       `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type MemberRole string

const (
	MemberRoleLeader MemberRole = "LEADER"
	MemberRoleMember MemberRole = "MEMBER"
)

type MemberStatus string

const (
	MemberPending  MemberStatus = "PENDING"
	MemberApproved MemberStatus = "APPROVED"
	MemberRejected MemberStatus = "REJECTED"
)

// StudyMember joins a user to a study. Exactly one row per (study, user) and
// exactly one LEADER row per study, created together with the study.
type StudyMember struct {
	ID       uint         `gorm:"primaryKey" json:"id"`
	StudyID  uint         `gorm:"uniqueIndex:idx_study_member;not null" json:"study_id"`
	UserID   uint         `gorm:"uniqueIndex:idx_study_member;not null" json:"user_id"`
	Study    *Study       `gorm:"foreignKey:StudyID" json:"study,omitempty"`
	User     *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role     MemberRole   `gorm:"size:16;not null;default:MEMBER" json:"role"`
	Status   MemberStatus `gorm:"size:16;not null;default:PENDING" json:"status"`
	JoinedAt time.Time    `json:"joined_at"`
}
