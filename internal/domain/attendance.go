package domain

import "time"

// AttendanceSession is a scheduled meeting of a study. Created only by the
// study's leader or an admin.
type AttendanceSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudyID   uint      `gorm:"index;not null" json:"study_id"`
	Study     *Study    `gorm:"foreignKey:StudyID" json:"study,omitempty"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Date      time.Time `gorm:"index;not null" json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceLate, AttendanceAbsent:
		return true
	}
	return false
}

// AttendanceRecord holds a member's check-in for a session. At most one
// current record per (session, user); a repeat check-in replaces the status.
type AttendanceRecord struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	SessionID  uint               `gorm:"index:idx_session_user;not null" json:"session_id"`
	UserID     uint               `gorm:"index:idx_session_user;not null" json:"user_id"`
	User       *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status     AttendanceStatus   `gorm:"size:16;not null" json:"status"`
	Session    *AttendanceSession `gorm:"foreignKey:SessionID" json:"-"`
	RecordedAt time.Time          `json:"recorded_at"`
}
