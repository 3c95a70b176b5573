package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studyhub/internal/domain"
)

func newDBForTest(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()

	user := &domain.User{Email: email, PasswordHash: "x", Name: email, Role: domain.RoleUser, Status: domain.UserActive, Provider: domain.ProviderLocal}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func seedStudy(t *testing.T, db *gorm.DB, leaderID uint, maxMembers *int) *domain.Study {
	t.Helper()

	study := &domain.Study{Title: "Seeded", Category: "test", MaxMembers: maxMembers, Status: domain.StudyRecruiting, LeaderID: leaderID}
	if err := db.Create(study).Error; err != nil {
		t.Fatalf("seed study: %v", err)
	}
	return study
}

func seedMember(t *testing.T, db *gorm.DB, studyID, userID uint, role domain.MemberRole, status domain.MemberStatus) *domain.StudyMember {
	t.Helper()

	member := &domain.StudyMember{StudyID: studyID, UserID: userID, Role: role, Status: status, JoinedAt: time.Now().UTC()}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return member
}
