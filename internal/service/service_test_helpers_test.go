package service

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studyhub/internal/domain"
	"studyhub/internal/repository"
)

type testRepos struct {
	users      repository.UserRepository
	studies    repository.StudyRepository
	members    repository.MemberRepository
	attendance repository.AttendanceRepository
}

func newReposForTest(t *testing.T) testRepos {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return testRepos{
		users:      repository.NewUserRepository(db),
		studies:    repository.NewStudyRepository(db),
		members:    repository.NewMemberRepository(db),
		attendance: repository.NewAttendanceRepository(db),
	}
}

func (r testRepos) mustCreateUser(t *testing.T, email string, role domain.UserRole) *domain.User {
	t.Helper()

	user := &domain.User{Email: email, PasswordHash: "x", Name: email, Role: role, Status: domain.UserActive, Provider: domain.ProviderLocal}
	if err := r.users.Create(user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func asActor(user *domain.User) Actor {
	return Actor{UserID: user.ID, Role: user.Role}
}
