package service

import (
	"context"

	"studyhub/internal/domain"
	"studyhub/internal/repository"
	"studyhub/internal/security"
)

// Actor identifies the authenticated caller for permission checks.
type Actor struct {
	UserID uint
	Role   domain.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

func ActorFromClaims(claims *security.Claims) (Actor, error) {
	id, err := ParseUserID(claims.Subject)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: id, Role: domain.UserRole(claims.Role)}, nil
}

type TokenVerifier interface {
	VerifyAccess(ctx context.Context, raw string) (*security.Claims, error)
}

type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
	GoogleLoginURL(state string) string
	LoginWithGoogleCode(ctx context.Context, code string) (*domain.User, *TokenPair, error)
	ChangePassword(ctx context.Context, userID uint, current, next string) error
}

type UserServiceInterface interface {
	GetByID(id uint) (*domain.User, error)
	UpdateProfile(userID uint, name string) (*domain.User, error)
	ListPaged(query repository.UserListQuery) (repository.PageResult[domain.User], error)
}

type StudyServiceInterface interface {
	Create(ctx context.Context, actor Actor, input CreateStudyInput) (*domain.Study, error)
	Get(id uint) (*domain.Study, error)
	List(query repository.StudyListQuery) (repository.PageResult[domain.Study], error)
	Join(ctx context.Context, actor Actor, studyID uint) (*domain.StudyMember, error)
	SetMemberStatus(ctx context.Context, actor Actor, studyID, targetUserID uint, status domain.MemberStatus) (*domain.StudyMember, error)
	RemoveMember(ctx context.Context, actor Actor, studyID, targetUserID uint) error
	Leave(ctx context.Context, actor Actor, studyID uint) error
	ListMembers(query repository.MemberListQuery) (repository.PageResult[domain.StudyMember], error)
	ListMyStudies(query repository.MyStudiesQuery) (repository.PageResult[domain.StudyMember], error)
}

type AttendanceServiceInterface interface {
	CreateSession(ctx context.Context, actor Actor, studyID uint, title, date string) (*domain.AttendanceSession, error)
	ListSessions(ctx context.Context, actor Actor, studyID uint) ([]domain.AttendanceSession, error)
	Record(ctx context.Context, actor Actor, studyID, sessionID uint, status string) (*domain.AttendanceRecord, error)
	ListRecords(ctx context.Context, actor Actor, studyID, sessionID uint) ([]domain.AttendanceRecord, error)
	StudySummary(ctx context.Context, actor Actor, studyID uint, from, to string) (*Summary, error)
	MySummary(ctx context.Context, actor Actor, studyID uint, from, to string) (*UserSummary, error)
}
