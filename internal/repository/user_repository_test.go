package repository

import (
	"errors"
	"testing"

	"studyhub/internal/domain"
)

func TestUserRepositoryCreateNormalizesEmail(t *testing.T) {
	db := newDBForTest(t)
	repo := NewUserRepository(db)

	user := &domain.User{Email: "Mixed@Example.COM", PasswordHash: "x", Name: "Mixed", Role: domain.RoleUser, Status: domain.UserActive, Provider: domain.ProviderLocal}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := repo.FindByEmail("mixed@EXAMPLE.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if found.Email != "mixed@example.com" {
		t.Fatalf("expected stored lowercase email, got %s", found.Email)
	}
}

func TestUserRepositoryNotFoundSentinel(t *testing.T) {
	db := newDBForTest(t)
	repo := NewUserRepository(db)

	if _, err := repo.FindByID(123); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindByEmail("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryUniqueEmail(t *testing.T) {
	db := newDBForTest(t)
	repo := NewUserRepository(db)

	first := &domain.User{Email: "dup@example.com", PasswordHash: "x", Name: "a", Role: domain.RoleUser, Status: domain.UserActive, Provider: domain.ProviderLocal}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := &domain.User{Email: "dup@example.com", PasswordHash: "x", Name: "b", Role: domain.RoleUser, Status: domain.UserActive, Provider: domain.ProviderLocal}
	if err := repo.Create(second); err == nil {
		t.Fatal("expected unique index violation")
	}
}

func TestUserRepositoryListPaged(t *testing.T) {
	db := newDBForTest(t)
	repo := NewUserRepository(db)

	for i := 0; i < 12; i++ {
		seedUser(t, db, string(rune('a'+i))+"@example.com")
	}

	page, err := repo.ListPaged(UserListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 12 {
		t.Fatalf("expected total 12, got %d", page.Total)
	}
	if len(page.Items) != DefaultPageSize {
		t.Fatalf("expected default page size %d, got %d", DefaultPageSize, len(page.Items))
	}
	if page.TotalPages != 2 {
		t.Fatalf("expected 2 pages, got %d", page.TotalPages)
	}

	second, err := repo.ListPaged(UserListQuery{PageRequest: PageRequest{Page: 2}})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("expected 2 items on the last page, got %d", len(second.Items))
	}
}
