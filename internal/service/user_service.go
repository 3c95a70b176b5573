package service

import (
	"errors"

	"studyhub/internal/apperr"
	"studyhub/internal/domain"
	"studyhub/internal/repository"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(id uint) (*domain.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, name string) (*domain.User, error) {
	if name == "" {
		return nil, apperr.ErrValidation.WithDetails(map[string]string{"name": "required"})
	}
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListPaged(query repository.UserListQuery) (repository.PageResult[domain.User], error) {
	return s.users.ListPaged(query)
}
