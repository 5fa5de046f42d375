package service

import (
	"context"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.User, int32, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, 0, domain.ErrForbidden
	}
	return s.userRepo.List(ctx, page, pageSize)
}

func (s *userService) GetUser(ctx context.Context, actor domain.Actor, id int32) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) CreateUser(ctx context.Context, actor domain.Actor, user *domain.User, password string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if _, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil {
		return ErrUsernameTaken
	}
	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return ErrEmailTaken
	}
	if !user.Role.Valid() {
		user.Role = domain.RoleCustomer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.userRepo.Create(ctx, user)
}

func (s *userService) UpdateUser(ctx context.Context, actor domain.Actor, user *domain.User) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	current, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if user.Username != "" {
		current.Username = user.Username
	}
	if user.FullName != "" {
		current.FullName = user.FullName
	}
	if user.Email != "" {
		current.Email = user.Email
	}
	if user.Role != "" && user.Role.Valid() {
		current.Role = user.Role
	}

	if err := s.userRepo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
