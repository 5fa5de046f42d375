package service

import (
	"context"
	"errors"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/logger"
	"atv-rental-backend/internal/repository"
	"atv-rental-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	emailSvc EmailService
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, emailSvc EmailService) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		emailSvc: emailSvc,
	}
}

func (s *authService) Register(ctx context.Context, username, fullName, email, password string) (*domain.User, error) {
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateEmailVerifyToken(user.ID)
	if err == nil {
		if err := s.emailSvc.SendVerificationEmail(ctx, user.Email, user.FullName, token); err != nil {
			logger.Warn("verification email failed", "user_id", user.ID, "error", err)
		}
	}

	logger.Info("user registered", "user_id", user.ID, "username", username)
	return user, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateTokenOfType(token, security.TokenTypeEmailVerify)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	user.EmailVerified = true
	return s.userRepo.Update(ctx, user)
}

func (s *authService) Login(ctx context.Context, login, password string) (*domain.User, string, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, login)
	if err != nil {
		user, err = s.userRepo.GetByEmail(ctx, login)
	}
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, "", "", err
	}

	logger.Info("user logged in", "user_id", user.ID)
	return user, access, refresh, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokens.ValidateTokenOfType(refreshToken, security.TokenTypeRefresh)
	if err != nil {
		return "", "", err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", err
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int32, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.userRepo.Update(ctx, user)
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal whether the address exists.
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	token, err := s.tokens.GeneratePasswordResetToken(user.ID)
	if err != nil {
		return err
	}
	if err := s.emailSvc.SendPasswordResetEmail(ctx, user.Email, user.FullName, token); err != nil {
		logger.Warn("password reset email failed", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.ValidateTokenOfType(token, security.TokenTypePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.userRepo.Update(ctx, user)
}

func (s *authService) GetProfile(ctx context.Context, userID int32) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) UpdateProfile(ctx context.Context, userID int32, fullName, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email != "" && email != user.Email {
		if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
			return nil, ErrEmailTaken
		}
		user.Email = email
		user.EmailVerified = false
	}
	if fullName != "" {
		user.FullName = fullName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
