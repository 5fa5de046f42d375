package service_test

import (
	"context"
	"testing"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/security"
	"atv-rental-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture() (*MockUserRepo, *MockEmailService, security.TokenManager, service.AuthService) {
	userRepo := new(MockUserRepo)
	emailSvc := new(MockEmailService)
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", 60, 10080)
	svc := service.NewAuthService(userRepo, tokens, emailSvc)
	return userRepo, emailSvc, tokens, svc
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		userRepo, emailSvc, _, svc := newAuthFixture()

		userRepo.On("GetByUsername", ctx, "rider").Return(nil, &domain.NotFoundError{Entity: "user"})
		userRepo.On("GetByEmail", ctx, "rider@example.com").Return(nil, &domain.NotFoundError{Entity: "user"})
		userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 7
		}).Return(nil)
		emailSvc.On("SendVerificationEmail", ctx, "rider@example.com", "Rider", mock.AnythingOfType("string")).Return(nil)

		user, err := svc.Register(ctx, "rider", "Rider", "rider@example.com", "secret-pass")
		require.NoError(t, err)
		assert.Equal(t, int32(7), user.ID)
		assert.Equal(t, domain.RoleCustomer, user.Role)
		assert.False(t, user.EmailVerified)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret-pass")))
		emailSvc.AssertExpectations(t)
	})

	t.Run("Username Taken", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		userRepo.On("GetByUsername", ctx, "rider").Return(&domain.User{ID: 1}, nil)

		_, err := svc.Register(ctx, "rider", "", "new@example.com", "secret-pass")
		assert.ErrorIs(t, err, service.ErrUsernameTaken)
	})

	t.Run("Email Taken", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		userRepo.On("GetByUsername", ctx, "newbie").Return(nil, &domain.NotFoundError{Entity: "user"})
		userRepo.On("GetByEmail", ctx, "rider@example.com").Return(&domain.User{ID: 1}, nil)

		_, err := svc.Register(ctx, "newbie", "", "rider@example.com", "secret-pass")
		assert.ErrorIs(t, err, service.ErrEmailTaken)
	})
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		userRepo, _, tokens, svc := newAuthFixture()
		token, err := tokens.GenerateEmailVerifyToken(7)
		require.NoError(t, err)

		user := &domain.User{ID: 7}
		userRepo.On("GetByID", ctx, int32(7)).Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		require.NoError(t, svc.VerifyEmail(ctx, token))
		assert.True(t, user.EmailVerified)
	})

	t.Run("Wrong Token Type", func(t *testing.T) {
		_, _, tokens, svc := newAuthFixture()
		token, err := tokens.GenerateAccessToken(7, domain.RoleCustomer)
		require.NoError(t, err)

		err = svc.VerifyEmail(ctx, token)
		assert.ErrorIs(t, err, security.ErrWrongTokenType)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		_, _, _, svc := newAuthFixture()
		err := svc.VerifyEmail(ctx, "garbage")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	stored := &domain.User{
		ID:           7,
		Username:     "rider",
		Email:        "rider@example.com",
		Role:         domain.RoleCustomer,
	}

	t.Run("By Username", func(t *testing.T) {
		userRepo, _, tokens, svc := newAuthFixture()
		u := *stored
		u.PasswordHash = hashOf(t, "secret-pass")
		userRepo.On("GetByUsername", ctx, "rider").Return(&u, nil)

		user, access, refresh, err := svc.Login(ctx, "rider", "secret-pass")
		require.NoError(t, err)
		assert.Equal(t, int32(7), user.ID)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)

		claims, err := tokens.ValidateTokenOfType(access, security.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, int32(7), claims.UserID)
		assert.Equal(t, domain.RoleCustomer, claims.Role)
	})

	t.Run("By Email Fallback", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		u := *stored
		u.PasswordHash = hashOf(t, "secret-pass")
		userRepo.On("GetByUsername", ctx, "rider@example.com").Return(nil, &domain.NotFoundError{Entity: "user"})
		userRepo.On("GetByEmail", ctx, "rider@example.com").Return(&u, nil)

		_, _, _, err := svc.Login(ctx, "rider@example.com", "secret-pass")
		assert.NoError(t, err)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		u := *stored
		u.PasswordHash = hashOf(t, "secret-pass")
		userRepo.On("GetByUsername", ctx, "rider").Return(&u, nil)

		_, _, _, err := svc.Login(ctx, "rider", "wrong")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("Unknown User", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		userRepo.On("GetByUsername", ctx, "ghost").Return(nil, &domain.NotFoundError{Entity: "user"})
		userRepo.On("GetByEmail", ctx, "ghost").Return(nil, &domain.NotFoundError{Entity: "user"})

		_, _, _, err := svc.Login(ctx, "ghost", "whatever")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		userRepo, _, tokens, svc := newAuthFixture()
		refresh, err := tokens.GenerateRefreshToken(7)
		require.NoError(t, err)
		userRepo.On("GetByID", ctx, int32(7)).Return(&domain.User{ID: 7, Role: domain.RoleCustomer}, nil)

		access, newRefresh, err := svc.Refresh(ctx, refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, newRefresh)
	})

	t.Run("Access Token Rejected", func(t *testing.T) {
		_, _, tokens, svc := newAuthFixture()
		access, err := tokens.GenerateAccessToken(7, domain.RoleCustomer)
		require.NoError(t, err)

		_, _, err = svc.Refresh(ctx, access)
		assert.ErrorIs(t, err, security.ErrWrongTokenType)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		user := &domain.User{ID: 7, PasswordHash: hashOf(t, "old-pass")}
		userRepo.On("GetByID", ctx, int32(7)).Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		require.NoError(t, svc.ChangePassword(ctx, 7, "old-pass", "new-pass"))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-pass")))
	})

	t.Run("Wrong Current Password", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		user := &domain.User{ID: 7, PasswordHash: hashOf(t, "old-pass")}
		userRepo.On("GetByID", ctx, int32(7)).Return(user, nil)

		err := svc.ChangePassword(ctx, 7, "not-it", "new-pass")
		assert.ErrorIs(t, err, service.ErrWrongPassword)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("Request Sends Email", func(t *testing.T) {
		userRepo, emailSvc, _, svc := newAuthFixture()
		user := &domain.User{ID: 7, Email: "rider@example.com", FullName: "Rider"}
		userRepo.On("GetByEmail", ctx, "rider@example.com").Return(user, nil)
		emailSvc.On("SendPasswordResetEmail", ctx, "rider@example.com", "Rider", mock.AnythingOfType("string")).Return(nil)

		require.NoError(t, svc.RequestPasswordReset(ctx, "rider@example.com"))
		emailSvc.AssertExpectations(t)
	})

	t.Run("Unknown Address Is Silent", func(t *testing.T) {
		userRepo, emailSvc, _, svc := newAuthFixture()
		userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, &domain.NotFoundError{Entity: "user"})

		assert.NoError(t, svc.RequestPasswordReset(ctx, "ghost@example.com"))
		emailSvc.AssertNotCalled(t, "SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Reset With Valid Token", func(t *testing.T) {
		userRepo, _, tokens, svc := newAuthFixture()
		token, err := tokens.GeneratePasswordResetToken(7)
		require.NoError(t, err)

		user := &domain.User{ID: 7, PasswordHash: hashOf(t, "old-pass")}
		userRepo.On("GetByID", ctx, int32(7)).Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		require.NoError(t, svc.ResetPassword(ctx, token, "new-pass"))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-pass")))
	})

	t.Run("Reset With Verify Token Rejected", func(t *testing.T) {
		_, _, tokens, svc := newAuthFixture()
		token, err := tokens.GenerateEmailVerifyToken(7)
		require.NoError(t, err)

		err = svc.ResetPassword(ctx, token, "new-pass")
		assert.ErrorIs(t, err, security.ErrWrongTokenType)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Email Change Resets Verification", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		user := &domain.User{ID: 7, Email: "old@example.com", EmailVerified: true}
		userRepo.On("GetByID", ctx, int32(7)).Return(user, nil)
		userRepo.On("GetByEmail", ctx, "new@example.com").Return(nil, &domain.NotFoundError{Entity: "user"})
		userRepo.On("Update", ctx, user).Return(nil)

		updated, err := svc.UpdateProfile(ctx, 7, "", "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
		assert.False(t, updated.EmailVerified)
	})

	t.Run("Email Collision Rejected", func(t *testing.T) {
		userRepo, _, _, svc := newAuthFixture()
		user := &domain.User{ID: 7, Email: "old@example.com"}
		userRepo.On("GetByID", ctx, int32(7)).Return(user, nil)
		userRepo.On("GetByEmail", ctx, "taken@example.com").Return(&domain.User{ID: 8}, nil)

		_, err := svc.UpdateProfile(ctx, 7, "", "taken@example.com")
		assert.ErrorIs(t, err, service.ErrEmailTaken)
	})
}
