package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/repository"
	"library-backend/pkg/jwt"
	"library-backend/pkg/logger"
)

const bcryptCost = 12

// LoanGuard blocks account deletion while the member has open loans
type LoanGuard interface {
	GuardUserDeletion(ctx context.Context, userID uuid.UUID) error
}

// UserService implements ServiceInterface
type UserService struct {
	repo       repository.RepositoryInterface
	jwtManager *jwt.Manager
	loanGuard  LoanGuard
}

// NewService creates a new user service
func NewService(repo repository.RepositoryInterface, jwtManager *jwt.Manager, loanGuard LoanGuard) *UserService {
	return &UserService{
		repo:       repo,
		jwtManager: jwtManager,
		loanGuard:  loanGuard,
	}
}

// =====================================================
// AUTHENTICATION
// =====================================================

// Register implements ServiceInterface.Register
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, model.ErrEmailAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// New accounts are always students. Librarians are promoted by an
	// existing librarian through UpdateUserRole.
	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		FullName:     req.FullName,
		Role:         model.RoleStudent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	resp := user.ToResponse()
	return &resp, nil
}

// Login implements ServiceInterface.Login
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the email exists
		return nil, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, model.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RefreshToken implements ServiceInterface.RefreshToken
func (s *UserService) RefreshToken(ctx context.Context, req model.RefreshTokenRequest) (*model.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	// Re-read the account so role changes and deactivation take effect
	// at the next refresh.
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, model.ErrUserInactive
	}

	return s.issueTokens(user)
}

func (s *UserService) issueTokens(user *model.User) (*model.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID.String(), user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &model.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.ToResponse(),
	}, nil
}

// =====================================================
// PROFILE
// =====================================================

// GetProfile implements ServiceInterface.GetProfile
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

// UpdateProfile implements ServiceInterface.UpdateProfile
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

// =====================================================
// ADMINISTRATION
// =====================================================

// ListUsers implements ServiceInterface.ListUsers
func (s *UserService) ListUsers(ctx context.Context, req model.ListUsersRequest) (*model.ListUsersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	users, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	return &model.ListUsersResponse{
		Users: model.ToResponseList(users),
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	}, nil
}

// UpdateUserRole implements ServiceInterface.UpdateUserRole
func (s *UserService) UpdateUserRole(ctx context.Context, userID uuid.UUID, req model.UpdateRoleRequest) (*model.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = req.Role
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User role updated", map[string]interface{}{
		"user_id": userID,
		"role":    req.Role,
	})

	resp := user.ToResponse()
	return &resp, nil
}

// DeleteUser implements ServiceInterface.DeleteUser
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.loanGuard.GuardUserDeletion(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	logger.Info("User deleted", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
