package services

import (
	"errors"
	"strings"
	"time"

	"barterly/internal/auth"
	"barterly/internal/logger"
	"barterly/internal/models"
	"barterly/internal/repositories"
	"barterly/internal/services/dto"
	"barterly/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Signup(db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(db *gorm.DB, userID string) (*dto.UserResponse, error)
	// EnsureAdmin creates the account or promotes an existing one.
	EnsureAdmin(db *gorm.DB, email, password string) (bool, error)
}

type authService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	tokens      *auth.TokenManager
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	tokens *auth.TokenManager,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		tokens:      tokens,
	}
}

func (s *authService) Signup(db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword.WithDetails(err.Error())
	}

	user, err := s.createAccount(db, req.Email, req.Password, strings.TrimSpace(req.FullName), models.UserRoleUser)
	if err != nil {
		return nil, err
	}

	logger.Info("User signed up", "user_id", user.ID)
	return s.issue(user)
}

func (s *authService) createAccount(db *gorm.DB, email, password, fullName string, role models.UserRole) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(tx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.DatabaseError(err)
	}

	profile := &models.Profile{
		UserID:             user.ID,
		FullName:           fullName,
		EmailNotifications: true,
	}
	if err := s.profileRepo.Create(tx, profile); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	user.Profile = profile
	return user, nil
}

func (s *authService) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.DatabaseError(err)
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Profile != nil && user.Profile.IsBanned {
		return nil, apperrors.ErrUserBanned
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastSignIn(db, user.ID, now); err != nil {
		logger.Warn("Failed to record sign-in", "user_id", user.ID, "error", err)
	}
	user.LastSignInAt = &now

	return s.issue(user)
}

func (s *authService) Me(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleProfileError(err)
	}
	return toUserResponse(user), nil
}

func (s *authService) EnsureAdmin(db *gorm.DB, email, password string) (bool, error) {
	existing, err := s.userRepo.FindByEmail(db, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return false, nil
		}
		if err := s.userRepo.UpdateRole(db, existing.ID, models.UserRoleAdmin); err != nil {
			return false, apperrors.DatabaseError(err)
		}
		return true, nil
	case errors.Is(err, repositories.ErrUserNotFound):
		if err := auth.ValidatePassword(password); err != nil {
			return false, apperrors.ErrWeakPassword.WithDetails(err.Error())
		}
		if _, err := s.createAccount(db, email, password, "Admin", models.UserRoleAdmin); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, apperrors.DatabaseError(err)
	}
}

func (s *authService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        toUserResponse(user),
	}, nil
}

func toUserResponse(user *models.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
		LastSignInAt: user.LastSignInAt,
	}
	if user.Profile != nil {
		resp.Profile = toProfileResponse(user.Profile, repositories.RatingSummary{})
	}
	return resp
}
