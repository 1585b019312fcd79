package services

import (
	"context"
	"errors"

	"github.com/campusswap/backend/internal/models"
	"github.com/campusswap/backend/internal/utils"
	"github.com/campusswap/backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	db           *gorm.DB
	jwtSecret    string
	emailService *EmailService
}

func NewAuthService(db *gorm.DB, jwtSecret string, emailService *EmailService) *AuthService {
	return &AuthService{
		db:           db,
		jwtSecret:    jwtSecret,
		emailService: emailService,
	}
}

type SignupRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Alias     string `json:"alias"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Career    string `json:"career"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Alias         *string `json:"alias,omitempty"`
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Career        *string `json:"career,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	SkillsOffered *string `json:"skills_offered,omitempty"`
	SkillsWanted  *string `json:"skills_wanted,omitempty"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   int64       `json:"expires_at"`
	User        models.User `json:"user"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if !utils.IsValidEmail(req.Email) {
		return nil, errors.New("invalid email format")
	}
	if !utils.IsValidPassword(req.Password) {
		return nil, errors.New("password must be at least 8 characters")
	}

	user := models.User{
		Email:     req.Email,
		Password:  req.Password,
		Alias:     utils.SanitizeString(req.Alias),
		FirstName: utils.SanitizeString(req.FirstName),
		LastName:  utils.SanitizeString(req.LastName),
		Career:    utils.SanitizeString(req.Career),
		Role:      "student",
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// Welcome mail must not block or fail the signup.
	if s.emailService != nil {
		go func(email, name string) {
			if err := s.emailService.SendWelcomeEmail(email, name); err != nil {
				logger.Warn("failed to send welcome email: ", err)
			}
		}(user.Email, user.DisplayName())
	}

	return s.issueToken(&user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", req.Email, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(&user)
}

func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Alias != nil {
		updates["alias"] = utils.SanitizeString(*req.Alias)
	}
	if req.FirstName != nil {
		updates["first_name"] = utils.SanitizeString(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = utils.SanitizeString(*req.LastName)
	}
	if req.Career != nil {
		updates["career"] = utils.SanitizeString(*req.Career)
	}
	if req.Bio != nil {
		updates["bio"] = utils.SanitizeString(*req.Bio)
	}
	if req.SkillsOffered != nil {
		updates["skills_offered"] = utils.SanitizeString(*req.SkillsOffered)
	}
	if req.SkillsWanted != nil {
		updates["skills_wanted"] = utils.SanitizeString(*req.SkillsWanted)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *AuthService) issueToken(user *models.User) (*AuthResponse, error) {
	token, expiresAt, err := utils.GenerateAccessToken(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Unix(),
		User:        *user,
	}, nil
}
