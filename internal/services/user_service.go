// Package services implements the application logic on top of the GORM
// models: accounts and profiles, activity and meal logs, weight goals
// and their progress, event moderation and the map aggregation feeds.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/metabolic"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an account with a bcrypt password hash. The profile
// starts empty; completing it is a separate step.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*database.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("a valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if count > 0 {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &database.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return user, nil
}

// Authenticate checks email/password credentials. Both unknown email
// and wrong password produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*database.User, error) {
	var user database.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return &user, nil
}

// GetByID loads a user.
func (s *UserService) GetByID(ctx context.Context, userID uint) (*database.User, error) {
	var user database.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &user, nil
}

// ProfileUpdate carries the editable body metrics. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Age       *int
	WeightKg  *float64
	HeightCm  *float64
	Sex       *string
}

// UpdateProfile validates and applies a profile edit for the user
// themselves; admins reuse it for moderation edits.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*database.User, error) {
	if in.Age != nil && (*in.Age < 1 || *in.Age > 120) {
		return nil, apperrors.NewValidationError("age must be between 1 and 120")
	}
	if in.WeightKg != nil && (*in.WeightKg <= 0 || *in.WeightKg > 500) {
		return nil, apperrors.NewValidationError("weight must be a positive number of kilograms")
	}
	if in.HeightCm != nil && (*in.HeightCm <= 0 || *in.HeightCm > 260) {
		return nil, apperrors.NewValidationError("height must be a positive number of centimeters")
	}
	if in.Sex != nil && *in.Sex != metabolic.SexMale && *in.Sex != metabolic.SexFemale && *in.Sex != metabolic.SexOther {
		return nil, apperrors.NewValidationError("sex must be M, F or O")
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Age != nil {
		user.Age = in.Age
	}
	if in.WeightKg != nil {
		user.WeightKg = in.WeightKg
	}
	if in.HeightCm != nil {
		user.HeightCm = in.HeightCm
	}
	if in.Sex != nil {
		user.Sex = in.Sex
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return user, nil
}

// ListUsers returns accounts for the admin screen, optionally matched
// against email or name.
func (s *UserService) ListUsers(ctx context.Context, search string) ([]database.User, error) {
	query := s.db.WithContext(ctx).Model(&database.User{}).Order("created_at DESC")
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like,
		)
	}
	var users []database.User
	if err := query.Find(&users).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return users, nil
}

// DeleteUser removes an account (admin only; enforced at the HTTP layer).
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	result := s.db.WithContext(ctx).Delete(&database.User{}, userID)
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

// MetabolicProfile converts the stored profile into the form the goal
// calculator consumes. Incomplete profiles yield an incomplete result;
// the calculator rejects those.
func MetabolicProfile(u *database.User) metabolic.Profile {
	p := metabolic.Profile{}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.WeightKg != nil {
		p.WeightKg = *u.WeightKg
	}
	if u.HeightCm != nil {
		p.HeightCm = *u.HeightCm
	}
	if u.Sex != nil {
		p.Sex = *u.Sex
	}
	return p
}
