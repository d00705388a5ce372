package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/utils"
	"gorm.io/gorm"
)

// Meal slots accepted by the log.
var mealSlots = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db}
}

// MealInput is a new or edited meal entry.
type MealInput struct {
	Name     string
	Calories int
	Slot     string
	Date     string // YYYY-MM-DD
}

func (in MealInput) validate() (time.Time, error) {
	if strings.TrimSpace(in.Name) == "" {
		return time.Time{}, apperrors.NewValidationError("meal name is required")
	}
	if in.Calories <= 0 {
		return time.Time{}, apperrors.NewValidationError("calories must be a positive number")
	}
	if !mealSlots[in.Slot] {
		return time.Time{}, apperrors.NewValidationError("slot must be breakfast, lunch, dinner or snack")
	}
	date, err := utils.ParseDate(in.Date)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("date must be in YYYY-MM-DD format")
	}
	return date, nil
}

// Add records a meal for a user.
func (s *MealService) Add(ctx context.Context, userID uint, in MealInput) (*database.Meal, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}
	meal := &database.Meal{
		UserID:   userID,
		Name:     strings.TrimSpace(in.Name),
		Calories: in.Calories,
		Slot:     in.Slot,
		Date:     date,
	}
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return meal, nil
}

// List returns a user's meals, most recent date first.
func (s *MealService) List(ctx context.Context, userID uint) ([]database.Meal, error) {
	var meals []database.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&meals).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return meals, nil
}

// Update replaces one of the user's own meals.
func (s *MealService) Update(ctx context.Context, userID, mealID uint, in MealInput) (*database.Meal, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}
	var meal database.Meal
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", mealID, userID).First(&meal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	meal.Name = strings.TrimSpace(in.Name)
	meal.Calories = in.Calories
	meal.Slot = in.Slot
	meal.Date = date
	if err := s.db.WithContext(ctx).Save(&meal).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &meal, nil
}

// Delete removes one of the user's own meals.
func (s *MealService) Delete(ctx context.Context, userID, mealID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		Delete(&database.Meal{})
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

// ConsumedToday sums the calories of meals dated today.
func (s *MealService) ConsumedToday(ctx context.Context, userID uint) (int, error) {
	today := utils.Today()
	var total *int
	err := s.db.WithContext(ctx).
		Model(&database.Meal{}).
		Select("SUM(calories)").
		Where("user_id = ? AND date >= ? AND date < ?", userID, today, today.AddDate(0, 0, 1)).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
