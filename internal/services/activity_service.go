package services

import (
	"context"
	"errors"
	"time"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/utils"
	"gorm.io/gorm"
)

// Activity types accepted by the log.
var activityTypes = map[string]bool{
	"walk":  true,
	"run":   true,
	"bike":  true,
	"gym":   true,
	"swim":  true,
	"other": true,
}

type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// ActivityInput is a new or edited activity entry.
type ActivityInput struct {
	Type        string
	DurationMin int
	Calories    *int
	Date        string // YYYY-MM-DD
}

func (in ActivityInput) validate() (time.Time, error) {
	if !activityTypes[in.Type] {
		return time.Time{}, apperrors.NewValidationError("unknown activity type")
	}
	if in.DurationMin <= 0 {
		return time.Time{}, apperrors.NewValidationError("duration must be a positive number of minutes")
	}
	if in.Calories != nil && *in.Calories < 0 {
		return time.Time{}, apperrors.NewValidationError("burned calories cannot be negative")
	}
	date, err := utils.ParseDate(in.Date)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("date must be in YYYY-MM-DD format")
	}
	return date, nil
}

// Add records an activity for a user. Entries are immutable for their
// owner once created.
func (s *ActivityService) Add(ctx context.Context, userID uint, in ActivityInput) (*database.Activity, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}
	activity := &database.Activity{
		UserID:      userID,
		Type:        in.Type,
		DurationMin: in.DurationMin,
		Calories:    in.Calories,
		Date:        date,
	}
	if err := s.db.WithContext(ctx).Create(activity).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return activity, nil
}

// List returns a user's activities, most recent date first.
func (s *ActivityService) List(ctx context.Context, userID uint) ([]database.Activity, error) {
	var activities []database.Activity
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&activities).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return activities, nil
}

// Delete removes one of the user's own activities.
func (s *ActivityService) Delete(ctx context.Context, userID, activityID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", activityID, userID).
		Delete(&database.Activity{})
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

// AdminUpdate edits any user's activity. Regular users cannot edit
// activities at all, so there is no owner variant.
func (s *ActivityService) AdminUpdate(ctx context.Context, activityID uint, in ActivityInput) (*database.Activity, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}
	var activity database.Activity
	if err := s.db.WithContext(ctx).First(&activity, activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	activity.Type = in.Type
	activity.DurationMin = in.DurationMin
	activity.Calories = in.Calories
	activity.Date = date
	if err := s.db.WithContext(ctx).Save(&activity).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &activity, nil
}

// BurnedToday sums the calories burned by activities dated today.
func (s *ActivityService) BurnedToday(ctx context.Context, userID uint) (int, error) {
	today := utils.Today()
	var total *int
	err := s.db.WithContext(ctx).
		Model(&database.Activity{}).
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
