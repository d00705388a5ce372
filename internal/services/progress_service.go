package services

import (
	"context"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/metabolic"
	"gorm.io/gorm"
)

// ProgressService reports how the logged history tracks against the
// active goal's plan.
type ProgressService struct {
	db    *gorm.DB
	goals *GoalService
}

func NewProgressService(db *gorm.DB, goals *GoalService) *ProgressService {
	return &ProgressService{db: db, goals: goals}
}

// Progress is the full progress report for the active goal.
type Progress struct {
	Goal      GoalView            `json:"goal"`
	Deviation metabolic.Deviation `json:"deviation"`
}

// Report computes the cumulative deviation between the logged net intake
// and the active goal's plan. The history is filtered to entries dated
// on or after the goal's start date.
func (s *ProgressService) Report(ctx context.Context, userID uint) (*Progress, error) {
	view, err := s.goals.Active(ctx, userID)
	if err != nil {
		return nil, err
	}

	var meals []database.Meal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, view.Goal.StartDate).
		Find(&meals).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	var activities []database.Activity
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, view.Goal.StartDate).
		Find(&activities).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	mealEntries := make([]metabolic.CalorieEntry, 0, len(meals))
	for _, m := range meals {
		mealEntries = append(mealEntries, metabolic.CalorieEntry{Date: m.Date, Calories: float64(m.Calories)})
	}
	activityEntries := make([]metabolic.CalorieEntry, 0, len(activities))
	for _, a := range activities {
		if a.Calories == nil {
			continue
		}
		activityEntries = append(activityEntries, metabolic.CalorieEntry{Date: a.Date, Calories: float64(*a.Calories)})
	}

	deviation := metabolic.AnalyzeDeviation(
		view.Goal.DailyTarget,
		view.TotalDays,
		view.DaysRemaining,
		view.Goal.StartDate,
		mealEntries,
		activityEntries,
	)

	return &Progress{Goal: *view, Deviation: deviation}, nil
}
