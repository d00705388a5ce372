package services

import (
	"context"
	"errors"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/metabolic"
	"github.com/rmsalud/salud-api/internal/utils"
	"gorm.io/gorm"
)

type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

// GoalInput is a new weight-goal request.
type GoalInput struct {
	CurrentWeightKg float64
	TargetWeightKg  float64
	TargetDate      string // YYYY-MM-DD
	ActivityLevel   string
}

// GoalView is a stored goal enriched with the time-dependent fields the
// client renders. DaysRemaining and Pace are derived on every read, so a
// stale goal never shows stale numbers.
type GoalView struct {
	Goal          database.WeightGoal `json:"goal"`
	GoalType      metabolic.GoalType  `json:"goal_type"`
	TotalDays     int                 `json:"total_days"`
	DaysRemaining int                 `json:"days_remaining"`
	Pace          metabolic.Pace      `json:"pace"`
	Advisory      string              `json:"advisory,omitempty"`
}

func buildView(goal database.WeightGoal) GoalView {
	goalType := metabolic.GoalLoss
	if goal.TargetWeightKg > goal.CurrentWeightKg {
		goalType = metabolic.GoalGain
	}
	remaining := utils.DaysBetween(utils.Today(), goal.TargetDate)
	if remaining < 0 {
		remaining = 0
	}
	pace := metabolic.ClassifyPace(goal.DailyDelta)
	return GoalView{
		Goal:          goal,
		GoalType:      goalType,
		TotalDays:     utils.DaysBetween(goal.StartDate, goal.TargetDate),
		DaysRemaining: remaining,
		Pace:          pace,
		Advisory:      pace.Advisory(),
	}
}

// Create derives a caloric plan for the request and stores it as the
// user's active goal. Any previously active goals are archived in the
// same transaction, so exactly one goal is ever active.
func (s *GoalService) Create(ctx context.Context, userID uint, in GoalInput) (*GoalView, error) {
	targetDate, err := utils.ParseDate(in.TargetDate)
	if err != nil {
		return nil, apperrors.NewValidationError("target date must be in YYYY-MM-DD format")
	}

	var user database.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	plan, err := metabolic.ComputePlan(metabolic.PlanInput{
		CurrentWeightKg: in.CurrentWeightKg,
		TargetWeightKg:  in.TargetWeightKg,
		TargetDate:      targetDate,
		ActivityLevel:   metabolic.ActivityLevel(in.ActivityLevel),
	}, MetabolicProfile(&user))
	if err != nil {
		return nil, err
	}

	goal := database.WeightGoal{
		UserID:          userID,
		CurrentWeightKg: in.CurrentWeightKg,
		TargetWeightKg:  in.TargetWeightKg,
		StartDate:       utils.Today(),
		TargetDate:      targetDate,
		ActivityLevel:   in.ActivityLevel,
		Active:          true,
		BMR:             plan.BMR,
		TDEE:            plan.TDEE,
		DailyDelta:      plan.DailyDelta,
		DailyTarget:     plan.DailyTarget,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.WeightGoal{}).
			Where("user_id = ? AND active = ?", userID, true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&goal).Error
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	view := buildView(goal)
	return &view, nil
}

// Active returns the user's active goal with derived fields.
func (s *GoalService) Active(ctx context.Context, userID uint) (*GoalView, error) {
	var goal database.WeightGoal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("created_at DESC").
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoActiveGoal
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	view := buildView(goal)
	return &view, nil
}

// List returns the user's goal history, newest first.
func (s *GoalService) List(ctx context.Context, userID uint) ([]GoalView, error) {
	var goals []database.WeightGoal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	views := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, buildView(g))
	}
	return views, nil
}

// Get returns one of the user's goals by ID with derived fields.
func (s *GoalService) Get(ctx context.Context, userID, goalID uint) (*GoalView, error) {
	var goal database.WeightGoal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	view := buildView(goal)
	return &view, nil
}

// Archive deactivates one of the user's goals. Archiving is terminal;
// a goal is never reactivated, a new one is created instead.
func (s *GoalService) Archive(ctx context.Context, userID, goalID uint) error {
	result := s.db.WithContext(ctx).
		Model(&database.WeightGoal{}).
		Where("id = ? AND user_id = ? AND active = ?", goalID, userID, true).
		Update("active", false)
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}
