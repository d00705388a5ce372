package database

import (
	"time"

	"gorm.io/gorm"
)

// User is an account plus the body-metric profile attached to it. The
// profile fields are nullable: a profile is complete only when age,
// weight, height and sex are all present, and most of the API is gated
// on completeness.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	FirstName    string
	LastName     string
	IsStaff      bool `gorm:"default:false"`

	Age      *int
	WeightKg *float64
	HeightCm *float64
	Sex      *string // "M", "F" or "O"
}

// ProfileComplete reports whether all body metrics are set.
func (u *User) ProfileComplete() bool {
	return u.Age != nil && u.WeightKg != nil && u.HeightCm != nil && u.Sex != nil
}

// Activity is a logged physical activity. Immutable for the owner once
// created; only admins edit them.
type Activity struct {
	gorm.Model
	UserID      uint `gorm:"index"`
	User        User
	Type        string // walk, run, bike, gym, other
	DurationMin int
	Calories    *int // burned, optional
	Date        time.Time
}

// Meal is a logged meal. Unlike activities, meals support full update.
type Meal struct {
	gorm.Model
	UserID   uint `gorm:"index"`
	User     User
	Name     string
	Calories int
	Slot     string // breakfast, lunch, dinner, snack
	Date     time.Time
}

// WeightGoal stores a goal together with the caloric plan derived at
// creation time. At most one goal per user is active; creating a new one
// archives the rest, and archiving is terminal.
type WeightGoal struct {
	gorm.Model
	UserID          uint `gorm:"index"`
	User            User
	CurrentWeightKg float64
	TargetWeightKg  float64
	StartDate       time.Time
	TargetDate      time.Time
	ActivityLevel   string
	Active          bool `gorm:"default:true"`

	// Derived plan, persisted for history.
	BMR         float64
	TDEE        float64
	DailyDelta  float64
	DailyTarget float64
}

// EventRequest lifecycle states.
const (
	EventStatusPending  = "pending"
	EventStatusApproved = "approved"
	EventStatusRejected = "rejected"
)

// EventRequest is a public event submission moderated by staff. Approved
// requests become the locally-curated event feed. Coordinates are kept
// as the submitted strings; normalization to numeric form happens at the
// aggregation boundary.
type EventRequest struct {
	gorm.Model
	TrackingCode string `gorm:"uniqueIndex"`

	ContactName  string
	ContactEmail string
	ContactPhone string
	CompanyName  string

	EventName   string
	Description string
	StartsAt    time.Time
	EndsAt      *time.Time
	Category    string // sports, cultural, health, recreational, educational, other
	TicketType  string // free, paid
	Price       *float64
	EventURL    string
	ImageURL    string

	Address   string
	City      string
	Latitude  string
	Longitude string

	Status        string `gorm:"default:pending;index"`
	RespondedAt   *time.Time
	RespondedByID *uint
	RespondedBy   *User
	AdminComments string
}
