package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/database"
	"github.com/rmsalud/salud-api/internal/geo"
	"github.com/rmsalud/salud-api/internal/logger"
	"github.com/rmsalud/salud-api/internal/mapagg"
	"gorm.io/gorm"
)

// Event categories accepted on submission.
var eventCategories = map[string]bool{
	"sports":       true,
	"cultural":     true,
	"health":       true,
	"recreational": true,
	"educational":  true,
	"other":        true,
}

// Notifier delivers moderation decisions to the submitter. The API
// works without outbound mail, so the default implementation only logs.
type Notifier interface {
	EventDecision(ctx context.Context, req *database.EventRequest)
}

// LogNotifier writes decision notifications to the application log
// instead of sending them.
type LogNotifier struct{}

func (LogNotifier) EventDecision(_ context.Context, req *database.EventRequest) {
	logger.WithFields(
		"tracking_code", req.TrackingCode,
		"status", req.Status,
		"contact_email", req.ContactEmail,
	).Info("Event decision notification")
}

type EventService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewEventService(db *gorm.DB, notifier Notifier) *EventService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &EventService{db: db, notifier: notifier}
}

// EventSubmission is a public event proposal.
type EventSubmission struct {
	ContactName  string
	ContactEmail string
	ContactPhone string
	CompanyName  string

	EventName   string
	Description string
	StartsAt    time.Time
	EndsAt      *time.Time
	Category    string
	TicketType  string
	Price       *float64
	EventURL    string
	ImageURL    string

	Address   string
	City      string
	Latitude  string
	Longitude string
}

func (in EventSubmission) validate() error {
	switch {
	case strings.TrimSpace(in.ContactName) == "":
		return apperrors.NewValidationError("contact name is required")
	case !strings.Contains(in.ContactEmail, "@"):
		return apperrors.NewValidationError("a valid contact email is required")
	case strings.TrimSpace(in.EventName) == "":
		return apperrors.NewValidationError("event name is required")
	case in.StartsAt.IsZero():
		return apperrors.NewValidationError("event start date is required")
	case in.EndsAt != nil && in.EndsAt.Before(in.StartsAt):
		return apperrors.NewValidationError("event end date cannot be before the start date")
	case !eventCategories[in.Category]:
		return apperrors.NewValidationError("unknown event category")
	case in.TicketType != "free" && in.TicketType != "paid":
		return apperrors.NewValidationError("ticket type must be free or paid")
	case in.TicketType == "paid" && (in.Price == nil || *in.Price <= 0):
		return apperrors.NewValidationError("paid events require a positive price")
	case strings.TrimSpace(in.Address) == "":
		return apperrors.NewValidationError("event address is required")
	}
	if _, ok := mapagg.ParseCoord(in.Latitude); !ok {
		return apperrors.NewValidationError("latitude must be a valid coordinate")
	}
	if _, ok := mapagg.ParseCoord(in.Longitude); !ok {
		return apperrors.NewValidationError("longitude must be a valid coordinate")
	}
	return nil
}

// Submit stores a pending event request and returns it with the tracking
// code the submitter uses to check its status.
func (s *EventService) Submit(ctx context.Context, in EventSubmission) (*database.EventRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	req := &database.EventRequest{
		TrackingCode: uuid.NewString(),
		ContactName:  strings.TrimSpace(in.ContactName),
		ContactEmail: strings.ToLower(strings.TrimSpace(in.ContactEmail)),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		CompanyName:  strings.TrimSpace(in.CompanyName),
		EventName:    strings.TrimSpace(in.EventName),
		Description:  strings.TrimSpace(in.Description),
		StartsAt:     in.StartsAt,
		EndsAt:       in.EndsAt,
		Category:     in.Category,
		TicketType:   in.TicketType,
		Price:        in.Price,
		EventURL:     strings.TrimSpace(in.EventURL),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		Latitude:     strings.TrimSpace(in.Latitude),
		Longitude:    strings.TrimSpace(in.Longitude),
		Status:       database.EventStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return req, nil
}

// StatusByCode is the public status lookup. It intentionally exposes the
// moderation outcome and admin comments, nothing about other requests.
func (s *EventService) StatusByCode(ctx context.Context, code string) (*database.EventRequest, error) {
	var req database.EventRequest
	err := s.db.WithContext(ctx).Where("tracking_code = ?", strings.TrimSpace(code)).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &req, nil
}

// Approved returns approved events starting within the next windowDays
// and, when a viewer coordinate is given, within radiusKm of it. Records
// whose stored coordinates do not parse are skipped.
func (s *EventService) Approved(ctx context.Context, lat, lng, radiusKm float64, windowDays int) ([]database.EventRequest, error) {
	now := time.Now()
	query := s.db.WithContext(ctx).
		Where("status = ? AND starts_at >= ?", database.EventStatusApproved, now).
		Order("starts_at ASC")
	if windowDays > 0 {
		query = query.Where("starts_at < ?", now.AddDate(0, 0, windowDays))
	}
	var events []database.EventRequest
	if err := query.Find(&events).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	if radiusKm <= 0 {
		return events, nil
	}
	filtered := events[:0]
	for _, ev := range events {
		evLat, okLat := mapagg.ParseCoord(ev.Latitude)
		evLng, okLng := mapagg.ParseCoord(ev.Longitude)
		if !okLat || !okLng {
			continue
		}
		if geo.DistanceKm(lat, lng, evLat, evLng) <= radiusKm {
			filtered = append(filtered, ev)
		}
	}
	return filtered, nil
}

// AdminList returns requests for the moderation screen, optionally
// narrowed to a status and matched against name/email/company.
func (s *EventService) AdminList(ctx context.Context, status, search string) ([]database.EventRequest, error) {
	query := s.db.WithContext(ctx).Model(&database.EventRequest{}).Order("created_at DESC")
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(event_name) LIKE ? OR LOWER(contact_name) LIKE ? OR LOWER(contact_email) LIKE ? OR LOWER(company_name) LIKE ?",
			like, like, like, like,
		)
	}
	var requests []database.EventRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return requests, nil
}

// AdminGet loads one request with its responder.
func (s *EventService) AdminGet(ctx context.Context, id uint) (*database.EventRequest, error) {
	var req database.EventRequest
	err := s.db.WithContext(ctx).Preload("RespondedBy").First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &req, nil
}

// AdminUpdate edits a submission's event and venue fields, typically to
// fix typos or coordinates before approving. The moderation state is not
// touched here.
func (s *EventService) AdminUpdate(ctx context.Context, id uint, in EventSubmission) (*database.EventRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	req, err := s.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}

	req.ContactName = strings.TrimSpace(in.ContactName)
	req.ContactEmail = strings.ToLower(strings.TrimSpace(in.ContactEmail))
	req.ContactPhone = strings.TrimSpace(in.ContactPhone)
	req.CompanyName = strings.TrimSpace(in.CompanyName)
	req.EventName = strings.TrimSpace(in.EventName)
	req.Description = strings.TrimSpace(in.Description)
	req.StartsAt = in.StartsAt
	req.EndsAt = in.EndsAt
	req.Category = in.Category
	req.TicketType = in.TicketType
	req.Price = in.Price
	req.EventURL = strings.TrimSpace(in.EventURL)
	req.ImageURL = strings.TrimSpace(in.ImageURL)
	req.Address = strings.TrimSpace(in.Address)
	req.City = strings.TrimSpace(in.City)
	req.Latitude = strings.TrimSpace(in.Latitude)
	req.Longitude = strings.TrimSpace(in.Longitude)

	if err := s.db.WithContext(ctx).Save(req).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return req, nil
}

// Approve marks a pending request approved. Decisions are final: a
// request that already has one cannot be decided again.
func (s *EventService) Approve(ctx context.Context, adminID, id uint, comments string) (*database.EventRequest, error) {
	return s.decide(ctx, adminID, id, database.EventStatusApproved, comments)
}

// Reject marks a pending request rejected. Comments are mandatory so the
// submitter learns why.
func (s *EventService) Reject(ctx context.Context, adminID, id uint, comments string) (*database.EventRequest, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, apperrors.NewValidationError("rejection comments are required")
	}
	return s.decide(ctx, adminID, id, database.EventStatusRejected, comments)
}

func (s *EventService) decide(ctx context.Context, adminID, id uint, status, comments string) (*database.EventRequest, error) {
	req, err := s.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != database.EventStatusPending {
		return nil, apperrors.ErrAlreadyProcessed
	}

	now := time.Now()
	req.Status = status
	req.RespondedAt = &now
	req.RespondedByID = &adminID
	req.AdminComments = strings.TrimSpace(comments)

	if err := s.db.WithContext(ctx).Save(req).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	s.notifier.EventDecision(ctx, req)
	return req, nil
}

// AdminDelete removes a request entirely.
func (s *EventService) AdminDelete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&database.EventRequest{}, id)
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

// EventStats summarizes the moderation queue.
type EventStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// Stats counts requests per status.
func (s *EventService) Stats(ctx context.Context) (*EventStats, error) {
	var stats EventStats
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&database.EventRequest{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	for _, r := range rows {
		stats.Total += r.N
		switch r.Status {
		case database.EventStatusPending:
			stats.Pending = r.N
		case database.EventStatusApproved:
			stats.Approved = r.N
		case database.EventStatusRejected:
			stats.Rejected = r.N
		}
	}
	return &stats, nil
}
