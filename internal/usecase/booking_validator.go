package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/infrastructure/metrics"
	"clinic-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidStartTime     = errors.New("invalid start time")
	ErrInvalidEndTime       = errors.New("invalid end time")
	ErrEndBeforeStart       = errors.New("end time must be after start time")
	ErrStartInPast          = errors.New("cannot create a booking in the past")
	ErrDurationTooShort     = errors.New("booking duration is below the minimum")
	ErrDurationTooLong      = errors.New("booking duration exceeds the maximum")
	ErrRoomNotFound         = errors.New("room not found")
	ErrTherapistNotFound    = errors.New("therapist not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrNoActiveRelationship = errors.New("no active relationship between client and therapist")
	ErrRoomConflict         = errors.New("room already booked")
	ErrTherapistConflict    = errors.New("therapist already booked")
	ErrClientConflict       = errors.New("client already booked")
	ErrOutsideBusinessHours = errors.New("booking is outside the room's business hours")
)

// Rule names reported in ValidationError.Rule.
const (
	RuleStartTime     = "start_time"
	RuleEndTime       = "end_time"
	RuleTimeOrder     = "time_order"
	RuleStartInPast   = "start_in_past"
	RuleDuration      = "duration"
	RuleRoom          = "room"
	RuleTherapist     = "therapist"
	RuleClient        = "client"
	RuleRelationship  = "relationship"
	RuleRoomConflict  = "room_conflict"
	RuleTherapistBusy = "therapist_conflict"
	RuleClientBusy    = "client_conflict"
	RuleBusinessHours = "business_hours"
)

// ValidationError names the first booking rule that failed. Its message is
// the business reason returned to the caller.
type ValidationError struct {
	Rule string
	Err  error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsConflict is true for the exclusivity rules.
func (e *ValidationError) IsConflict() bool {
	switch e.Rule {
	case RuleRoomConflict, RuleTherapistBusy, RuleClientBusy:
		return true
	}
	return false
}

// BookingInput is the candidate booking on the create path.
type BookingInput struct {
	StartTime   string
	EndTime     string
	RoomID      uuid.UUID
	TherapistID uuid.UUID
	ClientID    *uuid.UUID
}

// BookingPatch holds the update fields; nil keeps the stored value.
type BookingPatch struct {
	StartTime *string
	EndTime   *string
	RoomID    *uuid.UUID
}

// ValidatedBooking is the parsed interval and resolved room of an accepted input.
type ValidatedBooking struct {
	Start  time.Time
	End    time.Time
	RoomID uuid.UUID
	Room   *entity.Room
}

type BookingValidator interface {
	ValidateForCreate(ctx context.Context, db *gorm.DB, input BookingInput) (*ValidatedBooking, error)
	ValidateForUpdate(ctx context.Context, db *gorm.DB, existing *entity.Booking, patch BookingPatch) (*ValidatedBooking, error)
}

type BookingRules struct {
	MinDuration time.Duration
	MaxDuration time.Duration
	Location    *time.Location
	Now         func() time.Time
}

type bookingValidator struct {
	log                  *logrus.Logger
	roomRepo             repository.RoomRepository
	therapistProfileRepo repository.TherapistProfileRepository
	clientRepo           repository.ClientRepository
	relationshipRepo     repository.ClientTherapistRepository
	availability         service.AvailabilityChecker
	rules                BookingRules
}

func NewBookingValidator(
	log *logrus.Logger,
	roomRepo repository.RoomRepository,
	therapistProfileRepo repository.TherapistProfileRepository,
	clientRepo repository.ClientRepository,
	relationshipRepo repository.ClientTherapistRepository,
	availability service.AvailabilityChecker,
	rules BookingRules,
) BookingValidator {
	if rules.MinDuration <= 0 {
		rules.MinDuration = 15 * time.Minute
	}
	if rules.MaxDuration <= 0 {
		rules.MaxDuration = 240 * time.Minute
	}
	if rules.Location == nil {
		rules.Location = time.Local
	}
	if rules.Now == nil {
		rules.Now = time.Now
	}
	return &bookingValidator{
		log:                  log,
		roomRepo:             roomRepo,
		therapistProfileRepo: therapistProfileRepo,
		clientRepo:           clientRepo,
		relationshipRepo:     relationshipRepo,
		availability:         availability,
		rules:                rules,
	}
}

// ValidateForCreate runs the referential and temporal checks first, then the
// three conflict probes, then the business-hours fit.
func (v *bookingValidator) ValidateForCreate(ctx context.Context, db *gorm.DB, input BookingInput) (*ValidatedBooking, error) {
	start, end, err := v.parseInterval(input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}

	if start.Before(v.rules.Now()) {
		return nil, v.fail(RuleStartInPast, ErrStartInPast)
	}

	if err := v.checkDuration(start, end); err != nil {
		return nil, err
	}

	room, err := v.findRoom(db, input.RoomID)
	if err != nil {
		return nil, err
	}

	profile, err := v.therapistProfileRepo.FindByUserID(db, input.TherapistID)
	if err != nil {
		v.log.Warnf("Failed to find therapist %s: %+v", input.TherapistID, err)
		return nil, err
	}
	if profile == nil {
		return nil, v.fail(RuleTherapist, ErrTherapistNotFound)
	}

	if input.ClientID != nil {
		if err := v.checkClient(db, *input.ClientID, input.TherapistID); err != nil {
			return nil, err
		}
	}

	if v.availability.HasConflict(ctx, db, entity.AxisRoom, input.RoomID, start, end, nil) {
		return nil, v.fail(RuleRoomConflict, ErrRoomConflict)
	}
	if v.availability.HasConflict(ctx, db, entity.AxisTherapist, input.TherapistID, start, end, nil) {
		return nil, v.fail(RuleTherapistBusy, ErrTherapistConflict)
	}
	if input.ClientID != nil && v.availability.HasConflict(ctx, db, entity.AxisClient, *input.ClientID, start, end, nil) {
		return nil, v.fail(RuleClientBusy, ErrClientConflict)
	}

	if err := v.checkBusinessHours(room, start, end); err != nil {
		return nil, err
	}

	return &ValidatedBooking{Start: start, End: end, RoomID: room.ID, Room: room}, nil
}

// ValidateForUpdate merges the patch over the stored booking and re-checks the
// interval, the room and the room axis only. The booking itself is excluded
// from the probe.
func (v *bookingValidator) ValidateForUpdate(ctx context.Context, db *gorm.DB, existing *entity.Booking, patch BookingPatch) (*ValidatedBooking, error) {
	start, end := existing.StartTime, existing.EndTime
	if patch.StartTime != nil {
		parsed, err := v.parseInstant(*patch.StartTime)
		if err != nil {
			return nil, v.fail(RuleStartTime, ErrInvalidStartTime)
		}
		start = parsed
	}
	if patch.EndTime != nil {
		parsed, err := v.parseInstant(*patch.EndTime)
		if err != nil {
			return nil, v.fail(RuleEndTime, ErrInvalidEndTime)
		}
		end = parsed
	}

	if !end.After(start) {
		return nil, v.fail(RuleTimeOrder, ErrEndBeforeStart)
	}

	if err := v.checkDuration(start, end); err != nil {
		return nil, err
	}

	roomID := existing.RoomID
	var room *entity.Room
	if patch.RoomID != nil && *patch.RoomID != existing.RoomID {
		found, err := v.findRoom(db, *patch.RoomID)
		if err != nil {
			return nil, err
		}
		room = found
		roomID = found.ID
	}

	excludeID := existing.ID
	if v.availability.HasConflict(ctx, db, entity.AxisRoom, roomID, start, end, &excludeID) {
		return nil, v.fail(RuleRoomConflict, ErrRoomConflict)
	}

	return &ValidatedBooking{Start: start, End: end, RoomID: roomID, Room: room}, nil
}

func (v *bookingValidator) parseInterval(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := v.parseInstant(rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, v.fail(RuleStartTime, ErrInvalidStartTime)
	}
	end, err := v.parseInstant(rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, v.fail(RuleEndTime, ErrInvalidEndTime)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, v.fail(RuleTimeOrder, ErrEndBeforeStart)
	}
	return start, end, nil
}

// instantLayouts without a zone are read in the clinic's timezone.
var instantLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func (v *bookingValidator) parseInstant(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty time")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, raw, v.rules.Location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", raw)
}

func (v *bookingValidator) checkDuration(start, end time.Time) error {
	duration := end.Sub(start)
	if duration < v.rules.MinDuration {
		return v.fail(RuleDuration, fmt.Errorf("%w (%d minutes)", ErrDurationTooShort, int(v.rules.MinDuration.Minutes())))
	}
	if duration > v.rules.MaxDuration {
		return v.fail(RuleDuration, fmt.Errorf("%w (%d minutes)", ErrDurationTooLong, int(v.rules.MaxDuration.Minutes())))
	}
	return nil
}

func (v *bookingValidator) findRoom(db *gorm.DB, roomID uuid.UUID) (*entity.Room, error) {
	room, err := v.roomRepo.FindByID(db, roomID)
	if err != nil {
		v.log.Warnf("Failed to find room %s: %+v", roomID, err)
		return nil, err
	}
	if room == nil {
		return nil, v.fail(RuleRoom, ErrRoomNotFound)
	}
	return room, nil
}

func (v *bookingValidator) checkClient(db *gorm.DB, clientID, therapistID uuid.UUID) error {
	client, err := v.clientRepo.FindByID(db, clientID)
	if err != nil {
		v.log.Warnf("Failed to find client %s: %+v", clientID, err)
		return err
	}
	if client == nil {
		return v.fail(RuleClient, ErrClientNotFound)
	}

	relationship, err := v.relationshipRepo.FindActive(db, clientID, therapistID)
	if err != nil {
		v.log.Warnf("Failed to find relationship client=%s therapist=%s: %+v", clientID, therapistID, err)
		return err
	}
	if relationship == nil {
		return v.fail(RuleRelationship, ErrNoActiveRelationship)
	}
	return nil
}

func (v *bookingValidator) checkBusinessHours(room *entity.Room, start, end time.Time) error {
	if !room.HasBusinessHours() {
		return nil
	}
	localStart, localEnd := start.In(v.rules.Location), end.In(v.rules.Location)
	// Opening hours describe a single day, so a booking crossing midnight never fits.
	if !sameDay(localStart, localEnd) || !room.WithinBusinessHours(localStart.Format("15:04"), localEnd.Format("15:04")) {
		return v.fail(RuleBusinessHours, fmt.Errorf("%w (%s-%s)", ErrOutsideBusinessHours, *room.OpeningTime, *room.ClosingTime))
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (v *bookingValidator) fail(rule string, err error) error {
	metrics.IncValidationFailure(rule)
	return &ValidationError{Rule: rule, Err: err}
}
