package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownNotificationType = errors.New("unknown notification type")

const (
	sessionDateLayout = "Monday, 02 Jan 2006 at 15:04"
	sessionTimeLayout = "15:04"
)

// NotificationDispatcher writes one Notification per guardian of the booked
// client. Bookings without a client or without guardians produce nothing.
type NotificationDispatcher interface {
	NotifyCreated(ctx context.Context, bookingID uuid.UUID) error
	NotifyUpdated(ctx context.Context, bookingID uuid.UUID) error
	NotifyCancelled(ctx context.Context, snapshot *BookingSnapshot) error
	NotifyReminder(ctx context.Context, bookingID uuid.UUID) error
	// SweepReminders notifies every CONFIRMED booking starting tomorrow and
	// returns how many bookings were reminded.
	SweepReminders(ctx context.Context) (int, error)
	Handle(ctx context.Context, event NotificationEvent) error
}

type DispatcherOptions struct {
	Location            *time.Location
	ReminderConcurrency int
	Now                 func() time.Time
}

type notificationDispatcher struct {
	transactor       repository.Transactor
	log              *logrus.Logger
	bookingRepo      repository.BookingRepository
	notificationRepo repository.NotificationRepository
	loc              *time.Location
	concurrency      int
	now              func() time.Time
}

func NewNotificationDispatcher(
	transactor repository.Transactor,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	notificationRepo repository.NotificationRepository,
	opts DispatcherOptions,
) NotificationDispatcher {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ReminderConcurrency <= 0 {
		opts.ReminderConcurrency = 4
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &notificationDispatcher{
		transactor:       transactor,
		log:              log,
		bookingRepo:      bookingRepo,
		notificationRepo: notificationRepo,
		loc:              opts.Location,
		concurrency:      opts.ReminderConcurrency,
		now:              opts.Now,
	}
}

func (d *notificationDispatcher) NotifyCreated(ctx context.Context, bookingID uuid.UUID) error {
	return d.notifyStored(ctx, entity.NotificationBookingCreated, bookingID)
}

func (d *notificationDispatcher) NotifyUpdated(ctx context.Context, bookingID uuid.UUID) error {
	return d.notifyStored(ctx, entity.NotificationBookingUpdated, bookingID)
}

func (d *notificationDispatcher) NotifyReminder(ctx context.Context, bookingID uuid.UUID) error {
	return d.notifyStored(ctx, entity.NotificationBookingReminder, bookingID)
}

// NotifyCancelled works from a snapshot because the booking row is deleted
// right after the event is published. Notifications keep the booking id in
// metadata only.
func (d *notificationDispatcher) NotifyCancelled(ctx context.Context, snapshot *BookingSnapshot) error {
	if snapshot == nil {
		return nil
	}
	return d.fanOut(ctx, entity.NotificationBookingCancelled, snapshot, false)
}

func (d *notificationDispatcher) Handle(ctx context.Context, event NotificationEvent) error {
	switch event.Type {
	case entity.NotificationBookingCreated:
		return d.NotifyCreated(ctx, event.BookingID)
	case entity.NotificationBookingUpdated:
		return d.NotifyUpdated(ctx, event.BookingID)
	case entity.NotificationBookingReminder:
		return d.NotifyReminder(ctx, event.BookingID)
	case entity.NotificationBookingCancelled:
		if event.Snapshot != nil {
			return d.NotifyCancelled(ctx, event.Snapshot)
		}
		booking, err := d.bookingRepo.FindByIDWithParticipants(d.transactor.Conn(ctx), event.BookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			d.log.WithField("booking_id", event.BookingID).Warn("Cancelled booking has no snapshot and no longer exists")
			return nil
		}
		return d.NotifyCancelled(ctx, NewBookingSnapshot(booking))
	}
	return fmt.Errorf("%w: %s", ErrUnknownNotificationType, event.Type)
}

func (d *notificationDispatcher) SweepReminders(ctx context.Context) (int, error) {
	started := time.Now()
	defer func() {
		metrics.ObserveReminderSweep(time.Since(started).Seconds())
	}()

	now := d.now().In(d.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, d.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	bookings, err := d.bookingRepo.FindByStatusStartingBetween(d.transactor.Conn(ctx), entity.BookingStatusConfirmed, dayStart, dayEnd)
	if err != nil {
		d.log.Warnf("Failed to find bookings for reminders: %+v", err)
		return 0, err
	}

	var reminded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, booking := range bookings {
		bookingID := booking.ID
		g.Go(func() error {
			if err := d.NotifyReminder(gctx, bookingID); err != nil {
				metrics.IncNotificationFailure("reminder")
				d.log.WithField("booking_id", bookingID).Warnf("Failed to send reminder: %+v", err)
				return nil
			}
			reminded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	d.log.WithFields(logrus.Fields{
		"day":      dayStart.Format("2006-01-02"),
		"found":    len(bookings),
		"reminded": reminded.Load(),
	}).Info("Reminder sweep finished")

	return int(reminded.Load()), nil
}

func (d *notificationDispatcher) notifyStored(ctx context.Context, notificationType entity.NotificationType, bookingID uuid.UUID) error {
	booking, err := d.bookingRepo.FindByIDWithParticipants(d.transactor.Conn(ctx), bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		d.log.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"type":       notificationType,
		}).Warn("Booking not found for notification")
		return nil
	}
	return d.fanOut(ctx, notificationType, NewBookingSnapshot(booking), true)
}

func (d *notificationDispatcher) fanOut(ctx context.Context, notificationType entity.NotificationType, snapshot *BookingSnapshot, linkBooking bool) error {
	if snapshot.ClientID == nil || len(snapshot.GuardianIDs) == 0 {
		return nil
	}

	title, message := d.compose(notificationType, snapshot)
	metadata := d.metadata(snapshot)

	var bookingRef *uuid.UUID
	if linkBooking {
		id := snapshot.BookingID
		bookingRef = &id
	}
	clientID := *snapshot.ClientID
	therapistID := snapshot.TherapistID

	notifications := make([]entity.Notification, 0, len(snapshot.GuardianIDs))
	for _, guardianID := range snapshot.GuardianIDs {
		notifications = append(notifications, entity.Notification{
			GuardianID:  guardianID,
			BookingID:   bookingRef,
			ClientID:    &clientID,
			TherapistID: &therapistID,
			Type:        notificationType,
			Priority:    notificationType.Priority(),
			Title:       title,
			Message:     message,
			Metadata:    metadata,
		})
	}

	if err := d.notificationRepo.CreateBatch(d.transactor.Conn(ctx), notifications); err != nil {
		return err
	}

	metrics.AddNotificationsCreated(string(notificationType), len(notifications))
	return nil
}

func (d *notificationDispatcher) compose(notificationType entity.NotificationType, s *BookingSnapshot) (string, string) {
	when := s.StartTime.In(d.loc).Format(sessionDateLayout)
	until := s.EndTime.In(d.loc).Format(sessionTimeLayout)

	switch notificationType {
	case entity.NotificationBookingCreated:
		return "New session scheduled",
			fmt.Sprintf("A session for %s with %s was scheduled for %s until %s in %s.", s.ClientName, s.TherapistName, when, until, s.RoomName)
	case entity.NotificationBookingUpdated:
		return "Session updated",
			fmt.Sprintf("The session for %s with %s now takes place on %s until %s in %s.", s.ClientName, s.TherapistName, when, until, s.RoomName)
	case entity.NotificationBookingCancelled:
		return "Session cancelled",
			fmt.Sprintf("The session for %s with %s on %s in %s was cancelled.", s.ClientName, s.TherapistName, when, s.RoomName)
	case entity.NotificationBookingReminder:
		return "Session reminder",
			fmt.Sprintf("Reminder: %s has a session with %s tomorrow, %s until %s, in %s.", s.ClientName, s.TherapistName, when, until, s.RoomName)
	}
	return "Notification", s.Title
}

func (d *notificationDispatcher) metadata(s *BookingSnapshot) entity.JSON {
	return entity.JSON{
		"booking_id":     s.BookingID.String(),
		"booking_title":  s.Title,
		"session_date":   s.StartTime.In(d.loc).Format(time.RFC3339),
		"session_end":    s.EndTime.In(d.loc).Format(time.RFC3339),
		"room_name":      s.RoomName,
		"therapist_name": s.TherapistName,
		"client_name":    s.ClientName,
	}
}
