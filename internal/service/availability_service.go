package service

import (
	"context"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProbeErrorPolicy decides what a failed availability query means.
type ProbeErrorPolicy string

const (
	// ProbeFailOpen treats a failed probe as "no conflict".
	ProbeFailOpen ProbeErrorPolicy = "fail_open"
	// ProbeFailClosed treats a failed probe as a conflict on that axis.
	ProbeFailClosed ProbeErrorPolicy = "fail_closed"
)

// AvailabilityChecker answers whether a resource already holds an active
// booking overlapping [start, end). excludeID skips the booking being edited.
type AvailabilityChecker interface {
	HasConflict(ctx context.Context, db *gorm.DB, axis entity.ResourceAxis, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) bool
}

type availabilityChecker struct {
	log         *logrus.Logger
	bookingRepo repository.BookingRepository
	policy      ProbeErrorPolicy
}

func NewAvailabilityChecker(log *logrus.Logger, bookingRepo repository.BookingRepository, policy ProbeErrorPolicy) AvailabilityChecker {
	if policy != ProbeFailClosed {
		policy = ProbeFailOpen
	}
	return &availabilityChecker{
		log:         log,
		bookingRepo: bookingRepo,
		policy:      policy,
	}
}

func (c *availabilityChecker) HasConflict(ctx context.Context, db *gorm.DB, axis entity.ResourceAxis, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) bool {
	existing, err := c.bookingRepo.FindFirstOverlapping(db, axis, resourceID, start, end, excludeID)
	if err != nil {
		metrics.IncProbe(string(axis), "error")
		c.log.WithContext(ctx).WithFields(logrus.Fields{
			"axis":        axis,
			"resource_id": resourceID,
			"policy":      c.policy,
		}).Warnf("Availability probe failed: %+v", err)
		return c.policy == ProbeFailClosed
	}

	if existing == nil {
		metrics.IncProbe(string(axis), "free")
		return false
	}

	metrics.IncProbe(string(axis), "conflict")
	return true
}
