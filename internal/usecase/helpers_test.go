package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository/mocks"
	"clinic-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2030, 5, 5, 9, 0, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testRules() BookingRules {
	return BookingRules{
		MinDuration: 15 * time.Minute,
		MaxDuration: 240 * time.Minute,
		Location:    time.UTC,
		Now:         func() time.Time { return testNow },
	}
}

// newAuditService returns a real audit service over a repository that
// accepts every write.
func newAuditService() (service.AuditService, *mocks.AuditLogRepository) {
	repo := new(mocks.AuditLogRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	return service.NewAuditService(testLogger(), repo), repo
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []service.NotificationEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event service.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []service.NotificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.NotificationEvent(nil), p.events...)
}

func adminActor() entity.Actor {
	return entity.Actor{ID: uuid.New(), RoleID: entity.RoleIDAdmin}
}

func therapistActor(id uuid.UUID) entity.Actor {
	return entity.Actor{ID: id, RoleID: entity.RoleIDTherapist}
}

func guardianActor() entity.Actor {
	return entity.Actor{ID: uuid.New(), RoleID: entity.RoleIDGuardian}
}

func strPtr(s string) *string {
	return &s
}
