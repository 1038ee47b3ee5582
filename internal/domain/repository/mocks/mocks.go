// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// Transactor runs callbacks directly with a nil handle; repositories are
// mocked so the handle is never dereferenced.
type Transactor struct {
	Err error
}

func (t *Transactor) Conn(ctx context.Context) *gorm.DB {
	return nil
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := fn(nil); err != nil {
		return err
	}
	return t.Err
}

var _ repository.Transactor = (*Transactor)(nil)

type BookingRepository struct {
	mock.Mock
}

func (m *BookingRepository) Create(db *gorm.DB, booking *entity.Booking) error {
	args := m.Called(db, booking)
	return args.Error(0)
}

func (m *BookingRepository) Update(db *gorm.DB, booking *entity.Booking) error {
	args := m.Called(db, booking)
	return args.Error(0)
}

func (m *BookingRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from []entity.BookingStatus, to entity.BookingStatus) (int64, error) {
	args := m.Called(db, id, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BookingRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	args := m.Called(db, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BookingRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *BookingRepository) FindByIDWithParticipants(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *BookingRepository) FindAll(db *gorm.DB) ([]entity.Booking, error) {
	args := m.Called(db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Booking), args.Error(1)
}

func (m *BookingRepository) FindByTherapistID(db *gorm.DB, therapistID uuid.UUID) ([]entity.Booking, error) {
	args := m.Called(db, therapistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Booking), args.Error(1)
}

func (m *BookingRepository) FindFirstOverlapping(db *gorm.DB, axis entity.ResourceAxis, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*entity.Booking, error) {
	args := m.Called(db, axis, resourceID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *BookingRepository) FindByStatusStartingBetween(db *gorm.DB, status entity.BookingStatus, from, to time.Time) ([]entity.Booking, error) {
	args := m.Called(db, status, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Booking), args.Error(1)
}

func (m *BookingRepository) CountBlockingRoomDeletion(db *gorm.DB, roomID uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(db, roomID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BookingRepository) CountActiveByTherapist(db *gorm.DB, therapistID uuid.UUID) (int64, error) {
	args := m.Called(db, therapistID)
	return args.Get(0).(int64), args.Error(1)
}

type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) Create(db *gorm.DB, room *entity.Room) error {
	args := m.Called(db, room)
	return args.Error(0)
}

func (m *RoomRepository) Update(db *gorm.DB, room *entity.Room) error {
	args := m.Called(db, room)
	return args.Error(0)
}

func (m *RoomRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	args := m.Called(db, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RoomRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Room, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Room), args.Error(1)
}

func (m *RoomRepository) FindAll(db *gorm.DB) ([]entity.Room, error) {
	args := m.Called(db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Room), args.Error(1)
}

type TherapistProfileRepository struct {
	mock.Mock
}

func (m *TherapistProfileRepository) Create(db *gorm.DB, profile *entity.TherapistProfile) error {
	args := m.Called(db, profile)
	return args.Error(0)
}

func (m *TherapistProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.TherapistProfile, error) {
	args := m.Called(db, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TherapistProfile), args.Error(1)
}

func (m *TherapistProfileRepository) FindAll(db *gorm.DB) ([]entity.TherapistProfile, error) {
	args := m.Called(db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TherapistProfile), args.Error(1)
}

func (m *TherapistProfileRepository) Update(db *gorm.DB, profile *entity.TherapistProfile) error {
	args := m.Called(db, profile)
	return args.Error(0)
}

type ClientRepository struct {
	mock.Mock
}

func (m *ClientRepository) Create(db *gorm.DB, client *entity.Client) error {
	args := m.Called(db, client)
	return args.Error(0)
}

func (m *ClientRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Client, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Client), args.Error(1)
}

func (m *ClientRepository) FindAll(db *gorm.DB) ([]entity.Client, error) {
	args := m.Called(db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Client), args.Error(1)
}

func (m *ClientRepository) AddGuardian(db *gorm.DB, client *entity.Client, guardian *entity.Guardian) error {
	args := m.Called(db, client, guardian)
	return args.Error(0)
}

type GuardianRepository struct {
	mock.Mock
}

func (m *GuardianRepository) Create(db *gorm.DB, guardian *entity.Guardian) error {
	args := m.Called(db, guardian)
	return args.Error(0)
}

func (m *GuardianRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Guardian, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Guardian), args.Error(1)
}

func (m *GuardianRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Guardian, error) {
	args := m.Called(db, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Guardian), args.Error(1)
}

type ClientTherapistRepository struct {
	mock.Mock
}

func (m *ClientTherapistRepository) Create(db *gorm.DB, relationship *entity.ClientTherapist) error {
	args := m.Called(db, relationship)
	return args.Error(0)
}

func (m *ClientTherapistRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClientTherapist, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ClientTherapist), args.Error(1)
}

func (m *ClientTherapistRepository) FindActive(db *gorm.DB, clientID, therapistID uuid.UUID) (*entity.ClientTherapist, error) {
	args := m.Called(db, clientID, therapistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ClientTherapist), args.Error(1)
}

func (m *ClientTherapistRepository) End(db *gorm.DB, id uuid.UUID, endDate time.Time) (int64, error) {
	args := m.Called(db, id, endDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ClientTherapistRepository) CountActiveByTherapist(db *gorm.DB, therapistID uuid.UUID) (int64, error) {
	args := m.Called(db, therapistID)
	return args.Get(0).(int64), args.Error(1)
}

type MedicalRecordRepository struct {
	mock.Mock
}

func (m *MedicalRecordRepository) Create(db *gorm.DB, record *entity.MedicalRecord) error {
	args := m.Called(db, record)
	return args.Error(0)
}

func (m *MedicalRecordRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.MedicalRecord, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MedicalRecord), args.Error(1)
}

func (m *MedicalRecordRepository) FindByBookingID(db *gorm.DB, bookingID uuid.UUID) (*entity.MedicalRecord, error) {
	args := m.Called(db, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MedicalRecord), args.Error(1)
}

func (m *MedicalRecordRepository) ClearBookingReference(db *gorm.DB, bookingID uuid.UUID) (int64, error) {
	args := m.Called(db, bookingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MedicalRecordRepository) CountByTherapist(db *gorm.DB, therapistID uuid.UUID) (int64, error) {
	args := m.Called(db, therapistID)
	return args.Get(0).(int64), args.Error(1)
}

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) CreateBatch(db *gorm.DB, notifications []entity.Notification) error {
	args := m.Called(db, notifications)
	return args.Error(0)
}

func (m *NotificationRepository) FindByGuardianID(db *gorm.DB, guardianID uuid.UUID, unreadOnly bool) ([]entity.Notification, error) {
	args := m.Called(db, guardianID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Notification), args.Error(1)
}

func (m *NotificationRepository) MarkAsRead(db *gorm.DB, id, guardianID uuid.UUID) (int64, error) {
	args := m.Called(db, id, guardianID)
	return args.Get(0).(int64), args.Error(1)
}

type AuditLogRepository struct {
	mock.Mock
}

func (m *AuditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	args := m.Called(db, log)
	return args.Error(0)
}

func (m *AuditLogRepository) FindAll(db *gorm.DB, filter entity.AuditLogFilter) ([]entity.AuditLog, int64, error) {
	args := m.Called(db, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *AuditLogRepository) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuditLog), args.Error(1)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(db *gorm.DB, user *entity.User) error {
	args := m.Called(db, user)
	return args.Error(0)
}

func (m *UserRepository) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	args := m.Called(db, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *UserRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *UserRepository) Update(db *gorm.DB, user *entity.User) error {
	args := m.Called(db, user)
	return args.Error(0)
}

func (m *UserRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	args := m.Called(db, id)
	return args.Get(0).(int64), args.Error(1)
}

type RoleRepository struct {
	mock.Mock
}

func (m *RoleRepository) FindByName(db *gorm.DB, name string) (*entity.Role, error) {
	args := m.Called(db, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Role), args.Error(1)
}

var (
	_ repository.BookingRepository          = (*BookingRepository)(nil)
	_ repository.RoomRepository             = (*RoomRepository)(nil)
	_ repository.TherapistProfileRepository = (*TherapistProfileRepository)(nil)
	_ repository.ClientRepository           = (*ClientRepository)(nil)
	_ repository.GuardianRepository         = (*GuardianRepository)(nil)
	_ repository.ClientTherapistRepository  = (*ClientTherapistRepository)(nil)
	_ repository.MedicalRecordRepository    = (*MedicalRecordRepository)(nil)
	_ repository.NotificationRepository     = (*NotificationRepository)(nil)
	_ repository.AuditLogRepository         = (*AuditLogRepository)(nil)
	_ repository.UserRepository             = (*UserRepository)(nil)
	_ repository.RoleRepository             = (*RoleRepository)(nil)
)
