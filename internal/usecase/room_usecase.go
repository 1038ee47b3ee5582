package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrRoomNameExists   = errors.New("room name already exists")
	ErrRoomInvalidHours = errors.New("opening time must be before closing time")
	ErrRoomInUse        = errors.New("room has active or upcoming bookings")
)

type RoomUsecase interface {
	CreateRoom(ctx context.Context, actor entity.Actor, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (*dto.RoomResponse, error)
	GetAllRooms(ctx context.Context) (*dto.RoomListResponse, error)
	UpdateRoom(ctx context.Context, actor entity.Actor, roomID uuid.UUID, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error)
	DeleteRoom(ctx context.Context, actor entity.Actor, roomID uuid.UUID) error
}

type roomUsecase struct {
	transactor   repository.Transactor
	log          *logrus.Logger
	roomRepo     repository.RoomRepository
	bookingRepo  repository.BookingRepository
	auditService service.AuditService
	now          func() time.Time
}

func NewRoomUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	roomRepo repository.RoomRepository,
	bookingRepo repository.BookingRepository,
	auditService service.AuditService,
) RoomUsecase {
	return &roomUsecase{
		transactor:   transactor,
		log:          log,
		roomRepo:     roomRepo,
		bookingRepo:  bookingRepo,
		auditService: auditService,
		now:          time.Now,
	}
}

func (u *roomUsecase) CreateRoom(ctx context.Context, actor entity.Actor, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	if !validHours(req.OpeningTime, req.ClosingTime) {
		return nil, ErrRoomInvalidHours
	}

	room := &entity.Room{
		Name:        req.Name,
		Capacity:    req.Capacity,
		Resources:   entity.StringList(req.Resources),
		OpeningTime: emptyToNil(req.OpeningTime),
		ClosingTime: emptyToNil(req.ClosingTime),
		Description: req.Description,
	}

	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.roomRepo.Create(tx, room); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionRoomCreate, "room", room.ID.String(), converter.RoomToResponse(room)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if isDuplicateKeyError(err, "rooms_name") {
			return nil, ErrRoomNameExists
		}
		u.log.Warnf("Failed to create room: %+v", err)
		return nil, err
	}

	return converter.RoomToResponse(room), nil
}

func (u *roomUsecase) GetRoom(ctx context.Context, roomID uuid.UUID) (*dto.RoomResponse, error) {
	room, err := u.roomRepo.FindByID(u.transactor.Conn(ctx), roomID)
	if err != nil {
		u.log.Warnf("Failed to find room: %+v", err)
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return converter.RoomToResponse(room), nil
}

func (u *roomUsecase) GetAllRooms(ctx context.Context) (*dto.RoomListResponse, error) {
	rooms, err := u.roomRepo.FindAll(u.transactor.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all rooms: %+v", err)
		return nil, err
	}

	return &dto.RoomListResponse{
		Rooms: converter.RoomsToResponses(rooms),
		Total: len(rooms),
	}, nil
}

func (u *roomUsecase) UpdateRoom(ctx context.Context, actor entity.Actor, roomID uuid.UUID, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error) {
	var room *entity.Room
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		room, err = u.roomRepo.FindByID(tx, roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}
		before := converter.RoomToResponse(room)

		if req.Name != nil {
			room.Name = *req.Name
		}
		if req.Capacity != nil {
			room.Capacity = *req.Capacity
		}
		if req.Resources != nil {
			room.Resources = entity.StringList(*req.Resources)
		}
		// An empty string clears the bound.
		if req.OpeningTime != nil {
			room.OpeningTime = emptyToNil(req.OpeningTime)
		}
		if req.ClosingTime != nil {
			room.ClosingTime = emptyToNil(req.ClosingTime)
		}
		if req.Description != nil {
			room.Description = req.Description
		}

		if !validHours(room.OpeningTime, room.ClosingTime) {
			return ErrRoomInvalidHours
		}

		if err := u.roomRepo.Update(tx, room); err != nil {
			return err
		}
		if err := u.auditService.LogUpdate(ctx, tx, actor, entity.AuditActionRoomUpdate, "room", roomID.String(), before, converter.RoomToResponse(room)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrRoomInvalidHours):
			return nil, err
		case isDuplicateKeyError(err, "rooms_name"):
			return nil, ErrRoomNameExists
		}
		u.log.Warnf("Failed to update room: %+v", err)
		return nil, err
	}

	return converter.RoomToResponse(room), nil
}

// DeleteRoom refuses while the room has PENDING/CONFIRMED bookings or any
// booking starting in the future.
func (u *roomUsecase) DeleteRoom(ctx context.Context, actor entity.Actor, roomID uuid.UUID) error {
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		room, err := u.roomRepo.FindByID(tx, roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return ErrRoomNotFound
		}

		blocking, err := u.bookingRepo.CountBlockingRoomDeletion(tx, roomID, u.now())
		if err != nil {
			return err
		}
		if blocking > 0 {
			return ErrRoomInUse
		}

		if _, err := u.roomRepo.Delete(tx, roomID); err != nil {
			return err
		}
		if err := u.auditService.LogDelete(ctx, tx, actor, entity.AuditActionRoomDelete, "room", roomID.String(), converter.RoomToResponse(room)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrRoomInUse) {
			return err
		}
		if isForeignKeyError(err, "bookings_room") {
			return ErrRoomInUse
		}
		u.log.Warnf("Failed to delete room: %+v", err)
		return err
	}

	return nil
}

func validHours(opening, closing *string) bool {
	if opening == nil || closing == nil || *opening == "" || *closing == "" {
		return true
	}
	return *opening < *closing
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
