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
	ErrGuardianUserTaken    = errors.New("user is already linked to a guardian")
	ErrGuardianUserNotFound = errors.New("guardian user not found")
	ErrRelationshipExists   = errors.New("client already has an active relationship with this therapist")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrRelationshipEnded    = errors.New("relationship has already ended")
	ErrInvalidDate          = errors.New("invalid date format, use YYYY-MM-DD")
)

type ClientUsecase interface {
	CreateClient(ctx context.Context, actor entity.Actor, req *dto.CreateClientRequest) (*dto.ClientResponse, error)
	GetClient(ctx context.Context, clientID uuid.UUID) (*dto.ClientResponse, error)
	GetAllClients(ctx context.Context) (*dto.ClientListResponse, error)
	AddGuardian(ctx context.Context, actor entity.Actor, clientID uuid.UUID, req *dto.CreateGuardianRequest) (*dto.GuardianResponse, error)
	LinkTherapist(ctx context.Context, actor entity.Actor, clientID uuid.UUID, req *dto.LinkTherapistRequest) (*dto.RelationshipResponse, error)
	EndRelationship(ctx context.Context, actor entity.Actor, clientID, relationshipID uuid.UUID) error
}

type clientUsecase struct {
	transactor           repository.Transactor
	log                  *logrus.Logger
	clientRepo           repository.ClientRepository
	guardianRepo         repository.GuardianRepository
	relationshipRepo     repository.ClientTherapistRepository
	therapistProfileRepo repository.TherapistProfileRepository
	userRepo             repository.UserRepository
	auditService         service.AuditService
	now                  func() time.Time
}

func NewClientUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	clientRepo repository.ClientRepository,
	guardianRepo repository.GuardianRepository,
	relationshipRepo repository.ClientTherapistRepository,
	therapistProfileRepo repository.TherapistProfileRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
) ClientUsecase {
	return &clientUsecase{
		transactor:           transactor,
		log:                  log,
		clientRepo:           clientRepo,
		guardianRepo:         guardianRepo,
		relationshipRepo:     relationshipRepo,
		therapistProfileRepo: therapistProfileRepo,
		userRepo:             userRepo,
		auditService:         auditService,
		now:                  time.Now,
	}
}

func (u *clientUsecase) CreateClient(ctx context.Context, actor entity.Actor, req *dto.CreateClientRequest) (*dto.ClientResponse, error) {
	client := &entity.Client{
		FullName: req.FullName,
		Notes:    req.Notes,
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDate
		}
		client.DateOfBirth = &dob
	}

	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.clientRepo.Create(tx, client); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionClientCreate, "client", client.ID.String(), converter.ClientToResponse(client)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		u.log.Warnf("Failed to create client: %+v", err)
		return nil, err
	}

	return converter.ClientToResponse(client), nil
}

func (u *clientUsecase) GetClient(ctx context.Context, clientID uuid.UUID) (*dto.ClientResponse, error) {
	client, err := u.clientRepo.FindByID(u.transactor.Conn(ctx), clientID)
	if err != nil {
		u.log.Warnf("Failed to find client: %+v", err)
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}
	return converter.ClientToResponse(client), nil
}

func (u *clientUsecase) GetAllClients(ctx context.Context) (*dto.ClientListResponse, error) {
	clients, err := u.clientRepo.FindAll(u.transactor.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all clients: %+v", err)
		return nil, err
	}

	return &dto.ClientListResponse{
		Clients: converter.ClientsToResponses(clients),
		Total:   len(clients),
	}, nil
}

// AddGuardian creates a guardian and links it to the client. When UserID is
// set the user must exist with the guardian role, which enables the inbox.
func (u *clientUsecase) AddGuardian(ctx context.Context, actor entity.Actor, clientID uuid.UUID, req *dto.CreateGuardianRequest) (*dto.GuardianResponse, error) {
	guardian := &entity.Guardian{
		UserID:   req.UserID,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	}

	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		client, err := u.clientRepo.FindByID(tx, clientID)
		if err != nil {
			return err
		}
		if client == nil {
			return ErrClientNotFound
		}

		if req.UserID != nil {
			user, err := u.userRepo.FindByID(tx, *req.UserID)
			if err != nil {
				return err
			}
			if user == nil || user.RoleID != entity.RoleIDGuardian {
				return ErrGuardianUserNotFound
			}
		}

		if err := u.guardianRepo.Create(tx, guardian); err != nil {
			return err
		}
		if err := u.clientRepo.AddGuardian(tx, client, guardian); err != nil {
			return err
		}

		if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionGuardianCreate, "guardian", guardian.ID.String(), map[string]interface{}{
			"client_id": clientID,
			"guardian":  converter.GuardianToResponse(guardian),
		}); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrGuardianUserNotFound):
			return nil, err
		case isDuplicateKeyError(err, "guardians_user_id"):
			return nil, ErrGuardianUserTaken
		}
		u.log.Warnf("Failed to add guardian: %+v", err)
		return nil, err
	}

	return converter.GuardianToResponse(guardian), nil
}

// LinkTherapist opens a relationship that authorizes bookings between the
// client and the therapist.
func (u *clientUsecase) LinkTherapist(ctx context.Context, actor entity.Actor, clientID uuid.UUID, req *dto.LinkTherapistRequest) (*dto.RelationshipResponse, error) {
	startDate := u.now()
	if req.StartDate != nil && *req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		startDate = parsed
	}

	relationship := &entity.ClientTherapist{
		ClientID:    clientID,
		TherapistID: req.TherapistID,
		IsPrimary:   req.IsPrimary,
		StartDate:   startDate,
	}

	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		client, err := u.clientRepo.FindByID(tx, clientID)
		if err != nil {
			return err
		}
		if client == nil {
			return ErrClientNotFound
		}

		profile, err := u.therapistProfileRepo.FindByUserID(tx, req.TherapistID)
		if err != nil {
			return err
		}
		if profile == nil {
			return ErrTherapistNotFound
		}

		existing, err := u.relationshipRepo.FindActive(tx, clientID, req.TherapistID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrRelationshipExists
		}

		if err := u.relationshipRepo.Create(tx, relationship); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionRelationshipLink, "client_therapist", relationship.ID.String(), converter.RelationshipToResponse(relationship)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrTherapistNotFound), errors.Is(err, ErrRelationshipExists):
			return nil, err
		case isDuplicateKeyError(err, "client_therapists_active_pair"):
			return nil, ErrRelationshipExists
		}
		u.log.Warnf("Failed to link therapist: %+v", err)
		return nil, err
	}

	return converter.RelationshipToResponse(relationship), nil
}

// EndRelationship closes the relationship as of today. Existing bookings are
// kept; new bookings for the pair are rejected.
func (u *clientUsecase) EndRelationship(ctx context.Context, actor entity.Actor, clientID, relationshipID uuid.UUID) error {
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		relationship, err := u.relationshipRepo.FindByID(tx, relationshipID)
		if err != nil {
			return err
		}
		if relationship == nil || relationship.ClientID != clientID {
			return ErrRelationshipNotFound
		}
		if !relationship.IsActive() {
			return ErrRelationshipEnded
		}

		rows, err := u.relationshipRepo.End(tx, relationshipID, u.now())
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrRelationshipEnded
		}

		if err := u.auditService.LogUpdate(ctx, tx, actor, entity.AuditActionRelationshipEnd, "client_therapist", relationshipID.String(), converter.RelationshipToResponse(relationship), nil); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRelationshipNotFound) || errors.Is(err, ErrRelationshipEnded) {
			return err
		}
		u.log.Warnf("Failed to end relationship: %+v", err)
		return err
	}

	return nil
}
