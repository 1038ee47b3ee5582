package entity

import "github.com/google/uuid"

// Actor is the authenticated caller of a booking operation. It is built by the
// HTTP layer from the access token and passed explicitly into usecases.
type Actor struct {
	ID     uuid.UUID
	RoleID int
}

func (a Actor) IsAdmin() bool {
	return a.RoleID == RoleIDAdmin
}

func (a Actor) IsTherapist() bool {
	return a.RoleID == RoleIDTherapist
}

func (a Actor) IsGuardian() bool {
	return a.RoleID == RoleIDGuardian
}

// CanManageBooking reports whether the actor may read or mutate a booking
// assigned to therapistID.
func (a Actor) CanManageBooking(therapistID uuid.UUID) bool {
	if a.IsAdmin() {
		return true
	}
	return a.IsTherapist() && a.ID == therapistID
}

// UserID returns the actor id in the pointer form expected by audit logs.
func (a Actor) UserID() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}
