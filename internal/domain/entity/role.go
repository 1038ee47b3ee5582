package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants, seeded by the initial migration
const (
	RoleIDAdmin     = 1
	RoleIDTherapist = 2
	RoleIDGuardian  = 3
)

// RoleNames constants
const (
	RoleAdmin     = "admin"
	RoleTherapist = "therapist"
	RoleGuardian  = "guardian"
)

// RoleNameByID maps a role id to its name; unknown ids map to "".
func RoleNameByID(id int) string {
	switch id {
	case RoleIDAdmin:
		return RoleAdmin
	case RoleIDTherapist:
		return RoleTherapist
	case RoleIDGuardian:
		return RoleGuardian
	}
	return ""
}
