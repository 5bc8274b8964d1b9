package models

import "time"

// Role is the closed set of platform roles. Authorization decisions match
// on these constants rather than raw strings from the wire.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleInstructor Role = "INSTRUCTOR"
	RoleStudent    Role = "STUDENT"
)

// ParseRole maps a wire value onto the closed role set.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleInstructor:
		return RoleInstructor, true
	case RoleStudent:
		return RoleStudent, true
	default:
		return "", false
	}
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Phone        *string   `json:"phone"`
	Bio          *string   `json:"bio"`
	AvatarURL    *string   `json:"avatar_url"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type StudentProfile struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	EmergencyContact *string    `json:"emergency_contact"`
	MedicalNotes     *string    `json:"medical_notes"`
	LearningGoals    *string    `json:"learning_goals"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type TeacherProfile struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Qualifications  *string   `json:"qualifications"`
	ExperienceYears int       `json:"experience_years"`
	HourlyRate      *float64  `json:"hourly_rate"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
