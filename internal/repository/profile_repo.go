package repository

import (
	"context"
	"time"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
)

type StudentProfileRepository struct {
	db DBTX
}

func NewStudentProfileRepository(db DBTX) *StudentProfileRepository {
	return &StudentProfileRepository{db: db}
}

func (r *StudentProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO student_profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (r *StudentProfileRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*models.StudentProfile, error) {
	query := `
		SELECT id, user_id, date_of_birth, emergency_contact, medical_notes, learning_goals, created_at, updated_at
		FROM student_profiles
		WHERE user_id = $1
	`
	var profile models.StudentProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.DateOfBirth,
		&profile.EmergencyContact,
		&profile.MedicalNotes,
		&profile.LearningGoals,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type StudentProfileInput struct {
	DateOfBirth      *time.Time
	EmergencyContact *string
	MedicalNotes     *string
	LearningGoals    *string
}

func (r *StudentProfileRepository) Update(
	ctx context.Context,
	userID int64,
	input StudentProfileInput,
) (*models.StudentProfile, error) {
	query := `
		UPDATE student_profiles
		SET date_of_birth = COALESCE($2, date_of_birth),
		    emergency_contact = COALESCE($3, emergency_contact),
		    medical_notes = COALESCE($4, medical_notes),
		    learning_goals = COALESCE($5, learning_goals),
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, date_of_birth, emergency_contact, medical_notes, learning_goals, created_at, updated_at
	`
	var profile models.StudentProfile
	err := r.db.QueryRow(
		ctx,
		query,
		userID,
		input.DateOfBirth,
		input.EmergencyContact,
		input.MedicalNotes,
		input.LearningGoals,
	).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.DateOfBirth,
		&profile.EmergencyContact,
		&profile.MedicalNotes,
		&profile.LearningGoals,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type TeacherProfileRepository struct {
	db DBTX
}

func NewTeacherProfileRepository(db DBTX) *TeacherProfileRepository {
	return &TeacherProfileRepository{db: db}
}

func (r *TeacherProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO teacher_profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (r *TeacherProfileRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*models.TeacherProfile, error) {
	query := `
		SELECT id, user_id, qualifications, experience_years, hourly_rate, created_at, updated_at
		FROM teacher_profiles
		WHERE user_id = $1
	`
	var profile models.TeacherProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Qualifications,
		&profile.ExperienceYears,
		&profile.HourlyRate,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type TeacherProfileInput struct {
	Qualifications  *string
	ExperienceYears *int
	HourlyRate      *float64
}

func (r *TeacherProfileRepository) Update(
	ctx context.Context,
	userID int64,
	input TeacherProfileInput,
) (*models.TeacherProfile, error) {
	query := `
		UPDATE teacher_profiles
		SET qualifications = COALESCE($2, qualifications),
		    experience_years = COALESCE($3, experience_years),
		    hourly_rate = COALESCE($4, hourly_rate),
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, qualifications, experience_years, hourly_rate, created_at, updated_at
	`
	var profile models.TeacherProfile
	err := r.db.QueryRow(
		ctx,
		query,
		userID,
		input.Qualifications,
		input.ExperienceYears,
		input.HourlyRate,
	).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Qualifications,
		&profile.ExperienceYears,
		&profile.HourlyRate,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
