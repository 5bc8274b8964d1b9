package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
)

type studentProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.StudentProfile, error)
	Update(ctx context.Context, userID int64, input repository.StudentProfileInput) (*models.StudentProfile, error)
}

type teacherProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.TeacherProfile, error)
	Update(ctx context.Context, userID int64, input repository.TeacherProfileInput) (*models.TeacherProfile, error)
}

type contactUpdater interface {
	userReader
	UpdateContact(ctx context.Context, userID int64, phone, bio, avatarURL *string) (*models.User, error)
}

type ProfileService struct {
	userRepo           contactUpdater
	studentProfileRepo studentProfileStore
	teacherProfileRepo teacherProfileStore
}

func NewProfileService(
	userRepo contactUpdater,
	studentProfileRepo studentProfileStore,
	teacherProfileRepo teacherProfileStore,
) *ProfileService {
	return &ProfileService{
		userRepo:           userRepo,
		studentProfileRepo: studentProfileRepo,
		teacherProfileRepo: teacherProfileRepo,
	}
}

// Profile bundles the account row with its role-specific extension. The
// extension matching the user's role is populated; the other stays nil.
type Profile struct {
	User           *models.User           `json:"user"`
	StudentProfile *models.StudentProfile `json:"student_profile,omitempty"`
	TeacherProfile *models.TeacherProfile `json:"teacher_profile,omitempty"`
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile := &Profile{User: user}

	switch user.Role {
	case models.RoleStudent:
		studentProfile, err := s.studentProfileRepo.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		profile.StudentProfile = studentProfile
	case models.RoleInstructor:
		teacherProfile, err := s.teacherProfileRepo.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		profile.TeacherProfile = teacherProfile
	}

	return profile, nil
}

func (s *ProfileService) UpdateContact(
	ctx context.Context,
	userID int64,
	phone, bio, avatarURL *string,
) (*models.User, error) {
	user, err := s.userRepo.UpdateContact(ctx, userID, phone, bio, avatarURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) UpdateStudentProfile(
	ctx context.Context,
	actorID int64,
	role models.Role,
	input repository.StudentProfileInput,
) (*models.StudentProfile, error) {
	if role != models.RoleStudent {
		return nil, ErrForbidden
	}

	profile, err := s.studentProfileRepo.Update(ctx, actorID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) UpdateTeacherProfile(
	ctx context.Context,
	actorID int64,
	role models.Role,
	input repository.TeacherProfileInput,
) (*models.TeacherProfile, error) {
	if role != models.RoleInstructor {
		return nil, ErrForbidden
	}

	profile, err := s.teacherProfileRepo.Update(ctx, actorID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}
