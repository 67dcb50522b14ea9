package service

import (
	"errors"
	"fmt"

	"krankenhaus-matrix/internal/matrix"
	"krankenhaus-matrix/internal/models"
	"krankenhaus-matrix/internal/repository"
)

// ErrNotHospitalUser is returned when assigning hospitals to a user without the hospital role
var ErrNotHospitalUser = errors.New("user does not have the hospital role")

// AssignmentService manages which hospitals a hospital user may report for
type AssignmentService struct {
	matrix           *MatrixService
	userRepo         *repository.UserRepository
	userHospitalRepo *repository.UserHospitalRepository
	auditRepo        *repository.AuditRepository
}

func NewAssignmentService(
	matrixService *MatrixService,
	userRepo *repository.UserRepository,
	userHospitalRepo *repository.UserHospitalRepository,
	auditRepo *repository.AuditRepository,
) *AssignmentService {
	return &AssignmentService{
		matrix:           matrixService,
		userRepo:         userRepo,
		userHospitalRepo: userHospitalRepo,
		auditRepo:        auditRepo,
	}
}

// GetUserHospitals lists the hospitals assigned to a user
func (s *AssignmentService) GetUserHospitals(userID uint) ([]matrix.Hospital, error) {
	ids, err := s.userHospitalRepo.GetUserHospitals(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	hospitals := make([]matrix.Hospital, 0, len(ids))
	for _, id := range ids {
		if h, ok := s.matrix.Hospital(id); ok {
			hospitals = append(hospitals, h)
		}
	}
	return hospitals, nil
}

// ValidateHospitals checks a registration's hospital list before the account exists.
// Hospital users need at least one hospital and every id must be known.
func (s *AssignmentService) ValidateHospitals(role string, hospitalIDs []int64) error {
	if role != models.RoleHospital {
		if len(hospitalIDs) > 0 {
			return matrix.ValidationErrors{{Field: "hospital_ids", Message: "only hospital users are assigned to hospitals"}}
		}
		return nil
	}
	if len(hospitalIDs) == 0 {
		return matrix.ValidationErrors{{Field: "hospital_ids", Message: "hospital users need at least one hospital"}}
	}
	for _, id := range hospitalIDs {
		if _, ok := s.matrix.Hospital(id); !ok {
			return matrix.ValidationErrors{{Field: "hospital_ids", Message: fmt.Sprintf("unknown hospital %d", id)}}
		}
	}
	return nil
}

// AssignUserToHospital assigns a hospital user to a hospital (admin only)
func (s *AssignmentService) AssignUserToHospital(actor Actor, userID uint, hospitalID int64) error {
	if !actor.isAdmin() {
		return ErrAccessDenied
	}

	user, err := s.userRepo.FindUserByID(userID)
	if err != nil {
		return matrix.ErrNotFound
	}
	if user.Role != models.RoleHospital {
		return ErrNotHospitalUser
	}
	if _, ok := s.matrix.Hospital(hospitalID); !ok {
		return matrix.ErrNotFound
	}

	if err := s.userHospitalRepo.AssignUserToHospital(userID, hospitalID); err != nil {
		return fmt.Errorf("failed to assign user to hospital: %w", err)
	}

	details := fmt.Sprintf("Assigned user %s (ID: %d) to hospital ID %d", user.Username, userID, hospitalID)
	_ = s.auditRepo.CreateAuditLog(actor.auditID(), "user_hospital_assign", details)
	return nil
}

// RemoveUserFromHospital removes a user's access to a hospital (admin only)
func (s *AssignmentService) RemoveUserFromHospital(actor Actor, userID uint, hospitalID int64) error {
	if !actor.isAdmin() {
		return ErrAccessDenied
	}

	if err := s.userHospitalRepo.RemoveUserFromHospital(userID, hospitalID); err != nil {
		return fmt.Errorf("failed to remove user from hospital: %w", err)
	}

	details := fmt.Sprintf("Removed user ID %d from hospital ID %d", userID, hospitalID)
	_ = s.auditRepo.CreateAuditLog(actor.auditID(), "user_hospital_remove", details)
	return nil
}

// CheckHospitalAccess decides whether the actor may change cells of a hospital.
// Admins and dispatchers may change every hospital, hospital users only their assigned ones.
func (s *AssignmentService) CheckHospitalAccess(actor Actor, hospitalID int64) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleDispatcher:
		return nil
	case models.RoleHospital:
		ok, err := s.userHospitalRepo.UserHasAccessToHospital(actor.UserID, hospitalID)
		if err != nil {
			return fmt.Errorf("failed to verify access: %w", err)
		}
		if !ok {
			return ErrAccessDenied
		}
		return nil
	}
	return ErrAccessDenied
}
