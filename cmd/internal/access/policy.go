package access

import (
	"context"
	"docbook/cmd/internal/domain/entity"
	"docbook/cmd/internal/utils"
	"docbook/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

const (
	RoleSuperAdmin = "SUPERADMIN"
	RoleAdmin      = "ADMIN"
	RoleSecretary  = "SECRETARY"
)

type DoctorFinder interface {
	FindDoctorByID(ctx context.Context, id int) (*entity.Doctor, error)
}

// Policy answers whether a staff caller may act on a doctor's schedule.
// Routes evaluate it before calling into the services.
type Policy struct {
	Doctors DoctorFinder
}

func NewPolicy(doctors DoctorFinder) *Policy {
	return &Policy{Doctors: doctors}
}

func IsAdmin(caller *utils.TokenData) bool {
	return caller != nil && (caller.Role == RoleAdmin || caller.Role == RoleSuperAdmin)
}

// CanManageDoctor lets admins manage every doctor and secretaries only the
// doctors assigned to them.
func (p *Policy) CanManageDoctor(ctx context.Context, caller *utils.TokenData, doctorID int) apierror.ErrorResponse {
	if caller == nil {
		return apierror.InvalidAuthTokenError
	}

	if IsAdmin(caller) {
		return nil
	}

	if caller.Role != RoleSecretary {
		return apierror.ForbiddenError
	}

	doctor, err := p.Doctors.FindDoctorByID(ctx, doctorID)
	if err != nil {
		log.Errorf("failed to load doctor %d for access check: %v", doctorID, err)
		return apierror.StorageUnavailableError
	}

	if doctor == nil || doctor.SecretarySub == nil || *doctor.SecretarySub != caller.Sub {
		return apierror.ForbiddenError
	}
	return nil
}

// CanViewStats allows admins to see global numbers; secretaries must scope
// the query to a doctor they manage.
func (p *Policy) CanViewStats(ctx context.Context, caller *utils.TokenData, doctorID *int) apierror.ErrorResponse {
	if IsAdmin(caller) {
		return nil
	}

	if doctorID == nil {
		if caller == nil {
			return apierror.InvalidAuthTokenError
		}
		return apierror.ForbiddenError
	}
	return p.CanManageDoctor(ctx, caller, *doctorID)
}
