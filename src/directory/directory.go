package directory

import (
	"campusgate/src/models"
	"campusgate/src/types"
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

// Person is the directory view of a user with its role already normalized.
type Person struct {
	ID           uint               `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone,omitempty"`
	ParentPhone  string             `json:"parent_phone,omitempty"`
	Role         types.Role         `json:"role"`
	DepartmentID *uint              `json:"department_id,omitempty"`
	BoardingType types.BoardingType `json:"boarding_type,omitempty"`
}

func (p *Person) IsHosteller() bool {
	return p.BoardingType == types.BOARDING_HOSTELLER
}

func (p *Person) InDepartment(id *uint) bool {
	return p.DepartmentID != nil && id != nil && *p.DepartmentID == *id
}

type Directory interface {
	GetUser(ctx context.Context, id uint) (*Person, error)
	// FindByRole lists users with the role; a nil departmentID means any
	// department.
	FindByRole(ctx context.Context, role types.Role, departmentID *uint) ([]Person, error)
}

func FromUser(u *models.User) *Person {
	p := &Person{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         types.ParseRole(u.Role),
		DepartmentID: u.DepartmentID,
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Boarding != nil {
		p.BoardingType = types.ParseBoardingType(u.Boarding.Type)
		if u.Boarding.ParentNumber != nil {
			p.ParentPhone = *u.Boarding.ParentNumber
		}
	}
	return p
}
