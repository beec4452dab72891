package directory

import (
	"campusgate/src/models"
	"campusgate/src/types"
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) GetUser(ctx context.Context, id uint) (*Person, error) {
	var user models.User
	err := d.db.
		WithContext(ctx).
		Preload("Boarding").
		Where(&models.User{ID: id}).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("[directory] Error retrieving User [%d]: %s\n", id, err.Error())
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return FromUser(&user), nil
}

func (d *GormDirectory) FindByRole(ctx context.Context, role types.Role, departmentID *uint) ([]Person, error) {
	var users []models.User
	q := d.db.
		WithContext(ctx).
		Where("LOWER(role) IN (?)", types.RoleSpellings(role))
	if departmentID != nil {
		q = q.Where("department_id = ?", *departmentID)
	}
	if err := q.Order("id asc").Find(&users).Error; err != nil {
		log.Printf("[directory] Error listing users with role %s: %s\n", role, err.Error())
		return nil, fmt.Errorf("find users by role %s: %w", role, err)
	}
	people := make([]Person, 0, len(users))
	for i := range users {
		people = append(people, *FromUser(&users[i]))
	}
	return people, nil
}
