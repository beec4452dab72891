package gatepass

import (
	"campusgate/src/models"
	"campusgate/src/models/scopes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, gp *models.GatePass, trail *models.GatePassTrail) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(gp).Error; err != nil {
			log.Printf("[gatepass] Error creating GatePass: %s\n", err.Error())
			return err
		}
		if trail == nil {
			return nil
		}
		trail.GatePassID = gp.ID
		if trail.ID == uuid.Nil {
			trail.ID = uuid.New()
		}
		if err := tx.Create(trail).Error; err != nil {
			log.Printf("[gatepass] Error creating GatePassTrail for [%d]: %s\n", gp.ID, err.Error())
			return err
		}
		return nil
	})
}

func (s *GormStore) Get(ctx context.Context, id uint) (*models.GatePass, error) {
	var gp models.GatePass
	if err := s.db.WithContext(ctx).Where(&models.GatePass{ID: id}).First(&gp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("gate pass %d not found", id)
		}
		return nil, fmt.Errorf("get gate pass %d: %w", id, err)
	}
	return &gp, nil
}

func (s *GormStore) Transition(ctx context.Context, id uint, fn MutateFunc) (*models.GatePass, error) {
	var updated models.GatePass
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gp models.GatePass
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.GatePass{ID: id}).
			First(&gp).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("gate pass %d not found", id)
			}
			return err
		}
		trail, err := fn(&gp)
		if err != nil {
			return err
		}
		if err := tx.Save(&gp).Error; err != nil {
			log.Printf("[gatepass] Error saving GatePass [%d]: %s\n", id, err.Error())
			return err
		}
		if trail != nil {
			trail.GatePassID = gp.ID
			if trail.ID == uuid.Nil {
				trail.ID = uuid.New()
			}
			if err := tx.Create(trail).Error; err != nil {
				log.Printf("[gatepass] Error creating GatePassTrail for [%d]: %s\n", id, err.Error())
				return err
			}
		}
		updated = gp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *GormStore) List(ctx context.Context, q Query) ([]models.GatePass, error) {
	passes := make([]models.GatePass, 0)
	order := scopes.MostRecent
	if q.Order == OrderDepartmentThenOldest {
		order = scopes.ByDepartmentThenOldest
	}
	err := s.db.
		WithContext(ctx).
		Model(&models.GatePass{}).
		Scopes(
			scopes.WithStatuses(q.Statuses...),
			scopes.WithRequester(q.RequesterID, q.RequesterType),
			scopes.WithStudent(q.StudentID),
			scopes.WithDepartment(q.DepartmentID),
			scopes.StartBetween(q.StartFrom, q.StartTo),
			scopes.ValidityOverlaps(q.ValidFrom, q.ValidTo),
			scopes.UpdatedSince(q.UpdatedSince),
			order,
		).
		Find(&passes).
		Error
	if err != nil {
		log.Printf("[gatepass] Error listing GatePasses: %s\n", err.Error())
		return nil, err
	}
	return passes, nil
}

func (s *GormStore) Trail(ctx context.Context, id uint) ([]models.GatePassTrail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows := make([]models.GatePassTrail, 0)
	if err := s.db.
		WithContext(ctx).
		Where(&models.GatePassTrail{GatePassID: id}).
		Order("created_at asc").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}
