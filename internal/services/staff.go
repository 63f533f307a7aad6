package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tezpos/tezpos/internal/models"
)

// ErrInvalidPIN is returned on a failed PIN check
var ErrInvalidPIN = errors.New("invalid pin")

// StaffService manages terminal accounts. Staff log in by PIN; the hash
// never leaves the local database.
type StaffService struct {
	deps Deps
}

// NewStaffService creates the staff manager
func NewStaffService(deps Deps) *StaffService {
	return &StaffService{deps: deps}
}

// StaffInput validates staff create/update payloads
type StaffInput struct {
	Name string `json:"name" validate:"required"`
	Role string `json:"role" validate:"required,oneof=waiter cashier admin"`
	PIN  string `json:"pin" validate:"required,len=4,numeric"`
}

// Create adds a staff member with a hashed PIN
func (s *StaffService) Create(in StaffInput) (*models.Staff, error) {
	staff := models.Staff{
		Name: strings.TrimSpace(in.Name),
		Role: models.StaffRole(in.Role),
	}
	if err := staff.SetPIN(in.PIN); err != nil {
		return nil, err
	}
	if err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		return tx.Create(&staff).Error
	}); err != nil {
		return nil, err
	}
	return &staff, nil
}

// Update edits a staff member and resets the PIN
func (s *StaffService) Update(id string, in StaffInput) (*models.Staff, error) {
	var staff *models.Staff
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findStaff(tx, id)
		if err != nil {
			return err
		}
		found.Name = strings.TrimSpace(in.Name)
		found.Role = models.StaffRole(in.Role)
		if err := found.SetPIN(in.PIN); err != nil {
			return err
		}
		if err := tx.Save(found).Error; err != nil {
			return err
		}
		staff = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// Delete tombstones a staff member
func (s *StaffService) Delete(id string) error {
	return s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findStaff(tx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		found.DeletedAt = &now
		return tx.Save(found).Error
	})
}

// List returns all non-deleted staff
func (s *StaffService) List() ([]models.Staff, error) {
	var staff []models.Staff
	err := s.deps.DB.Where("deleted_at IS NULL").Order("name ASC").Find(&staff).Error
	return staff, err
}

// Authenticate finds the staff member whose PIN matches. PINs are checked
// against every account because the terminal login screen asks only for
// the PIN.
func (s *StaffService) Authenticate(pin string) (*models.Staff, error) {
	var candidates []models.Staff
	err := s.deps.DB.Where("deleted_at IS NULL AND active = true").Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].CheckPIN(pin) {
			return &candidates[i], nil
		}
	}
	return nil, ErrInvalidPIN
}

func findStaff(tx *gorm.DB, id string) (*models.Staff, error) {
	var staff models.Staff
	err := tx.Where("id = ? AND deleted_at IS NULL", id).First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}
