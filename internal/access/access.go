package access

import (
	"errors"
	"fmt"

	"pokerclub/internal/db/models"

	"gorm.io/gorm"
)

// ErrDenied is returned when a non-director attempts a director operation.
var ErrDenied = errors.New("access denied")

// IsDirector reports whether the user exists and holds the director role.
func IsDirector(db *gorm.DB, userID uint) (bool, error) {
	var user models.User
	err := db.Select("role").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load user %d: %w", userID, err)
	}
	return user.Role == models.RoleDirector, nil
}

// EnsureDirector guards every mutating operation of the service.
func EnsureDirector(db *gorm.DB, userID uint) error {
	ok, err := IsDirector(db, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDenied
	}
	return nil
}
