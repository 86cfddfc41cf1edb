package models

import (
	"time"
)

const (
	RolePlayer   = "player"
	RoleDirector = "director"
)

// Persisted tournament statuses. The display status is derived from these
// plus the clock, see internal/tournament.
const (
	StatusRegistration = "registration"
	StatusActive       = "active"
	StatusActiveNoLate = "active_no_late_reg"
	StatusCompleted    = "completed"
)

// StatusLateRegistration only appears as a derived status, it is never
// written to the tournaments table.
const StatusLateRegistration = "late_registration"

type User struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	Username         *string   `gorm:"size:50;unique"`
	PasswordHash     string    `gorm:"size:128"`
	Salt             string    `gorm:"size:64"`
	TelegramUsername *string   `gorm:"size:64;unique"`
	TelegramID       *int64    `gorm:"unique"`
	FullName         string    `gorm:"size:100"`
	Role             string    `gorm:"size:20;not null;default:player"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

type Tournament struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	Name           string    `gorm:"size:100;not null"`
	RentCost       int       `gorm:"not null"`
	RentChips      int       `gorm:"not null"`
	RebuyCost      int       `gorm:"default:0"`
	RebuyChips     int       `gorm:"default:0"`
	AddonCost      int       `gorm:"default:0"`
	AddonChips     int       `gorm:"default:0"`
	LevelTime      int       `gorm:"default:15"`
	StartTime      time.Time `gorm:"not null"`
	LateRegEndTime time.Time `gorm:"not null"`
	CreatedBy      uint
	Status         string    `gorm:"size:30;not null;default:registration"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

type Registration struct {
	UserID       uint       `gorm:"primaryKey;autoIncrement:false"`
	User         User       `gorm:"foreignKey:UserID"`
	TournamentID uint       `gorm:"primaryKey;autoIncrement:false"`
	Tournament   Tournament `gorm:"foreignKey:TournamentID"`
	RegisteredAt time.Time  `gorm:"autoCreateTime"`
}

type PlayerChips struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"`
	TournamentID uint       `gorm:"not null;uniqueIndex:idx_player_chips_pair"`
	Tournament   Tournament `gorm:"foreignKey:TournamentID"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_player_chips_pair"`
	User         User       `gorm:"foreignKey:UserID"`
	Chips        int        `gorm:"default:0"`
	Rebuys       int        `gorm:"default:0"`
	Addons       int        `gorm:"default:0"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

// Rating is linked to User only by the telegram username string. A rating
// row may exist without a user and vice versa; readers fall back to the
// default score of 1000 when the join finds nothing.
type Rating struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	PlayerName       string    `gorm:"size:100;not null"`
	TelegramUsername string    `gorm:"size:64;unique"`
	Score            int       `gorm:"default:1000"`
	CreatedBy        uint
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

type TournamentTable struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"`
	TournamentID uint       `gorm:"not null"`
	Tournament   Tournament `gorm:"foreignKey:TournamentID"`
	TableNumber  int        `gorm:"not null"`
	MaxPlayers   int        `gorm:"default:10"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
}

type TableAssignment struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	TournamentID uint            `gorm:"not null;uniqueIndex:idx_table_assignments_pair"`
	Tournament   Tournament      `gorm:"foreignKey:TournamentID"`
	TableID      uint            `gorm:"not null"`
	Table        TournamentTable `gorm:"foreignKey:TableID"`
	UserID       uint            `gorm:"not null;uniqueIndex:idx_table_assignments_pair"`
	User         User            `gorm:"foreignKey:UserID"`
	SeatNumber   int             `gorm:"not null"`
	AssignedAt   time.Time       `gorm:"autoCreateTime"`
}
