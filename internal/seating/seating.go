package seating

import (
	"errors"
	"fmt"
	"math/rand"

	"pokerclub/internal/access"
	"pokerclub/internal/db/models"
	"pokerclub/internal/tournament"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxSeats = 10

var (
	ErrNoPlayers       = errors.New("no registered players")
	ErrNothingToAssign = errors.New("all players already assigned")
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Result summarizes one assignment run.
type Result struct {
	TablesCount        int `json:"tables_count"`
	PlayersCount       int `json:"players_count"`
	NewPlayersAssigned int `json:"new_players_assigned"`
}

// Assign partitions the registrant list into tables of ten and hands out
// seats. Safe to re-run as players trickle in: a player who already holds a
// seat keeps that seat number, only newcomers draw from the shuffled pool.
// Tables are rebuilt from scratch on every run, so a seated player can land
// on a different table when the registrant list has shifted; the seat number
// itself never changes.
func (s *Service) Assign(directorID, tournamentID uint) (*Result, error) {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return nil, err
	}
	var t models.Tournament
	err := s.DB.First(&t, tournamentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tournament.ErrTournamentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tournament %d: %w", tournamentID, err)
	}

	var regs []models.Registration
	if err := s.DB.Where("tournament_id = ?", tournamentID).
		Order("registered_at").Find(&regs).Error; err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	if len(regs) == 0 {
		return nil, ErrNoPlayers
	}

	var assignments []models.TableAssignment
	if err := s.DB.Where("tournament_id = ?", tournamentID).Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	existingSeats := make(map[uint]int, len(assignments))
	for _, a := range assignments {
		existingSeats[a.UserID] = a.SeatNumber
	}

	unassigned := 0
	for _, r := range regs {
		if _, ok := existingSeats[r.UserID]; !ok {
			unassigned++
		}
	}
	if unassigned == 0 {
		return nil, ErrNothingToAssign
	}

	tablesCount := (len(regs) + maxSeats - 1) / maxSeats

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Only the table grouping is rebuilt; existing seat assignments stay
		// and are upserted below.
		if err := tx.Where("tournament_id = ?", tournamentID).
			Delete(&models.TournamentTable{}).Error; err != nil {
			return err
		}

		for start := 0; start < len(regs); start += maxSeats {
			end := start + maxSeats
			if end > len(regs) {
				end = len(regs)
			}

			table := models.TournamentTable{
				TournamentID: tournamentID,
				TableNumber:  start/maxSeats + 1,
				MaxPlayers:   maxSeats,
			}
			if err := tx.Create(&table).Error; err != nil {
				return err
			}

			pool := rand.Perm(maxSeats)
			poolIdx := 0
			for _, reg := range regs[start:end] {
				seat, seated := existingSeats[reg.UserID]
				if !seated {
					seat = pool[poolIdx] + 1
					poolIdx++
				}
				assignment := models.TableAssignment{
					TournamentID: tournamentID,
					TableID:      table.ID,
					UserID:       reg.UserID,
					SeatNumber:   seat,
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "tournament_id"}, {Name: "user_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"table_id", "seat_number"}),
				}).Create(&assignment).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assign tables for tournament %d: %w", tournamentID, err)
	}

	return &Result{
		TablesCount:        tablesCount,
		PlayersCount:       len(regs),
		NewPlayersAssigned: unassigned,
	}, nil
}
