package seating

import (
	"errors"
	"fmt"

	"pokerclub/internal/db/models"
	"pokerclub/internal/tournament"

	"gorm.io/gorm"
)

type TablePlayer struct {
	FullName         string `json:"full_name"`
	TelegramUsername string `json:"telegram_username"`
	SeatNumber       int    `json:"seat_number"`
	Rating           int    `json:"rating"`
	Chips            int    `json:"chips"`
}

type TableView struct {
	ID             uint          `json:"id"`
	TableNumber    int           `json:"table_number"`
	MaxPlayers     int           `json:"max_players"`
	CurrentPlayers int           `json:"current_players"`
	Players        []TablePlayer `json:"players"`
}

// Tables returns the seating chart for a tournament, tables in numeric
// order with players ordered by seat.
func (s *Service) Tables(tournamentID uint) ([]TableView, error) {
	var t models.Tournament
	err := s.DB.First(&t, tournamentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tournament.ErrTournamentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tournament %d: %w", tournamentID, err)
	}

	var tables []models.TournamentTable
	if err := s.DB.Where("tournament_id = ?", tournamentID).
		Order("table_number").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	views := make([]TableView, 0, len(tables))
	for _, table := range tables {
		players, err := s.tablePlayers(table.ID, t.RentChips)
		if err != nil {
			return nil, err
		}
		views = append(views, TableView{
			ID:             table.ID,
			TableNumber:    table.TableNumber,
			MaxPlayers:     table.MaxPlayers,
			CurrentPlayers: len(players),
			Players:        players,
		})
	}
	return views, nil
}

type tablePlayerRow struct {
	FullName         string
	TelegramUsername *string
	SeatNumber       int
	Score            *int
	Chips            *int
}

func (s *Service) tablePlayers(tableID uint, rentChips int) ([]TablePlayer, error) {
	var rows []tablePlayerRow
	err := s.DB.Table("table_assignments").
		Select("users.full_name, users.telegram_username, table_assignments.seat_number, ratings.score, player_chips.chips").
		Joins("JOIN users ON users.id = table_assignments.user_id").
		Joins("LEFT JOIN ratings ON ratings.telegram_username = users.telegram_username").
		Joins("LEFT JOIN player_chips ON player_chips.tournament_id = table_assignments.tournament_id AND player_chips.user_id = table_assignments.user_id").
		Where("table_assignments.table_id = ?", tableID).
		Order("table_assignments.seat_number").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list players for table %d: %w", tableID, err)
	}

	players := make([]TablePlayer, 0, len(rows))
	for _, r := range rows {
		p := TablePlayer{
			FullName:   r.FullName,
			SeatNumber: r.SeatNumber,
			Rating:     1000,
			Chips:      rentChips,
		}
		if r.TelegramUsername != nil {
			p.TelegramUsername = *r.TelegramUsername
		}
		if r.Score != nil {
			p.Rating = *r.Score
		}
		if r.Chips != nil {
			p.Chips = *r.Chips
		}
		players = append(players, p)
	}
	return players, nil
}
