package rating

import (
	"errors"
	"fmt"

	"pokerclub/internal/access"
	"pokerclub/internal/db/models"

	"gorm.io/gorm"
)

const DefaultScore = 1000

var ErrNotFound = errors.New("rating not found")

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type Entry struct {
	ID               uint   `json:"id"`
	PlayerName       string `json:"player_name"`
	TelegramUsername string `json:"telegram_username"`
	Score            int    `json:"score"`
}

// PlayerRating is the per-player view, including the 1-indexed position in
// the table.
type PlayerRating struct {
	Entry
	Position int `json:"position"`
}

// List returns the full rating table, best score first.
func (s *Service) List() ([]Entry, error) {
	var rows []models.Rating
	if err := s.DB.Order("score DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			ID:               r.ID,
			PlayerName:       r.PlayerName,
			TelegramUsername: r.TelegramUsername,
			Score:            r.Score,
		})
	}
	return entries, nil
}

func (s *Service) Create(directorID uint, playerName, telegramUsername string, score int) error {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return err
	}
	row := models.Rating{
		PlayerName:       playerName,
		TelegramUsername: telegramUsername,
		Score:            score,
		CreatedBy:        directorID,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("create rating for %s: %w", telegramUsername, err)
	}
	return nil
}

func (s *Service) Update(directorID, id uint, playerName, telegramUsername string, score int) error {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return err
	}
	res := s.DB.Model(&models.Rating{}).Where("id = ?", id).Updates(map[string]interface{}{
		"player_name":       playerName,
		"telegram_username": telegramUsername,
		"score":             score,
	})
	if res.Error != nil {
		return fmt.Errorf("update rating %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(directorID, id uint) error {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return err
	}
	res := s.DB.Delete(&models.Rating{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete rating %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Position ranks a score by greater-than count: players sharing a score
// share a position.
func (s *Service) Position(score int) (int, error) {
	var higher int64
	err := s.DB.Model(&models.Rating{}).Where("score > ?", score).Count(&higher).Error
	if err != nil {
		return 0, fmt.Errorf("count higher scores: %w", err)
	}
	return int(higher) + 1, nil
}

// ByUsername looks up a player's rating and position by telegram handle.
func (s *Service) ByUsername(telegramUsername string) (*PlayerRating, error) {
	var row models.Rating
	err := s.DB.Where("telegram_username = ?", telegramUsername).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load rating for %s: %w", telegramUsername, err)
	}
	position, err := s.Position(row.Score)
	if err != nil {
		return nil, err
	}
	return &PlayerRating{
		Entry: Entry{
			ID:               row.ID,
			PlayerName:       row.PlayerName,
			TelegramUsername: row.TelegramUsername,
			Score:            row.Score,
		},
		Position: position,
	}, nil
}
