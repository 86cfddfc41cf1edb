package players

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pokerclub/internal/access"
	"pokerclub/internal/auth"
	"pokerclub/internal/db/models"
	"pokerclub/internal/rating"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("player not found")
	ErrAlreadyExists = errors.New("player already exists")
	ErrBadPassword   = errors.New("wrong password")
	ErrValidation    = errors.New("required fields missing")
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Identity is the authenticated view of a user returned by the login
// operations.
type Identity struct {
	ID               uint   `json:"id"`
	Username         string `json:"username,omitempty"`
	TelegramUsername string `json:"telegram_username,omitempty"`
	TelegramID       int64  `json:"telegram_id,omitempty"`
	FullName         string `json:"full_name"`
	Role             string `json:"role"`
	AuthType         string `json:"auth_type"`
}

type PlayerInfo struct {
	ID               uint      `json:"id"`
	TelegramUsername string    `json:"telegram_username"`
	FullName         string    `json:"full_name"`
	Role             string    `json:"role"`
	CreatedAt        time.Time `json:"created_at"`
	RatingScore      int       `json:"rating_score"`
}

type RatingInfo struct {
	Score    int  `json:"score"`
	Position *int `json:"position"`
}

type Profile struct {
	ID               uint        `json:"id"`
	TelegramUsername string      `json:"telegram_username"`
	FullName         string      `json:"full_name"`
	Role             string      `json:"role"`
	Rating           *RatingInfo `json:"rating,omitempty"`
}

// Create registers a new player account and seeds their rating row at the
// default score. Director only. A leading @ on the handle is stripped.
func (s *Service) Create(directorID uint, telegramUsername, fullName string) error {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return err
	}
	telegramUsername = strings.TrimPrefix(telegramUsername, "@")
	if telegramUsername == "" || fullName == "" {
		return ErrValidation
	}

	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("telegram_username = ?", telegramUsername).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check player %s: %w", telegramUsername, err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			TelegramUsername: &telegramUsername,
			FullName:         fullName,
			Role:             models.RolePlayer,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		row := models.Rating{
			PlayerName:       fullName,
			TelegramUsername: telegramUsername,
			Score:            rating.DefaultScore,
			CreatedBy:        directorID,
		}
		return tx.Create(&row).Error
	})
}

// List returns all player accounts with their rating, newest first.
// Director only.
func (s *Service) List(directorID uint) ([]PlayerInfo, error) {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return nil, err
	}
	type row struct {
		ID               uint
		TelegramUsername *string
		FullName         string
		Role             string
		CreatedAt        time.Time
		Score            *int
	}
	var rows []row
	err := s.DB.Table("users").
		Select("users.id, users.telegram_username, users.full_name, users.role, users.created_at, ratings.score").
		Joins("LEFT JOIN ratings ON ratings.telegram_username = users.telegram_username").
		Where("users.role = ?", models.RolePlayer).
		Order("users.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	infos := make([]PlayerInfo, 0, len(rows))
	for _, r := range rows {
		info := PlayerInfo{
			ID:          r.ID,
			FullName:    r.FullName,
			Role:        r.Role,
			CreatedAt:   r.CreatedAt,
			RatingScore: rating.DefaultScore,
		}
		if r.TelegramUsername != nil {
			info.TelegramUsername = *r.TelegramUsername
		}
		if r.Score != nil {
			info.RatingScore = *r.Score
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Delete removes a player and everything hanging off them: rating row,
// registrations, seat assignments and chip entries. Director only.
func (s *Service) Delete(directorID, playerID uint) error {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return err
	}
	var user models.User
	err := s.DB.First(&user, playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load player %d: %w", playerID, err)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if user.TelegramUsername != nil {
			if err := tx.Where("telegram_username = ?", *user.TelegramUsername).
				Delete(&models.Rating{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", playerID).Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", playerID).Delete(&models.TableAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", playerID).Delete(&models.PlayerChips{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, playerID).Error
	})
}

// Login authenticates by username and password.
func (s *Service) Login(username, password string) (*Identity, error) {
	if username == "" || password == "" {
		return nil, ErrValidation
	}
	var user models.User
	err := s.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", username, err)
	}
	if !auth.VerifyPassword(password, user.PasswordHash, user.Salt) {
		return nil, ErrBadPassword
	}
	return identity(&user, "web"), nil
}

// TelegramLogin authenticates by telegram handle alone; the handle is the
// identification path, there is no secret to check.
func (s *Service) TelegramLogin(telegramUsername string) (*Identity, error) {
	if telegramUsername == "" {
		return nil, ErrValidation
	}
	telegramUsername = strings.TrimPrefix(telegramUsername, "@")
	var user models.User
	err := s.DB.Where("telegram_username = ?", telegramUsername).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", telegramUsername, err)
	}
	return identity(&user, "telegram"), nil
}

func identity(user *models.User, authType string) *Identity {
	id := Identity{
		ID:       user.ID,
		FullName: user.FullName,
		Role:     user.Role,
		AuthType: authType,
	}
	if user.Username != nil {
		id.Username = *user.Username
	}
	if user.TelegramUsername != nil {
		id.TelegramUsername = *user.TelegramUsername
	}
	if user.TelegramID != nil {
		id.TelegramID = *user.TelegramID
	}
	return &id
}

// ProfileByID loads a user with their rating attached. Players without a
// rating row get the default score and no position.
func (s *Service) ProfileByID(ratings *rating.Service, userID uint) (*Profile, error) {
	var user models.User
	err := s.DB.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return s.profile(ratings, &user)
}

// ProfileByTelegram loads a user by telegram handle with rating attached.
func (s *Service) ProfileByTelegram(ratings *rating.Service, telegramUsername string) (*Profile, error) {
	var user models.User
	err := s.DB.Where("telegram_username = ?", telegramUsername).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", telegramUsername, err)
	}
	return s.profile(ratings, &user)
}

func (s *Service) profile(ratings *rating.Service, user *models.User) (*Profile, error) {
	p := Profile{
		ID:       user.ID,
		FullName: user.FullName,
		Role:     user.Role,
	}
	if user.TelegramUsername != nil {
		p.TelegramUsername = *user.TelegramUsername
	}
	if user.Role != models.RolePlayer || user.TelegramUsername == nil {
		return &p, nil
	}

	pr, err := ratings.ByUsername(*user.TelegramUsername)
	if errors.Is(err, rating.ErrNotFound) {
		p.Rating = &RatingInfo{Score: rating.DefaultScore}
		return &p, nil
	}
	if err != nil {
		return nil, err
	}
	position := pr.Position
	p.Rating = &RatingInfo{Score: pr.Score, Position: &position}
	return &p, nil
}
