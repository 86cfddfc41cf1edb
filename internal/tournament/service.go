package tournament

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"pokerclub/internal/access"
	"pokerclub/internal/db/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, now: time.Now}
}

// Input carries the director-supplied tournament configuration.
type Input struct {
	Name           string    `json:"name"`
	RentCost       int       `json:"rent_cost"`
	RentChips      int       `json:"rent_chips"`
	RebuyCost      int       `json:"rebuy_cost"`
	RebuyChips     int       `json:"rebuy_chips"`
	AddonCost      int       `json:"addon_cost"`
	AddonChips     int       `json:"addon_chips"`
	LevelTime      int       `json:"level_time"`
	StartTime      time.Time `json:"start_time"`
	LateRegEndTime time.Time `json:"late_reg_end_time"`
}

// Summary is the list view of a tournament: the row itself, the derived
// status and the registration count.
type Summary struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	RentCost          int       `json:"rent_cost"`
	RentChips         int       `json:"rent_chips"`
	RebuyCost         int       `json:"rebuy_cost"`
	RebuyChips        int       `json:"rebuy_chips"`
	AddonCost         int       `json:"addon_cost"`
	AddonChips        int       `json:"addon_chips"`
	LevelTime         int       `json:"level_time"`
	StartTime         time.Time `json:"start_time"`
	LateRegEndTime    time.Time `json:"late_reg_end_time"`
	RegisteredPlayers int       `json:"registered_players"`
	Status            string    `json:"status"`
	DBStatus          string    `json:"db_status"`
}

// PlayerEntry is one registered player in the detail view. Chips fall back
// to the tournament's rent chips and rating to 1000 when no row exists yet.
type PlayerEntry struct {
	UserID           uint   `json:"user_id"`
	GameNickname     string `json:"game_nickname"`
	TelegramUsername string `json:"telegram_username"`
	Rating           int    `json:"rating"`
	Chips            int    `json:"chips"`
	Rebuys           int    `json:"rebuys"`
	Addons           int    `json:"addons"`
}

type Detail struct {
	Summary
	TotalChips int           `json:"total_chips"`
	Players    []PlayerEntry `json:"players"`
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func validate(in Input) error {
	if in.Name == "" || in.StartTime.IsZero() || in.LateRegEndTime.IsZero() {
		return ErrValidation
	}
	return nil
}

func (s *Service) Create(directorID uint, in Input) (*models.Tournament, error) {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	if in.LevelTime == 0 {
		in.LevelTime = 15
	}
	t := models.Tournament{
		Name:           in.Name,
		RentCost:       in.RentCost,
		RentChips:      in.RentChips,
		RebuyCost:      in.RebuyCost,
		RebuyChips:     in.RebuyChips,
		AddonCost:      in.AddonCost,
		AddonChips:     in.AddonChips,
		LevelTime:      in.LevelTime,
		StartTime:      in.StartTime,
		LateRegEndTime: in.LateRegEndTime,
		CreatedBy:      directorID,
		Status:         models.StatusRegistration,
	}
	if err := s.DB.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("create tournament: %w", err)
	}
	return &t, nil
}

func (s *Service) Update(directorID, id uint, in Input) error {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return err
	}
	if err := validate(in); err != nil {
		return err
	}
	if in.LevelTime == 0 {
		in.LevelTime = 15
	}
	res := s.DB.Model(&models.Tournament{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":              in.Name,
		"rent_cost":         in.RentCost,
		"rent_chips":        in.RentChips,
		"rebuy_cost":        in.RebuyCost,
		"rebuy_chips":       in.RebuyChips,
		"addon_cost":        in.AddonCost,
		"addon_chips":       in.AddonChips,
		"level_time":        in.LevelTime,
		"start_time":        in.StartTime,
		"late_reg_end_time": in.LateRegEndTime,
	})
	if res.Error != nil {
		return fmt.Errorf("update tournament %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

// Delete removes the tournament and cascades to its assignments, tables,
// registrations and chip entries inside one transaction.
func (s *Service) Delete(directorID, id uint) error {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", id).Delete(&models.TableAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tournament_id = ?", id).Delete(&models.TournamentTable{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tournament_id = ?", id).Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tournament_id = ?", id).Delete(&models.PlayerChips{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tournament{}, id).Error
	})
}

func (s *Service) Get(id uint) (*models.Tournament, error) {
	var t models.Tournament
	err := s.DB.First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tournament %d: %w", id, err)
	}
	return &t, nil
}

// List returns tournament summaries. With completed=true only completed
// tournaments are returned (newest first), otherwise everything not yet
// completed ordered by start time.
func (s *Service) List(completed bool) ([]Summary, error) {
	var tournaments []models.Tournament
	q := s.DB.Model(&models.Tournament{})
	if completed {
		q = q.Where("status = ?", models.StatusCompleted).Order("start_time DESC")
	} else {
		q = q.Where("status <> ?", models.StatusCompleted).Order("start_time")
	}
	if err := q.Find(&tournaments).Error; err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}

	counts, err := s.registrationCounts()
	if err != nil {
		return nil, err
	}

	now := s.clock()
	summaries := make([]Summary, 0, len(tournaments))
	for i := range tournaments {
		summaries = append(summaries, s.summarize(&tournaments[i], counts[tournaments[i].ID], now))
	}
	return summaries, nil
}

func (s *Service) registrationCounts() (map[uint]int, error) {
	type row struct {
		TournamentID uint
		N            int
	}
	var rows []row
	err := s.DB.Model(&models.Registration{}).
		Select("tournament_id, COUNT(user_id) AS n").
		Group("tournament_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.TournamentID] = r.N
	}
	return counts, nil
}

func (s *Service) summarize(t *models.Tournament, registered int, now time.Time) Summary {
	return Summary{
		ID:                t.ID,
		Name:              t.Name,
		RentCost:          t.RentCost,
		RentChips:         t.RentChips,
		RebuyCost:         t.RebuyCost,
		RebuyChips:        t.RebuyChips,
		AddonCost:         t.AddonCost,
		AddonChips:        t.AddonChips,
		LevelTime:         t.LevelTime,
		StartTime:         t.StartTime,
		LateRegEndTime:    t.LateRegEndTime,
		RegisteredPlayers: registered,
		Status:            EffectiveStatus(t, now),
		DBStatus:          t.Status,
	}
}

// Detail loads the tournament with its registered players. In running
// tournaments players are ordered by chip count descending, otherwise by
// name.
func (s *Service) Detail(id uint) (*Detail, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	players, err := s.Players(t)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, p := range players {
		total += p.Chips
	}

	d := Detail{
		Summary:    s.summarize(t, len(players), s.clock()),
		TotalChips: total,
		Players:    players,
	}
	return &d, nil
}

type playerRow struct {
	UserID           uint
	FullName         string
	TelegramUsername *string
	Score            *int
	Chips            *int
	Rebuys           *int
	Addons           *int
}

// Players lists registered players with rating and chip fallbacks applied.
func (s *Service) Players(t *models.Tournament) ([]PlayerEntry, error) {
	var rows []playerRow
	err := s.DB.Table("registrations").
		Select("users.id AS user_id, users.full_name, users.telegram_username, ratings.score, player_chips.chips, player_chips.rebuys, player_chips.addons").
		Joins("JOIN users ON users.id = registrations.user_id").
		Joins("LEFT JOIN ratings ON ratings.telegram_username = users.telegram_username").
		Joins("LEFT JOIN player_chips ON player_chips.tournament_id = registrations.tournament_id AND player_chips.user_id = registrations.user_id").
		Where("registrations.tournament_id = ?", t.ID).
		Order("registrations.registered_at").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list players for tournament %d: %w", t.ID, err)
	}

	players := make([]PlayerEntry, 0, len(rows))
	for _, r := range rows {
		entry := PlayerEntry{
			UserID:       r.UserID,
			GameNickname: r.FullName,
			Rating:       1000,
			Chips:        t.RentChips,
		}
		if r.TelegramUsername != nil {
			entry.TelegramUsername = *r.TelegramUsername
		}
		if r.Score != nil {
			entry.Rating = *r.Score
		}
		if r.Chips != nil {
			entry.Chips = *r.Chips
		}
		if r.Rebuys != nil {
			entry.Rebuys = *r.Rebuys
		}
		if r.Addons != nil {
			entry.Addons = *r.Addons
		}
		players = append(players, entry)
	}

	running := t.Status == models.StatusActive || t.Status == models.StatusActiveNoLate
	sort.SliceStable(players, func(i, j int) bool {
		if running {
			return players[i].Chips > players[j].Chips
		}
		return players[i].GameNickname < players[j].GameNickname
	})
	return players, nil
}

// Start switches the tournament to active and seeds a chip entry for every
// registered player that has none yet. Re-applying never resets existing
// chip counts.
func (s *Service) Start(directorID, id uint) error {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return err
	}
	t, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Tournament{}).Where("id = ?", id).
			Update("status", models.StatusActive).Error; err != nil {
			return err
		}
		return seedChips(tx, t)
	})
}

func seedChips(tx *gorm.DB, t *models.Tournament) error {
	var regs []models.Registration
	if err := tx.Where("tournament_id = ?", t.ID).Order("registered_at").Find(&regs).Error; err != nil {
		return err
	}
	if len(regs) == 0 {
		return nil
	}
	entries := make([]models.PlayerChips, 0, len(regs))
	for _, r := range regs {
		entries = append(entries, models.PlayerChips{
			TournamentID: t.ID,
			UserID:       r.UserID,
			Chips:        t.RentChips,
		})
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tournament_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&entries).Error
}

// CloseLateReg pins the status past late registration regardless of the
// clock.
func (s *Service) CloseLateReg(directorID, id uint) error {
	return s.setStatus(directorID, id, models.StatusActiveNoLate)
}

func (s *Service) Complete(directorID, id uint) error {
	return s.setStatus(directorID, id, models.StatusCompleted)
}

func (s *Service) setStatus(directorID, id uint, status string) error {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return err
	}
	res := s.DB.Model(&models.Tournament{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("set tournament %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

// Register enrolls a user. Joining an already active tournament seeds the
// chip entry right away so the late joiner is immediately playable.
func (s *Service) Register(userID, tournamentID uint) error {
	var user models.User
	err := s.DB.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}

	t, err := s.Get(tournamentID)
	if err != nil {
		return err
	}

	switch t.Status {
	case models.StatusCompleted, models.StatusActiveNoLate:
		return ErrRegistrationClosed
	case models.StatusActive:
		if s.clock().After(t.LateRegEndTime) {
			return ErrLateRegExpired
		}
	}

	var existing int64
	if err := s.DB.Model(&models.Registration{}).
		Where("user_id = ? AND tournament_id = ?", userID, tournamentID).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("check registration: %w", err)
	}
	if existing > 0 {
		return ErrAlreadyRegistered
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		reg := models.Registration{UserID: userID, TournamentID: tournamentID}
		if err := tx.Create(&reg).Error; err != nil {
			return err
		}
		if t.Status != models.StatusActive {
			return nil
		}
		entry := models.PlayerChips{TournamentID: tournamentID, UserID: userID, Chips: t.RentChips}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tournament_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&entry).Error
	})
}

// UpdateChips overwrites the chip counters for one player. The ledger
// trusts the director: no range or monotonicity checks.
func (s *Service) UpdateChips(directorID, tournamentID, playerID uint, chips, rebuys, addons int) error {
	if err := access.EnsureDirector(s.DB, directorID); err != nil {
		return err
	}
	entry := models.PlayerChips{
		TournamentID: tournamentID,
		UserID:       playerID,
		Chips:        chips,
		Rebuys:       rebuys,
		Addons:       addons,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tournament_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"chips", "rebuys", "addons", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("update chips for user %d in tournament %d: %w", playerID, tournamentID, err)
	}
	return nil
}
