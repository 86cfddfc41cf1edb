package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pokerclub/internal/db/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Tournament{}, &models.Registration{},
		&models.PlayerChips{}, &models.Rating{}, &models.TournamentTable{},
		&models.TableAssignment{},
	))
	return New(db, nil), db
}

func seedDirector(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	username := "director"
	user := models.User{Username: &username, FullName: "The Director", Role: models.RoleDirector}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func seedPlayer(t *testing.T, db *gorm.DB, handle string) uint {
	t.Helper()
	user := models.User{TelegramUsername: &handle, FullName: "Player " + handle, Role: models.RolePlayer}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func seedTournament(t *testing.T, db *gorm.DB, status string) uint {
	t.Helper()
	start := time.Now().Add(time.Hour)
	tourn := models.Tournament{
		Name:           "Sunday Main",
		RentCost:       3000,
		RentChips:      30000,
		StartTime:      start,
		LateRegEndTime: start.Add(90 * time.Minute),
		Status:         status,
	}
	require.NoError(t, db.Create(&tourn).Error)
	return tourn.ID
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	return rec, decoded
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)

	rec, body := doJSON(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
}

func TestRegisterRejectedWhenClosed(t *testing.T) {
	s, db := testServer(t)
	playerID := seedPlayer(t, db, "grinder")
	tournID := seedTournament(t, db, models.StatusActiveNoLate)

	rec, body := doJSON(t, s, http.MethodPost, "/api/register", map[string]interface{}{
		"user_id": playerID, "tournament_id": tournID,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Registration closed", body["message"])

	var count int64
	require.NoError(t, db.Model(&models.Registration{}).Count(&count).Error)
	assert.Zero(t, count, "rejected registration must not leave a row")
}

func TestRegisterRequiresAuth(t *testing.T) {
	s, db := testServer(t)
	tournID := seedTournament(t, db, models.StatusRegistration)

	_, body := doJSON(t, s, http.MethodPost, "/api/register", map[string]interface{}{
		"tournament_id": tournID,
	})
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Authorization required", body["message"])
}

func TestUpdateChipsRequiresDirector(t *testing.T) {
	s, db := testServer(t)
	playerID := seedPlayer(t, db, "grinder")
	tournID := seedTournament(t, db, models.StatusActive)
	require.NoError(t, db.Create(&models.PlayerChips{
		TournamentID: tournID, UserID: playerID, Chips: 30000,
	}).Error)

	_, body := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/tournaments/%d/update-chips", tournID),
		map[string]interface{}{
			"user_id": playerID, "player_user_id": playerID, "chips": 999999,
		})
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Access denied", body["message"])

	var chips models.PlayerChips
	require.NoError(t, db.Where("tournament_id = ? AND user_id = ?", tournID, playerID).
		First(&chips).Error)
	assert.Equal(t, 30000, chips.Chips, "denied request must not touch the stack")
}

func TestUpdateChipsRequiresAmount(t *testing.T) {
	s, db := testServer(t)
	directorID := seedDirector(t, db)
	tournID := seedTournament(t, db, models.StatusActive)

	_, body := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/tournaments/%d/update-chips", tournID),
		map[string]interface{}{"user_id": directorID, "player_user_id": 1})
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Chips amount required", body["message"])
}

func TestStartAndCreateTablesFlow(t *testing.T) {
	s, db := testServer(t)
	directorID := seedDirector(t, db)
	tournID := seedTournament(t, db, models.StatusRegistration)
	for i := 0; i < 23; i++ {
		playerID := seedPlayer(t, db, fmt.Sprintf("player%02d", i))
		require.NoError(t, db.Create(&models.Registration{
			UserID: playerID, TournamentID: tournID,
		}).Error)
	}

	_, body := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/tournaments/%d/start", tournID),
		map[string]interface{}{"user_id": directorID})
	require.Equal(t, true, body["success"], "start failed: %v", body["message"])

	var chips int64
	require.NoError(t, db.Model(&models.PlayerChips{}).
		Where("tournament_id = ?", tournID).Count(&chips).Error)
	assert.EqualValues(t, 23, chips, "start seeds a stack per registrant")

	_, body = doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/tournaments/%d/create-tables", tournID),
		map[string]interface{}{"user_id": directorID})
	require.Equal(t, true, body["success"], "create-tables failed: %v", body["message"])
	assert.EqualValues(t, 3, body["tables_count"])
	assert.EqualValues(t, 23, body["players_count"])
	assert.EqualValues(t, 23, body["new_players_assigned"])
}

func TestCreateTablesErrors(t *testing.T) {
	s, db := testServer(t)
	directorID := seedDirector(t, db)
	tournID := seedTournament(t, db, models.StatusActive)

	_, body := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/tournaments/%d/create-tables", tournID),
		map[string]interface{}{"user_id": directorID})
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No registered players", body["message"])

	_, body = doJSON(t, s, http.MethodPost, "/api/tournaments/9999/create-tables",
		map[string]interface{}{"user_id": directorID})
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Tournament not found", body["message"])
}

func TestProfileByTelegramNotFound(t *testing.T) {
	s, _ := testServer(t)

	rec, body := doJSON(t, s, http.MethodGet, "/api/user/profile/telegram/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User not found", body["message"])
}

func TestCreateRatingValidation(t *testing.T) {
	s, db := testServer(t)
	directorID := seedDirector(t, db)

	_, body := doJSON(t, s, http.MethodPost, "/api/rating", map[string]interface{}{
		"user_id": directorID, "player_name": "Ann",
	})
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Player name and Telegram username required", body["message"])

	_, body = doJSON(t, s, http.MethodPost, "/api/rating", map[string]interface{}{
		"user_id": directorID, "player_name": "Ann", "telegram_username": "ann",
	})
	require.Equal(t, true, body["success"])

	var row models.Rating
	require.NoError(t, db.Where("telegram_username = ?", "ann").First(&row).Error)
	assert.Equal(t, 1000, row.Score, "omitted score falls back to the default")
}
