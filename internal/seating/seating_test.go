package seating

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"pokerclub/internal/access"
	"pokerclub/internal/db/models"
	"pokerclub/internal/tournament"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Tournament{}, &models.Registration{},
		&models.PlayerChips{}, &models.Rating{}, &models.TournamentTable{},
		&models.TableAssignment{},
	))
	return db
}

type fixture struct {
	db         *gorm.DB
	svc        *Service
	directorID uint
	tourn      *models.Tournament
}

func newFixture(t *testing.T, playerCount int) *fixture {
	t.Helper()
	db := testDB(t)

	username := "director"
	director := models.User{Username: &username, FullName: "The Director", Role: models.RoleDirector}
	require.NoError(t, db.Create(&director).Error)

	start := time.Now().Add(time.Hour)
	tourn := models.Tournament{
		Name:           "Sunday Main",
		RentCost:       3000,
		RentChips:      30000,
		StartTime:      start,
		LateRegEndTime: start.Add(90 * time.Minute),
		Status:         models.StatusRegistration,
		CreatedBy:      director.ID,
	}
	require.NoError(t, db.Create(&tourn).Error)

	f := &fixture{db: db, svc: NewService(db), directorID: director.ID, tourn: &tourn}
	for i := 0; i < playerCount; i++ {
		f.addPlayer(t, fmt.Sprintf("player%02d", i))
	}
	return f
}

func (f *fixture) addPlayer(t *testing.T, handle string) uint {
	t.Helper()
	user := models.User{TelegramUsername: &handle, FullName: "Player " + handle, Role: models.RolePlayer}
	require.NoError(t, f.db.Create(&user).Error)
	require.NoError(t, f.db.Create(&models.Registration{
		UserID: user.ID, TournamentID: f.tourn.ID,
	}).Error)
	return user.ID
}

func (f *fixture) seatsByUser(t *testing.T) map[uint]models.TableAssignment {
	t.Helper()
	var assignments []models.TableAssignment
	require.NoError(t, f.db.Where("tournament_id = ?", f.tourn.ID).Find(&assignments).Error)
	byUser := make(map[uint]models.TableAssignment, len(assignments))
	for _, a := range assignments {
		byUser[a.UserID] = a
	}
	return byUser
}

func TestAssignChunksRegistrantsIntoTables(t *testing.T) {
	f := newFixture(t, 23)

	result, err := f.svc.Assign(f.directorID, f.tourn.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TablesCount, "ceil(23/10) tables")
	assert.Equal(t, 23, result.PlayersCount)
	assert.Equal(t, 23, result.NewPlayersAssigned)

	var tables []models.TournamentTable
	require.NoError(t, f.db.Where("tournament_id = ?", f.tourn.ID).
		Order("table_number").Find(&tables).Error)
	require.Len(t, tables, 3)

	sizes := make([]int64, 0, 3)
	for _, table := range tables {
		assert.Equal(t, 10, table.MaxPlayers)
		var n int64
		require.NoError(t, f.db.Model(&models.TableAssignment{}).
			Where("table_id = ?", table.ID).Count(&n).Error)
		sizes = append(sizes, n)
	}
	assert.Equal(t, []int64{10, 10, 3}, sizes, "positional chunking fills tables front to back")
}

func TestAssignSeatNumbersWithinBounds(t *testing.T) {
	f := newFixture(t, 23)

	_, err := f.svc.Assign(f.directorID, f.tourn.ID)
	require.NoError(t, err)

	seen := map[uint]map[int]bool{}
	for _, a := range f.seatsByUser(t) {
		assert.GreaterOrEqual(t, a.SeatNumber, 1)
		assert.LessOrEqual(t, a.SeatNumber, 10)
		if seen[a.TableID] == nil {
			seen[a.TableID] = map[int]bool{}
		}
		assert.False(t, seen[a.TableID][a.SeatNumber],
			"fresh assignment must not seat two players on seat %d of the same table", a.SeatNumber)
		seen[a.TableID][a.SeatNumber] = true
	}
}

func TestAssignPreservesExistingSeatNumbers(t *testing.T) {
	f := newFixture(t, 12)

	_, err := f.svc.Assign(f.directorID, f.tourn.ID)
	require.NoError(t, err)
	before := f.seatsByUser(t)

	f.addPlayer(t, "latecomer")
	result, err := f.svc.Assign(f.directorID, f.tourn.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewPlayersAssigned)
	assert.Equal(t, 13, result.PlayersCount)
	assert.Equal(t, 2, result.TablesCount)

	after := f.seatsByUser(t)
	require.Len(t, after, 13)
	for userID, prior := range before {
		assert.Equal(t, prior.SeatNumber, after[userID].SeatNumber,
			"user %d must keep seat %d across re-runs", userID, prior.SeatNumber)
	}
}

func TestAssignNothingToAssign(t *testing.T) {
	f := newFixture(t, 5)

	_, err := f.svc.Assign(f.directorID, f.tourn.ID)
	require.NoError(t, err)

	_, err = f.svc.Assign(f.directorID, f.tourn.ID)
	assert.ErrorIs(t, err, ErrNothingToAssign)
}

func TestAssignNoPlayers(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.svc.Assign(f.directorID, f.tourn.ID)
	assert.ErrorIs(t, err, ErrNoPlayers)
}

func TestAssignRequiresDirector(t *testing.T) {
	f := newFixture(t, 3)
	playerID := f.addPlayer(t, "mallory")

	_, err := f.svc.Assign(playerID, f.tourn.ID)
	assert.ErrorIs(t, err, access.ErrDenied)

	var count int64
	require.NoError(t, f.db.Model(&models.TournamentTable{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAssignUnknownTournament(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.svc.Assign(f.directorID, 9999)
	assert.ErrorIs(t, err, tournament.ErrTournamentNotFound)
}

func TestTablesViewFallbacks(t *testing.T) {
	f := newFixture(t, 4)
	_, err := f.svc.Assign(f.directorID, f.tourn.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Create(&models.Rating{
		PlayerName: "Player player00", TelegramUsername: "player00", Score: 1225,
	}).Error)

	tables, err := f.svc.Tables(f.tourn.ID)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 1, tables[0].TableNumber)
	assert.Equal(t, 4, tables[0].CurrentPlayers)
	require.Len(t, tables[0].Players, 4)

	lastSeat := 0
	for _, p := range tables[0].Players {
		assert.GreaterOrEqual(t, p.SeatNumber, lastSeat, "players ordered by seat")
		lastSeat = p.SeatNumber
		assert.Equal(t, 30000, p.Chips, "no chip rows yet, fall back to rent chips")
		if p.TelegramUsername == "player00" {
			assert.Equal(t, 1225, p.Rating)
		} else {
			assert.Equal(t, 1000, p.Rating)
		}
	}
}
