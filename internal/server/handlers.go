package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"pokerclub/internal/access"
	"pokerclub/internal/db/models"
	clubnats "pokerclub/internal/nats"
	"pokerclub/internal/players"
	"pokerclub/internal/rating"
	"pokerclub/internal/seating"
	"pokerclub/internal/tournament"

	"github.com/gorilla/mux"
)

type outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func okMsg(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, outcome{Success: true, Message: message})
}

func failMsg(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, outcome{Success: false, Message: message})
}

// failErr maps service errors onto the success/message envelope. Unknown
// errors are logged and reported generically.
func failErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrDenied):
		failMsg(w, "Access denied")
	case errors.Is(err, tournament.ErrTournamentNotFound):
		failMsg(w, "Tournament not found")
	case errors.Is(err, tournament.ErrUserNotFound):
		failMsg(w, "User not found")
	case errors.Is(err, tournament.ErrAlreadyRegistered):
		failMsg(w, "You are already registered for this tournament")
	case errors.Is(err, tournament.ErrRegistrationClosed):
		failMsg(w, "Registration closed")
	case errors.Is(err, tournament.ErrLateRegExpired):
		failMsg(w, "Late registration expired")
	case errors.Is(err, tournament.ErrValidation), errors.Is(err, players.ErrValidation):
		failMsg(w, "Required fields missing")
	case errors.Is(err, seating.ErrNoPlayers):
		failMsg(w, "No registered players")
	case errors.Is(err, seating.ErrNothingToAssign):
		failMsg(w, "All players already assigned")
	case errors.Is(err, players.ErrNotFound):
		failMsg(w, "Player not found")
	case errors.Is(err, players.ErrAlreadyExists):
		failMsg(w, "Player already exists")
	case errors.Is(err, players.ErrBadPassword):
		failMsg(w, "Wrong password")
	case errors.Is(err, rating.ErrNotFound):
		failMsg(w, "Rating not found")
	default:
		log.Printf("Request failed: %v", err)
		failMsg(w, "Internal error")
	}
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func pathID(r *http.Request, name string) uint {
	id, _ := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	return uint(id)
}

func (s *Server) publish(event clubnats.TournamentEvent) {
	if err := s.events.Publish(event); err != nil {
		log.Printf("Failed to publish event: %v", err)
	}
}

// --- auth ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	id, err := s.players.Login(req.Username, req.Password)
	if err != nil {
		failErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"user":    id,
	})
}

func (s *Server) handleTelegramLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TelegramUsername string `json:"telegram_username"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	id, err := s.players.TelegramLogin(req.TelegramUsername)
	if err != nil {
		failErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"user":    id,
	})
}

// --- player administration ---

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID           uint   `json:"user_id"`
		TelegramUsername string `json:"telegram_username"`
		FullName         string `json:"full_name"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	if err := s.players.Create(req.UserID, req.TelegramUsername, req.FullName); err != nil {
		failErr(w, err)
		return
	}
	okMsg(w, fmt.Sprintf("Player %s created", req.FullName))
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 32)
	list, err := s.players.List(uint(userID))
	if err != nil {
		failErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	if err := s.players.Delete(req.UserID, pathID(r, "id")); err != nil {
		failErr(w, err)
		return
	}
	okMsg(w, "Player deleted")
}

// --- tournaments ---

func (s *Server) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	completed := r.URL.Query().Get("status") == "completed"
	list, err := s.tournaments.List(completed)
	if err != nil {
		failErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint `json:"user_id"`
		tournament.Input
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	if _, err := s.tournaments.Create(req.UserID, req.Input); err != nil {
		failErr(w, err)
		return
	}
	okMsg(w, "Tournament created")
}

func (s *Server) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	detail, err := s.tournaments.Detail(pathID(r, "id"))
	if err != nil {
		failErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateTournament(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint `json:"user_id"`
		tournament.Input
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	if err := s.tournaments.Update(req.UserID, pathID(r, "id"), req.Input); err != nil {
		failErr(w, err)
		return
	}
	okMsg(w, "Tournament updated")
}

func (s *Server) handleDeleteTournament(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	id := pathID(r, "id")
	if err := s.tournaments.Delete(req.UserID, id); err != nil {
		failErr(w, err)
		return
	}
	s.publish(clubnats.TournamentEvent{TournamentID: id, Event: clubnats.EventDeleted})
	okMsg(w, "Tournament deleted")
}

func (s *Server) handleStartTournament(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	id := pathID(r, "id")
	if err := s.tournaments.Start(req.UserID, id); err != nil {
		failErr(w, err)
		return
	}
	s.publish(clubnats.TournamentEvent{TournamentID: id, Event: clubnats.EventStarted, Status: models.StatusActive})
	okMsg(w, "Tournament started. Late registration is open.")
}

func (s *Server) handleCloseLateReg(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	id := pathID(r, "id")
	if err := s.tournaments.CloseLateReg(req.UserID, id); err != nil {
		failErr(w, err)
		return
	}
	s.publish(clubnats.TournamentEvent{TournamentID: id, Event: clubnats.EventLateRegDone, Status: models.StatusActiveNoLate})
	okMsg(w, "Late registration closed")
}

func (s *Server) handleCompleteTournament(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	id := pathID(r, "id")
	if err := s.tournaments.Complete(req.UserID, id); err != nil {
		failErr(w, err)
		return
	}
	s.publish(clubnats.TournamentEvent{TournamentID: id, Event: clubnats.EventCompleted, Status: models.StatusCompleted})
	okMsg(w, "Tournament completed")
}

func (s *Server) handleUpdateChips(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       uint `json:"user_id"`
		PlayerUserID uint `json:"player_user_id"`
		Chips        *int `json:"chips"`
		Rebuys       int  `json:"rebuys"`
		Addons       int  `json:"addons"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	if req.Chips == nil {
		failMsg(w, "Chips amount required")
		return
	}
	err := s.tournaments.UpdateChips(req.UserID, pathID(r, "id"), req.PlayerUserID, *req.Chips, req.Rebuys, req.Addons)
	if err != nil {
		failErr(w, err)
		return
	}
	okMsg(w, "Chips updated")
}

// --- registration ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       uint `json:"user_id"`
		TournamentID uint `json:"tournament_id"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	if req.UserID == 0 {
		failMsg(w, "Authorization required")
		return
	}
	if err := s.tournaments.Register(req.UserID, req.TournamentID); err != nil {
		failErr(w, err)
		return
	}
	okMsg(w, "Registration successful")
}

// --- seating ---

func (s *Server) handleCreateTables(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	id := pathID(r, "id")
	result, err := s.seats.Assign(req.UserID, id)
	if err != nil {
		failErr(w, err)
		return
	}
	s.publish(clubnats.TournamentEvent{
		TournamentID: id,
		Event:        clubnats.EventTablesDrawn,
		TablesCount:  result.TablesCount,
		PlayersCount: result.PlayersCount,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"message":              fmt.Sprintf("Assigned %d players across %d tables", result.NewPlayersAssigned, result.TablesCount),
		"tables_count":         result.TablesCount,
		"players_count":        result.PlayersCount,
		"new_players_assigned": result.NewPlayersAssigned,
	})
}

func (s *Server) handleGetTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.seats.Tables(pathID(r, "id"))
	if err != nil {
		failErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

// --- rating ---

func (s *Server) handleListRating(w http.ResponseWriter, r *http.Request) {
	list, err := s.ratings.List()
	if err != nil {
		failErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateRating(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID           uint   `json:"user_id"`
		PlayerName       string `json:"player_name"`
		TelegramUsername string `json:"telegram_username"`
		Score            int    `json:"score"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	if req.PlayerName == "" || req.TelegramUsername == "" {
		failMsg(w, "Player name and Telegram username required")
		return
	}
	if req.Score == 0 {
		req.Score = rating.DefaultScore
	}
	if err := s.ratings.Create(req.UserID, req.PlayerName, req.TelegramUsername, req.Score); err != nil {
		failErr(w, err)
		return
	}
	okMsg(w, "Player added to rating")
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID           uint   `json:"user_id"`
		PlayerName       string `json:"player_name"`
		TelegramUsername string `json:"telegram_username"`
		Score            int    `json:"score"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	if err := s.ratings.Update(req.UserID, pathID(r, "id"), req.PlayerName, req.TelegramUsername, req.Score); err != nil {
		failErr(w, err)
		return
	}
	okMsg(w, "Rating updated")
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		failMsg(w, "Missing data")
		return
	}
	if err := s.ratings.Delete(req.UserID, pathID(r, "id")); err != nil {
		failErr(w, err)
		return
	}
	okMsg(w, "Player removed from rating")
}

func (s *Server) handlePlayerRating(w http.ResponseWriter, r *http.Request) {
	pr, err := s.ratings.ByUsername(mux.Vars(r)["username"])
	if err != nil {
		failErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"rating":  pr,
	})
}

// --- profiles ---

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.players.ProfileByID(s.ratings, pathID(r, "id"))
	if err != nil {
		failErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": profile,
	})
}

func (s *Server) handleProfileByTelegram(w http.ResponseWriter, r *http.Request) {
	profile, err := s.players.ProfileByTelegram(s.ratings, mux.Vars(r)["username"])
	if errors.Is(err, players.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, outcome{Success: false, Message: "User not found"})
		return
	}
	if err != nil {
		failErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "message": "Server is running"})
}
