package server

import (
	"log"
	"net/http"

	"pokerclub/config"
	clubnats "pokerclub/internal/nats"
	"pokerclub/internal/players"
	"pokerclub/internal/rating"
	"pokerclub/internal/seating"
	"pokerclub/internal/tournament"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Server struct {
	tournaments *tournament.Service
	seats       *seating.Service
	ratings     *rating.Service
	players     *players.Service
	events      *clubnats.Publisher
}

func New(db *gorm.DB, events *clubnats.Publisher) *Server {
	return &Server{
		tournaments: tournament.NewService(db),
		seats:       seating.NewService(db),
		ratings:     rating.NewService(db),
		players:     players.NewService(db),
		events:      events,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/auth/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/api/auth/telegram", s.handleTelegramLogin).Methods("POST")

	r.HandleFunc("/api/admin/create_player", s.handleCreatePlayer).Methods("POST")
	r.HandleFunc("/api/admin/players", s.handleListPlayers).Methods("GET")
	r.HandleFunc("/api/admin/players/{id:[0-9]+}", s.handleDeletePlayer).Methods("DELETE")

	r.HandleFunc("/api/tournaments", s.handleListTournaments).Methods("GET")
	r.HandleFunc("/api/tournaments", s.handleCreateTournament).Methods("POST")
	r.HandleFunc("/api/tournaments/{id:[0-9]+}", s.handleGetTournament).Methods("GET")
	r.HandleFunc("/api/tournaments/{id:[0-9]+}", s.handleUpdateTournament).Methods("PUT")
	r.HandleFunc("/api/tournaments/{id:[0-9]+}", s.handleDeleteTournament).Methods("DELETE")
	r.HandleFunc("/api/tournaments/{id:[0-9]+}/start", s.handleStartTournament).Methods("POST")
	r.HandleFunc("/api/tournaments/{id:[0-9]+}/close-late-reg", s.handleCloseLateReg).Methods("POST")
	r.HandleFunc("/api/tournaments/{id:[0-9]+}/complete", s.handleCompleteTournament).Methods("POST")
	r.HandleFunc("/api/tournaments/{id:[0-9]+}/update-chips", s.handleUpdateChips).Methods("POST")
	r.HandleFunc("/api/tournaments/{id:[0-9]+}/create-tables", s.handleCreateTables).Methods("POST")
	r.HandleFunc("/api/tournaments/{id:[0-9]+}/tables", s.handleGetTables).Methods("GET")

	r.HandleFunc("/api/register", s.handleRegister).Methods("POST")

	r.HandleFunc("/api/rating", s.handleListRating).Methods("GET")
	r.HandleFunc("/api/rating", s.handleCreateRating).Methods("POST")
	r.HandleFunc("/api/rating/{id:[0-9]+}", s.handleUpdateRating).Methods("PUT")
	r.HandleFunc("/api/rating/{id:[0-9]+}", s.handleDeleteRating).Methods("DELETE")
	r.HandleFunc("/api/rating/player/{username}", s.handlePlayerRating).Methods("GET")

	r.HandleFunc("/api/user/profile/{id:[0-9]+}", s.handleProfile).Methods("GET")
	r.HandleFunc("/api/user/profile/telegram/{username}", s.handleProfileByTelegram).Methods("GET")

	r.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	return r
}

func StartServer(cfg *config.Config, s *Server) {
	r := s.Router()

	port := ":" + cfg.Server.Port
	log.Printf("Server is listening on port%s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
