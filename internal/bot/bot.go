package bot

import (
	"context"
	"log"
	"time"

	"pokerclub/config"
)

// Command identifies one bot operation. Incoming message text is resolved
// to a Command through the dispatch table, and each Command maps to a
// Handler; no shared closures.
type Command int

const (
	CmdUnknown Command = iota
	CmdStart
	CmdHelp
	CmdTournaments
	CmdActiveTournaments
	CmdMyRegistrations
	CmdRating
	CmdProfile
	CmdBack
)

// commands maps raw message text to commands. Button labels arrive as plain
// text, same as slash commands.
var commands = map[string]Command{
	"/start":                CmdStart,
	"/help":                 CmdHelp,
	"ℹ️ Help":               CmdHelp,
	"🏆 Tournaments":         CmdTournaments,
	"📅 Active tournaments":  CmdActiveTournaments,
	"✅ My registrations":    CmdMyRegistrations,
	"📊 Rating":              CmdRating,
	"👤 My profile":          CmdProfile,
	"🔙 Back":                CmdBack,
}

// Handler processes one resolved command.
type Handler interface {
	Handle(b *Bot, msg *Message) error
}

type Bot struct {
	api      *API
	backend  *Client
	cfg      *config.BotConfig
	handlers map[Command]Handler
}

func New(cfg *config.BotConfig) *Bot {
	b := &Bot{
		api:     NewAPI(cfg.Token),
		backend: NewClient(cfg.BackendURL),
		cfg:     cfg,
	}
	b.handlers = map[Command]Handler{
		CmdStart:             startHandler{},
		CmdHelp:              helpHandler{},
		CmdTournaments:       tournamentsHandler{},
		CmdActiveTournaments: activeTournamentsHandler{},
		CmdMyRegistrations:   myRegistrationsHandler{},
		CmdRating:            ratingHandler{},
		CmdProfile:           profileHandler{},
		CmdBack:              backHandler{},
	}
	return b
}

// Resolve maps message text to a command.
func Resolve(text string) Command {
	if cmd, ok := commands[text]; ok {
		return cmd
	}
	return CmdUnknown
}

// Run polls Telegram for updates until the context is cancelled. Handler
// failures are logged and never stop the loop.
func (b *Bot) Run(ctx context.Context) {
	log.Printf("Telegram bot polling started")
	var offset int64
	interval := time.Duration(b.cfg.PollInterval) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("Telegram bot polling stopped")
			return
		default:
		}

		updates, err := b.api.GetUpdates(offset, 30)
		if err != nil {
			log.Printf("Failed to fetch updates: %v", err)
			time.Sleep(interval)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil {
				continue
			}
			b.dispatch(update.Message)
		}
	}
}

func (b *Bot) dispatch(msg *Message) {
	handler, ok := b.handlers[Resolve(msg.Text)]
	if !ok {
		// Unknown input gets the main menu back, same as /start minus the
		// greeting.
		handler = backHandler{}
	}
	if err := handler.Handle(b, msg); err != nil {
		log.Printf("Handler failed for chat %d: %v", msg.Chat.ID, err)
	}
}
