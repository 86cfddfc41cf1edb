package bot

import (
	"fmt"
	"strings"
)

func mainMenuKeyboard() *ReplyKeyboard {
	return &ReplyKeyboard{
		Keyboard: [][]Button{
			{{Text: "🏆 Tournaments"}, {Text: "📊 Rating"}},
			{{Text: "👤 My profile"}, {Text: "ℹ️ Help"}},
		},
		ResizeKeyboard: true,
	}
}

func tournamentsKeyboard() *ReplyKeyboard {
	return &ReplyKeyboard{
		Keyboard: [][]Button{
			{{Text: "📅 Active tournaments"}, {Text: "✅ My registrations"}},
			{{Text: "🔙 Back"}},
		},
		ResizeKeyboard: true,
	}
}

type startHandler struct{}

func (startHandler) Handle(b *Bot, msg *Message) error {
	firstName := ""
	if msg.From != nil {
		firstName = msg.From.FirstName
	}
	text := fmt.Sprintf(`👋 Hi, %s!

Welcome to the <b>Poker Club</b>! 🎯

Here you can:
🏆 Browse upcoming tournaments
📊 Follow the player rating
✅ Track your registrations
👤 Check your own progress

Use the buttons below to navigate.`, firstName)
	return b.api.SendMessage(msg.Chat.ID, text, mainMenuKeyboard())
}

type helpHandler struct{}

func (helpHandler) Handle(b *Bot, msg *Message) error {
	text := fmt.Sprintf(`<b>📖 Bot help</b>

<b>Commands:</b>
🏆 Tournaments — active tournaments
📊 Rating — leaderboard
👤 My profile — your info

<b>Registering for tournaments:</b>
1. Tap "🏆 Tournaments"
2. Pick "📅 Active tournaments"
3. Register through the web version

<b>Web version:</b>
<a href="%s">%s</a>`, b.cfg.FrontendURL, b.cfg.FrontendURL)
	return b.api.SendMessage(msg.Chat.ID, text, mainMenuKeyboard())
}

type tournamentsHandler struct{}

func (tournamentsHandler) Handle(b *Bot, msg *Message) error {
	text := fmt.Sprintf(`<b>🏆 Tournaments</b>

Here you can:
• Browse active tournaments
• See your registrations

<b>Full functionality:</b>
<a href="%s">Open web version</a>`, b.cfg.FrontendURL)
	return b.api.SendMessage(msg.Chat.ID, text, tournamentsKeyboard())
}

type activeTournamentsHandler struct{}

func (activeTournamentsHandler) Handle(b *Bot, msg *Message) error {
	tournaments, err := b.backend.Tournaments()
	if err != nil {
		return b.api.SendMessage(msg.Chat.ID, "❌ Failed to load tournaments", tournamentsKeyboard())
	}
	if len(tournaments) == 0 {
		return b.api.SendMessage(msg.Chat.ID, "📭 No active tournaments right now.", tournamentsKeyboard())
	}

	var sb strings.Builder
	sb.WriteString("<b>📅 Active tournaments:</b>\n\n")
	shown := tournaments
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, t := range shown {
		fmt.Fprintf(&sb, "<b>%s</b>\n", t.Name)
		fmt.Fprintf(&sb, "💰 Buy-in: %d\n", t.RentCost)
		fmt.Fprintf(&sb, "🪙 Chips: %d\n", t.RentChips)
		fmt.Fprintf(&sb, "⏰ Starts: %s\n", t.StartTime.Format("02.01 15:04"))
		fmt.Fprintf(&sb, "👥 Players: %d\n\n", t.RegisteredPlayers)
	}
	if len(tournaments) > 5 {
		fmt.Fprintf(&sb, "<i>…and %d more</i>\n\n", len(tournaments)-5)
	}
	fmt.Fprintf(&sb, "<a href='%s'>📱 Open web version</a>", b.cfg.FrontendURL)
	return b.api.SendMessage(msg.Chat.ID, sb.String(), tournamentsKeyboard())
}

type ratingHandler struct{}

func (ratingHandler) Handle(b *Bot, msg *Message) error {
	entries, err := b.backend.Rating()
	if err != nil {
		return b.api.SendMessage(msg.Chat.ID, "❌ Failed to load rating", mainMenuKeyboard())
	}
	if len(entries) == 0 {
		return b.api.SendMessage(msg.Chat.ID, "📊 The rating table is empty", mainMenuKeyboard())
	}

	var sb strings.Builder
	sb.WriteString("<b>🏆 Top 10 players:</b>\n\n")
	medals := []string{"🥇 ", "🥈 ", "🥉 "}
	for i, entry := range entries {
		if i == 10 {
			break
		}
		medal := ""
		if i < len(medals) {
			medal = medals[i]
		}
		fmt.Fprintf(&sb, "%s<b>%d. %s</b>\n", medal, i+1, entry.PlayerName)
		fmt.Fprintf(&sb, "   Rating: %d\n", entry.Score)
		fmt.Fprintf(&sb, "   @%s\n\n", entry.TelegramUsername)
	}
	return b.api.SendMessage(msg.Chat.ID, sb.String(), mainMenuKeyboard())
}

type profileHandler struct{}

func (profileHandler) Handle(b *Bot, msg *Message) error {
	if msg.From == nil || msg.From.Username == "" {
		return b.api.SendMessage(msg.Chat.ID,
			"❌ You need a Telegram username to view your profile", nil)
	}
	profile, err := b.backend.ProfileByTelegram(msg.From.Username)
	if err != nil {
		return b.api.SendMessage(msg.Chat.ID,
			"❌ Profile not found. You may not be registered in the club yet.", mainMenuKeyboard())
	}

	var sb strings.Builder
	sb.WriteString("<b>👤 Your profile:</b>\n\n")
	fmt.Fprintf(&sb, "<b>Name:</b> %s\n", profile.FullName)
	fmt.Fprintf(&sb, "<b>Username:</b> @%s\n", msg.From.Username)
	if profile.Rating != nil {
		fmt.Fprintf(&sb, "<b>🏅 Rating:</b> %d\n", profile.Rating.Score)
		if profile.Rating.Position != nil {
			fmt.Fprintf(&sb, "<b>📊 Position:</b> %d\n", *profile.Rating.Position)
		}
	} else {
		sb.WriteString("<b>🏅 Rating:</b> not rated yet\n")
	}
	fmt.Fprintf(&sb, "\n<a href='%s'>📱 Open web version</a>", b.cfg.FrontendURL)
	return b.api.SendMessage(msg.Chat.ID, sb.String(), mainMenuKeyboard())
}

type myRegistrationsHandler struct{}

func (myRegistrationsHandler) Handle(b *Bot, msg *Message) error {
	if msg.From == nil || msg.From.Username == "" {
		return b.api.SendMessage(msg.Chat.ID,
			"❌ You need a Telegram username to view your registrations", nil)
	}
	tournaments, err := b.backend.Tournaments()
	if err != nil {
		return b.api.SendMessage(msg.Chat.ID, "❌ Failed to load registrations", tournamentsKeyboard())
	}

	var mine []string
	for _, t := range tournaments {
		detail, err := b.backend.TournamentDetail(t.ID)
		if err != nil {
			continue
		}
		for _, p := range detail.Players {
			if p.TelegramUsername == msg.From.Username {
				mine = append(mine, fmt.Sprintf("<b>%s</b> — %s", detail.Name, detail.Status))
				break
			}
		}
	}

	if len(mine) == 0 {
		return b.api.SendMessage(msg.Chat.ID,
			"📭 You have no active tournament registrations", tournamentsKeyboard())
	}

	var sb strings.Builder
	sb.WriteString("<b>✅ Your registrations:</b>\n\n")
	for _, line := range mine {
		sb.WriteString(line + "\n")
	}
	fmt.Fprintf(&sb, "\n<a href='%s'>📱 Open web version</a>", b.cfg.FrontendURL)
	return b.api.SendMessage(msg.Chat.ID, sb.String(), tournamentsKeyboard())
}

type backHandler struct{}

func (backHandler) Handle(b *Bot, msg *Message) error {
	return b.api.SendMessage(msg.Chat.ID, "🔙 Main menu", mainMenuKeyboard())
}
