package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Minimal Telegram Bot API client. The platform is spoken to over plain
// HTTP, there is no SDK in between.

type API struct {
	token  string
	base   string
	client *http.Client
}

func NewAPI(token string) *API {
	return &API{
		token:  token,
		base:   "https://api.telegram.org",
		client: &http.Client{Timeout: 65 * time.Second},
	}
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	Chat Chat   `json:"chat"`
	From *User  `json:"from"`
	Text string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Button struct {
	Text string `json:"text"`
}

type ReplyKeyboard struct {
	Keyboard       [][]Button `json:"keyboard"`
	ResizeKeyboard bool       `json:"resize_keyboard"`
}

func (a *API) url(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", a.base, a.token, method)
}

// GetUpdates long-polls for new updates past the given offset.
func (a *API) GetUpdates(offset int64, timeoutSec int) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":  offset,
		"timeout": timeoutSec,
	}
	var result struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}
	if err := a.call("getUpdates", payload, &result); err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, fmt.Errorf("getUpdates returned not ok")
	}
	return result.Result, nil
}

// SendMessage sends HTML-formatted text, optionally with a reply keyboard.
func (a *API) SendMessage(chatID int64, text string, keyboard *ReplyKeyboard) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	var result struct {
		OK bool `json:"ok"`
	}
	if err := a.call("sendMessage", payload, &result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("sendMessage returned not ok")
	}
	return nil
}

func (a *API) call(method string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}
	resp, err := a.client.Post(a.url(method), "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
