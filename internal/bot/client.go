package bot

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pokerclub/internal/players"
	"pokerclub/internal/rating"
	"pokerclub/internal/tournament"
)

// Client is the bot's read-only view of the club service. The bot never
// mutates anything, it only polls the same GET endpoints the web front-end
// uses.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) get(path string, v interface{}) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

var errNotFound = fmt.Errorf("not found")

func (c *Client) Tournaments() ([]tournament.Summary, error) {
	var list []tournament.Summary
	if err := c.get("/api/tournaments", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) TournamentDetail(id uint) (*tournament.Detail, error) {
	var detail tournament.Detail
	if err := c.get(fmt.Sprintf("/api/tournaments/%d", id), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) Rating() ([]rating.Entry, error) {
	var list []rating.Entry
	if err := c.get("/api/rating", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) ProfileByTelegram(username string) (*players.Profile, error) {
	var profile players.Profile
	if err := c.get("/api/user/profile/telegram/"+username, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
