// services/telegram_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// TelegramClient is the chat transport collaborator. Engine correctness
// never depends on these calls succeeding; delivery failures are logged by
// callers and otherwise ignored.
type TelegramClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewTelegramClient(token string) *TelegramClient {
	return &TelegramClient{
		BaseURL: "https://api.telegram.org",
		Token:   token,
		Client: &http.Client{
			// Above the long-poll timeout so GetUpdates is not cut short.
			Timeout: 40 * time.Second,
		},
	}
}

// --- Bot API payload types ---

type TgUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type TgChat struct {
	ID int64 `json:"id"`
}

type TgMessage struct {
	MessageID int     `json:"message_id"`
	From      *TgUser `json:"from"`
	Chat      TgChat  `json:"chat"`
	Text      string  `json:"text"`
}

type TgCallbackQuery struct {
	ID      string     `json:"id"`
	From    *TgUser    `json:"from"`
	Message *TgMessage `json:"message"`
	Data    string     `json:"data"`
}

type TgUpdate struct {
	UpdateID      int64            `json:"update_id"`
	Message       *TgMessage       `json:"message"`
	CallbackQuery *TgCallbackQuery `json:"callback_query"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// --- API calls ---

// SendMessage delivers an HTML-formatted message, optionally with an inline
// keyboard.
func (c *TelegramClient) SendMessage(chatID int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	return c.call(context.Background(), "sendMessage", payload, nil)
}

// EditMessageText replaces the text (and keyboard) of a previously sent
// message.
func (c *TelegramClient) EditMessageText(chatID int64, messageID int, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	return c.call(context.Background(), "editMessageText", payload, nil)
}

// AnswerCallbackQuery acknowledges a button press with a short notice.
func (c *TelegramClient) AnswerCallbackQuery(callbackID, text string) error {
	payload := map[string]interface{}{
		"callback_query_id": callbackID,
		"text":              text,
	}
	return c.call(context.Background(), "answerCallbackQuery", payload, nil)
}

// GetUpdates long-polls for new updates starting at offset.
func (c *TelegramClient) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]TgUpdate, error) {
	payload := map[string]interface{}{
		"offset":  offset,
		"timeout": timeoutSec,
	}
	var updates []TgUpdate
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

type tgResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *TelegramClient) call(ctx context.Context, method string, payload interface{}, out interface{}) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.Token, method)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var parsed tgResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !parsed.OK {
		log.Printf("Telegram %s returned %d: %s", method, resp.StatusCode, parsed.Description)
		return fmt.Errorf("telegram %s failed: %s", method, parsed.Description)
	}
	if out != nil {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}
