// Package transport клиент Bot API для отправки рилсов пользователям.
// Отправляет текст, фото и видео по сохранённым file_id и возвращает
// идентификаторы отправленных сообщений.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender отправка сообщений пользователю.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) (int64, error)
	SendPhoto(ctx context.Context, chatID int64, fileRef string) (int64, error)
	SendVideo(ctx context.Context, chatID int64, fileRef, caption string) (int64, error)
}

// Client клиент Bot API.
type Client struct {
	token      string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент Bot API с указанным токеном бота.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		apiURL:     "https://api.telegram.org",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, payload any) (int64, error) {
	const op = "transport.call"

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !result.OK {
		return 0, fmt.Errorf("%s: %s: %s", op, method, result.Description)
	}
	return result.Result.MessageID, nil
}

// SendText отправляет текстовое сообщение и возвращает его идентификатор.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) (int64, error) {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
}

// SendPhoto отправляет фото по file_id и возвращает идентификатор сообщения.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileRef string) (int64, error) {
	return c.call(ctx, "sendPhoto", map[string]any{
		"chat_id": chatID,
		"photo":   fileRef,
	})
}

// SendVideo отправляет видео по file_id с необязательной подписью
// и возвращает идентификатор сообщения.
func (c *Client) SendVideo(ctx context.Context, chatID int64, fileRef, caption string) (int64, error) {
	payload := map[string]any{
		"chat_id": chatID,
		"video":   fileRef,
	}
	if caption != "" {
		payload["caption"] = caption
	}
	return c.call(ctx, "sendVideo", payload)
}
