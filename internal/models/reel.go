package models

import "time"

// AssetKind тип ассета рилса.
type AssetKind string

// Виды ассетов. На каждый рилс не более одного ассета каждого вида.
const (
	AssetVideo   AssetKind = "video"
	AssetPreview AssetKind = "preview"
	AssetCaption AssetKind = "caption"
)

// Valid проверяет, что вид ассета известен.
func (k AssetKind) Valid() bool {
	return k == AssetVideo || k == AssetPreview || k == AssetCaption
}

// Reel единица контента для ежедневной рассылки.
type Reel struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy int64     `json:"created_by"`
	Assets    int       `json:"assets"` // Количество ассетов, заполняется в списках
}

// ReelAsset ассет рилса: ссылка на файл во внешнем хранилище
// (file_id транспорта) и/или текст описания.
type ReelAsset struct {
	ReelID  int64     `json:"reel_id"`
	Kind    AssetKind `json:"kind"`
	FileRef string    `json:"file_ref,omitempty"`
	Text    string    `json:"text,omitempty"`
}

// ReelBundle рилс вместе со всеми его ассетами.
type ReelBundle struct {
	Reel   Reel                    `json:"reel"`
	Assets map[AssetKind]ReelAsset `json:"assets"`
}

// Delivery отметка о доставке рилса пользователю, уникальна по паре
// (user_id, reel_id).
type Delivery struct {
	UserID           int64
	ReelID           int64
	SentAt           time.Time
	VideoMessageID   *int64
	CaptionMessageID *int64
}

// DeliveryTask задача курьеру: отправить пользователю конкретный рилс.
// Публикуется планировщиком в очередь.
type DeliveryTask struct {
	UserID int64 `json:"user_id"`
	ReelID int64 `json:"reel_id"`
}
