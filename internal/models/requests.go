package models

// TouchRequest регистрация контакта пользователя. ReferrerID передаётся
// только при переходе по реферальной ссылке.
type TouchRequest struct {
	UserID     int64  `json:"user_id" validate:"required"`
	ReferrerID *int64 `json:"referrer_id,omitempty"`
}

// RoleChoiceRequest выбор ветки онбординга.
type RoleChoiceRequest struct {
	UserID int64  `json:"user_id" validate:"required"`
	Choice string `json:"choice" validate:"required,oneof=new old"`
}

// HandleRequest ник пользователя, присланный в ветке old_pending.
type HandleRequest struct {
	UserID int64  `json:"user_id" validate:"required"`
	Handle string `json:"handle" validate:"required"`
}

// PriceRequest назначение индивидуальной цены админом.
type PriceRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
	Price  int   `json:"price" validate:"required,gt=0"`
}

// TrialStartRequest запуск пробного периода.
type TrialStartRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
}

// InvoiceRequest создание счёта на оплату подписки.
type InvoiceRequest struct {
	UserID      int64  `json:"user_id" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Periodicity string `json:"periodicity" validate:"required,oneof=PERIOD_30_DAYS PERIOD_90_DAYS"`
}

// CreateReelRequest создание нового рилса.
type CreateReelRequest struct {
	Title     string `json:"title,omitempty"`
	CreatedBy int64  `json:"created_by" validate:"required"`
}

// AssetRequest добавление или замена ассета рилса. Для видео и превью
// обязателен FileRef, для описания — Text.
type AssetRequest struct {
	Kind    AssetKind `json:"kind" validate:"required,oneof=video preview caption"`
	FileRef string    `json:"file_ref,omitempty"`
	Text    string    `json:"text,omitempty"`
}

// SetActiveRequest включение или выключение рилса в ротации.
type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}
