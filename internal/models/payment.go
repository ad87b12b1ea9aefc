package models

import "time"

// InvoiceStatus статус счёта на оплату.
type InvoiceStatus string

// Статусы счёта. Переход pending -> paid одноразовый и необратимый.
const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
)

// Invoice счёт, созданный через платёжный шлюз. PaymentURL отдаётся
// пользователю для оплаты.
type Invoice struct {
	ID          string
	UserID      int64
	Email       string
	Status      InvoiceStatus
	Periodicity string
	PaymentURL  string
	CreatedAt   time.Time
}

// PaymentEvent проверенное тело вебхука об оплате. Подпись и разбор JSON
// выполняет вызывающая сторона, сюда приходит уже распарсенная структура.
type PaymentEvent struct {
	UserID      int64  `json:"user_id"`
	Status      string `json:"status"`
	PaymentID   string `json:"payment_id,omitempty"`
	Periodicity string `json:"periodicity,omitempty"`
	Amount      int64  `json:"amount,omitempty"`
}

// ConfirmOutcome код исхода обработки платёжного события.
type ConfirmOutcome string

// Исходы Confirm. Skipped — статус не success, Duplicate — повторная
// доставка уже учтённого события.
const (
	ConfirmApplied   ConfirmOutcome = "APPLIED"
	ConfirmDuplicate ConfirmOutcome = "DUPLICATE"
	ConfirmSkipped   ConfirmOutcome = "SKIPPED"
)
