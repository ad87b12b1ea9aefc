package models

import "time"

// SubscriptionStatus статус оплаченной подписки.
type SubscriptionStatus string

// Статусы подписки. Canceled сохраняет paid_until для истории.
const (
	SubscriptionNone     SubscriptionStatus = "NONE"
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
)

// Subscription строка леджера оплаченной подписки, не более одной на пользователя.
// PaidUntil == nil означает бессрочную подписку.
type Subscription struct {
	UserID    int64
	Status    SubscriptionStatus
	PaidUntil *time.Time
}

// EntitledAt сообщает, даёт ли подписка доступ в момент now.
func (s *Subscription) EntitledAt(now time.Time) bool {
	if s == nil || s.Status != SubscriptionActive {
		return false
	}
	return s.PaidUntil == nil || !s.PaidUntil.Before(now)
}

// TrialStatus статус пробного периода.
type TrialStatus string

// Статусы пробного периода.
const (
	TrialActive  TrialStatus = "ACTIVE"
	TrialExpired TrialStatus = "EXPIRED"
)

// FreeTrial строка леджера пробного периода. Создаётся не более одного раза:
// сам факт существования строки означает, что триал уже был использован.
type FreeTrial struct {
	UserID    int64
	StartedAt time.Time
	ExpiresAt time.Time
	Status    TrialStatus
}

// EntitledAt сообщает, даёт ли триал доступ в момент now.
func (t *FreeTrial) EntitledAt(now time.Time) bool {
	if t == nil || t.Status != TrialActive {
		return false
	}
	return !t.ExpiresAt.Before(now)
}

// TrialResult код исхода попытки запуска пробного периода.
type TrialResult string

// Исходы StartTrial. STARTED возвращается не более одного раза за всю
// историю пользователя.
const (
	TrialStarted       TrialResult = "STARTED"
	TrialPaidAlready   TrialResult = "PAID_ALREADY"
	TrialActiveAlready TrialResult = "ACTIVE_ALREADY"
	TrialAlreadyUsed   TrialResult = "ALREADY_USED"
)

// Period срок продления подписки. Months прибавляются календарно с прижатием
// ко дню месяца, Days — точными сутками. Нулевой Period означает бессрочный
// доступ (paid_until = NULL).
type Period struct {
	Months int
	Days   int
}

// IsZero сообщает, что срок не задан.
func (p Period) IsZero() bool { return p.Months == 0 && p.Days == 0 }
