// Package models содержит доменные структуры воронки: пользователя,
// записи леджера (подписка и пробный период), рилсы и платежи,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Role этап онбординга пользователя.
type Role string

// Возможные роли. Pending-роли ждут либо оплаты, либо назначения цены админом.
const (
	RoleUnregistered Role = "unregistered"
	RoleNewPending   Role = "new_pending"
	RoleOldPending   Role = "old_pending"
	RoleNew          Role = "new"
	RoleOld          Role = "old"
)

// IsPending сообщает, находится ли роль в промежуточном состоянии онбординга.
func (r Role) IsPending() bool {
	return r == RoleNewPending || r == RoleOldPending
}

// Final возвращает терминальную роль для pending-состояния.
// Для остальных ролей возвращает их же.
func (r Role) Final() Role {
	switch r {
	case RoleNewPending:
		return RoleNew
	case RoleOldPending:
		return RoleOld
	}
	return r
}

// User представляет пользователя воронки. Идентификатор приходит из
// чат-транспорта и используется как первичный ключ.
type User struct {
	ID          int64      // Идентификатор пользователя в чат-транспорте
	Handle      string     // Ник (например, Instagram), пустая строка — не задан
	Role        Role       // Текущий этап онбординга
	ReferrerID  *int64     // Кто пригласил; выставляется один раз и не перезаписывается
	PriceOffer  *int       // Индивидуальная цена, назначенная админом
	CreatedAt   time.Time  // Дата первого контакта
	UpdatedAt   time.Time  // Дата последнего изменения
	LastSeen    *time.Time // Дата последней активности
}

// UserOverview строка админского списка пользователей.
type UserOverview struct {
	ID         int64     `json:"id"`
	Handle     string    `json:"handle,omitempty"`
	Role       Role      `json:"role"`
	Paid       bool      `json:"paid"`
	PriceOffer *int      `json:"price_offer,omitempty"`
	ReferrerID *int64    `json:"referrer_id,omitempty"`
	Referrals  int       `json:"referrals"`
	JoinedAt   time.Time `json:"joined_at"`
}

// Stats сводная статистика для админа.
type Stats struct {
	TotalUsers   int             `json:"total_users"`
	PaidUsers    int             `json:"paid_users"`
	PaymentsSum  int64           `json:"payments_sum"`
	TopReferrers []ReferralCount `json:"top_referrers"`
}

// ReferralCount количество приглашённых одним пользователем.
type ReferralCount struct {
	UserID int64 `json:"user_id"`
	Count  int   `json:"count"`
}
