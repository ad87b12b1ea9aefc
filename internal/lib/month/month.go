// Package month содержит календарную арифметику для продления подписок.
package month

import "time"

// AddMonths прибавляет n календарных месяцев к дате, прижимая число к
// последнему дню целевого месяца. В отличие от time.AddDate здесь
// 31 января + 1 месяц даёт 28/29 февраля, а не 2/3 марта.
func AddMonths(t time.Time, n int) time.Time {
	year, mon, day := t.Date()

	totalMonths := int(mon) - 1 + n
	targetYear := year + totalMonths/12
	targetMonth := time.Month(totalMonths%12 + 1)
	if totalMonths < 0 {
		// целочисленное деление в Go округляет к нулю
		targetYear = year + (totalMonths-11)/12
		targetMonth = time.Month((totalMonths%12+12)%12 + 1)
	}

	if last := DaysIn(targetYear, targetMonth); day > last {
		day = last
	}

	h, m, s := t.Clock()
	return time.Date(targetYear, targetMonth, day, h, m, s, t.Nanosecond(), t.Location())
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, mon time.Month) int {
	return time.Date(year, mon+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
