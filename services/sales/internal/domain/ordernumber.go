package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// fallbackInitials используется, когда клиент не выбран
// или из названия не удалось извлечь ни одной буквы.
const fallbackInitials = "GEN"

// GenerateOrderNumber формирует человекочитаемый номер заказа вида
// SO-{инициалы}-{ГГГГММДД}-{последние 4 цифры epoch millis}.
// Инициалы — до трёх заглавных первых букв слов названия клиента.
// Номер можно перегенерировать по требованию; при отключённой
// автогенерации поле заполняется оператором вручную.
func GenerateOrderNumber(customerName string, now time.Time) string {
	return fmt.Sprintf("SO-%s-%s-%04d",
		customerInitials(customerName),
		now.Format("20060102"),
		now.UnixMilli()%10000,
	)
}

// customerInitials извлекает до трёх заглавных первых букв слов названия.
func customerInitials(name string) string {
	initials := make([]rune, 0, 3)

	for _, word := range strings.Fields(name) {
		for _, r := range word {
			// Берём только первую руну слова и только если это буква.
			if unicode.IsLetter(r) {
				initials = append(initials, unicode.ToUpper(r))
			}
			break
		}
		if len(initials) == 3 {
			break
		}
	}

	if len(initials) == 0 {
		return fallbackInitials
	}
	return string(initials)
}
