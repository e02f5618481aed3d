package styles

import (
	"time"

	"github.com/Spok95/barber-kiosk/internal/domain/catalog"
)

// Override — пользовательская картинка поверх позиции каталога.
// На ключ (user, type, option) в любой момент существует максимум
// одна запись (upsert, last-write-wins).
type Override struct {
	UserID     string             `json:"userId"`
	OptionID   string             `json:"optionId"`
	OptionType catalog.OptionType `json:"optionType"`
	ImageURL   string             `json:"imageUrl"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// Key — составной ключ переопределения. Тип опции обязателен:
// одинаковые id легально живут в разных категориях
// (например "natural" у финиша и у контура бороды).
type Key struct {
	UserID     string
	OptionType catalog.OptionType
	OptionID   string
}

func (o Override) key() Key {
	return Key{UserID: o.UserID, OptionType: o.OptionType, OptionID: o.OptionID}
}
