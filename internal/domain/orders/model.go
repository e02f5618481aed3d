package orders

import (
	"time"

	"github.com/Spok95/barber-kiosk/internal/domain/selection"
)

// Order — подтверждённый выбор клиента, который видит барбер.
// Детали храним как есть (id опций), подписи резолвятся из каталога
// при показе/экспорте.
type Order struct {
	ID             int64
	SessionID      string
	UserID         string
	ServiceType    selection.ServiceType
	HaircutStyleID string
	HaircutDetails selection.HaircutDetails
	BeardStyleID   string
	BeardDetails   selection.BeardDetails
	CreatedAt      time.Time
}
