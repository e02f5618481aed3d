// Package notify — уведомление барбера о подтверждённом заказе.
package notify

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/barber-kiosk/internal/domain/catalog"
	"github.com/Spok95/barber-kiosk/internal/domain/orders"
	"github.com/Spok95/barber-kiosk/internal/domain/selection"
)

type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram api: %w", err)
	}
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

// OrderConfirmed шлёт барберу сводку заказа. Ошибка отправки заказ
// не ломает — логируем и живём дальше.
func (t *Telegram) OrderConfirmed(o orders.Order) {
	msg := tgbotapi.NewMessage(t.chatID, Summary(o))
	if _, err := t.api.Send(msg); err != nil {
		t.log.Error("barber notify failed", "order", o.ID, "err", err)
	}
}

// Summary — человекочитаемая сводка заказа, подписи из каталога.
func Summary(o orders.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pedido #%d\n", o.ID)

	hasHair := o.ServiceType == selection.ServiceHair || o.ServiceType == selection.ServiceBoth
	hasBeard := o.ServiceType == selection.ServiceBeard || o.ServiceType == selection.ServiceBoth

	if hasHair {
		fmt.Fprintf(&b, "Corte: %s\n", catalog.LabelFor(catalog.TypeHairStyle, o.HaircutStyleID))
		d := o.HaircutDetails
		if d.Method != "" {
			fmt.Fprintf(&b, "  Método: %s\n", catalog.LabelFor(catalog.TypeMethod, d.Method))
		}
		if d.MachineHeight != "" {
			fmt.Fprintf(&b, "  Máquina: %s\n", catalog.LabelFor(catalog.TypeMachineHeight, d.MachineHeight))
		}
		if d.FadeType != "" {
			fmt.Fprintf(&b, "  Degradê: %s\n", catalog.LabelFor(catalog.TypeFadeType, d.FadeType))
		}
		if d.ScissorHeight != "" {
			fmt.Fprintf(&b, "  Topo: %s\n", catalog.LabelFor(catalog.TypeScissorHeight, d.ScissorHeight))
		}
		if d.SideStyle != "" {
			fmt.Fprintf(&b, "  Laterais: %s\n", catalog.LabelFor(catalog.TypeSideStyle, d.SideStyle))
		}
		if d.Finish != "" {
			fmt.Fprintf(&b, "  Acabamento: %s\n", catalog.LabelFor(catalog.TypeFinishStyle, d.Finish))
		}
	}
	if hasBeard {
		fmt.Fprintf(&b, "Barba: %s\n", catalog.LabelFor(catalog.TypeBeardStyle, o.BeardStyleID))
		d := o.BeardDetails
		if d.Height != "" {
			fmt.Fprintf(&b, "  Altura: %s\n", catalog.LabelFor(catalog.TypeBeardHeight, d.Height))
		}
		if d.Contour != "" {
			fmt.Fprintf(&b, "  Contorno: %s\n", catalog.LabelFor(catalog.TypeBeardContour, d.Contour))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
