package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ridebooking/internal/config"
	"ridebooking/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender is the part of tgbotapi.BotAPI the sink needs.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink posts new bookings to a dispatcher chat.
type TelegramSink struct {
	bot    TelegramSender
	chatID int64
}

func NewTelegramSink(cfg config.TelegramConfig) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug
	return NewTelegramSinkWithSender(bot, cfg.ChatID), nil
}

func NewTelegramSinkWithSender(bot TelegramSender, chatID int64) *TelegramSink {
	return &TelegramSink{bot: bot, chatID: chatID}
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Deliver(_ context.Context, event *events.Event) error {
	if event.Type != events.EventBookingCreated {
		return nil
	}

	var p events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		return fmt.Errorf("decode booking payload: %w", err)
	}

	msg := tgbotapi.NewMessage(s.chatID, formatBooking(p))
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func formatBooking(p events.BookingEventPayload) string {
	date := "as soon as possible"
	if p.Date != nil && *p.Date != "" {
		date = *p.Date
	}

	var b strings.Builder
	b.WriteString("New ride booking\n")
	fmt.Fprintf(&b, "Pickup: %s\n", p.Pickup)
	fmt.Fprintf(&b, "Dropoff: %s\n", p.Dropoff)
	fmt.Fprintf(&b, "When: %s\n", date)
	fmt.Fprintf(&b, "User: %s\n", p.UID)
	fmt.Fprintf(&b, "Status: %s", p.Status)
	return b.String()
}
