package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"feastiq/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender - часть *tgbotapi.BotAPI, нужная для отправки сообщений.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier присылает администраторам в Telegram короткое сообщение о новой брони.
type Notifier struct {
	bot     Sender
	chatIDs []int64
}

func NewNotifier(token, admins string) (*Notifier, error) {
	chatIDs, err := ParseChatIDs(admins)
	if err != nil {
		return nil, err
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return NewNotifierWithSender(bot, chatIDs), nil
}

func NewNotifierWithSender(bot Sender, chatIDs []int64) *Notifier {
	return &Notifier{bot: bot, chatIDs: chatIDs}
}

// ParseChatIDs разбирает список chat id через запятую.
func ParseChatIDs(admins string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(admins, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("no telegram chat ids configured")
	}
	return ids, nil
}

func (n *Notifier) Channel() string {
	return model.ChannelTelegram
}

// Notify отправляет сообщение каждому администратору; ошибки по отдельным чатам объединяются.
func (n *Notifier) Notify(ctx context.Context, r model.Reservation) error {
	text := AlertText(r)
	var errs []error
	for _, chatID := range n.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

func AlertText(r model.Reservation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New reservation #%d\n", r.ID)
	fmt.Fprintf(&b, "%s, %s guest(s)\n", r.Name, r.Guests)
	fmt.Fprintf(&b, "%s %s\n", r.Date, r.Time)
	fmt.Fprintf(&b, "Phone: %s\n", r.Phone)
	if r.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", r.Email)
	}
	if r.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", r.Message)
	}
	return b.String()
}
