package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"tg_meal_planner_bot/internal/domain"
	"tg_meal_planner_bot/internal/logging"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	PinChatMessage(ctx context.Context, params *bot.PinChatMessageParams) (bool, error)
}

// Notifier delivers formatted messages to Telegram chats. Chat ids are kept
// as strings because they come from user settings, where the recipient may be
// any chat the user pasted in.
type Notifier struct {
	sender messageSender
	logger *logrus.Entry
}

// NewNotifier constructs a Notifier over a message sender.
func NewNotifier(sender messageSender, logger *logrus.Entry) *Notifier {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Notifier{
		sender: sender,
		logger: logger,
	}
}

// SendText delivers a Markdown-formatted text message.
func (n *Notifier) SendText(ctx context.Context, chatID, text string) error {
	if n == nil || n.sender == nil {
		return errors.New("notifier is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if strings.TrimSpace(chatID) == "" {
		return errors.New("chat id is required")
	}

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendMenu delivers the weekly menu and pins it so the household always finds
// the current plan at the top of the chat. Pinning is best-effort: bots lack
// pin rights in many chats.
func (n *Notifier) SendMenu(ctx context.Context, chatID string, menu domain.WeekMenu) error {
	if n == nil || n.sender == nil {
		return errors.New("notifier is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if strings.TrimSpace(chatID) == "" {
		return errors.New("chat id is required")
	}

	message, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      FormatWeekMenu(menu),
		ParseMode: models.ParseModeMarkdownV1,
	})
	if err != nil {
		return fmt.Errorf("send menu: %w", err)
	}

	if message == nil {
		return nil
	}

	if _, pinErr := n.sender.PinChatMessage(ctx, &bot.PinChatMessageParams{
		ChatID:    chatID,
		MessageID: message.ID,
	}); pinErr != nil {
		n.logger.WithFields(logging.Fields{
			"event":   "menu_pin_failed",
			"chat_id": chatID,
		}).WithError(pinErr).Warn("failed to pin menu message")
	}

	return nil
}

// SendShoppingList delivers the formatted shopping list.
func (n *Notifier) SendShoppingList(ctx context.Context, chatID string, items []domain.ShoppingItem) error {
	return n.SendText(ctx, chatID, FormatShoppingList(items))
}

// FormatWeekMenu renders the menu grid as Markdown. Day names and dates are
// derived from the week_start Monday; a malformed week_start falls back to
// bare day numbers.
func FormatWeekMenu(menu domain.WeekMenu) string {
	var b strings.Builder
	b.WriteString("🍽️ *Weekly Menu Plan*\n\n")

	weekStart, parseErr := time.Parse("2006-01-02", menu.WeekStart)

	for i, day := range menu.Days {
		if parseErr == nil {
			date := weekStart.AddDate(0, 0, i)
			fmt.Fprintf(&b, "📅 *%s* (%s)\n", date.Weekday().String(), date.Format("Jan 2"))
		} else {
			fmt.Fprintf(&b, "📅 *Day %d*\n", i+1)
		}

		if day.Brunch != "" {
			fmt.Fprintf(&b, "🥐 Brunch: %s\n", day.Brunch)
		}
		if day.Dinner != "" {
			fmt.Fprintf(&b, "🌙 Dinner: %s\n", day.Dinner)
		}
		if day.Dessert != "" {
			fmt.Fprintf(&b, "🍰 Dessert: %s\n", day.Dessert)
		}
		if day.Brunch == "" && day.Dinner == "" && day.Dessert == "" {
			b.WriteString("_No meals planned_\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// FormatShoppingList renders the list split into to-buy and purchased groups.
func FormatShoppingList(items []domain.ShoppingItem) string {
	if len(items) == 0 {
		return "📋 *Shopping List for This Week*\n\nYour shopping list is empty. Add items in the app!"
	}

	var unchecked, checked []domain.ShoppingItem
	for _, item := range items {
		if item.IsChecked {
			checked = append(checked, item)
		} else {
			unchecked = append(unchecked, item)
		}
	}

	var b strings.Builder
	b.WriteString("📋 *Shopping List for This Week*\n\n")

	if len(unchecked) > 0 {
		b.WriteString("*To Buy:*\n")
		for i, item := range unchecked {
			fmt.Fprintf(&b, "%d. %s%s\n", i+1, item.Name, quantitySuffix(item.Quantity))
		}
		b.WriteString("\n")
	}

	if len(checked) > 0 {
		b.WriteString("*Already Purchased:*\n")
		for _, item := range checked {
			fmt.Fprintf(&b, "✅ %s%s\n", item.Name, quantitySuffix(item.Quantity))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func quantitySuffix(quantity string) string {
	if quantity == "" {
		return ""
	}

	return fmt.Sprintf(" (%s)", quantity)
}
