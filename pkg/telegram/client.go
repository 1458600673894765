package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// botAPI is the part of tgbotapi.BotAPI the client uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Client struct {
	bot      botAPI
	UserName string
}

// NewClient authorizes the bot token against the Telegram API.
func NewClient(token string) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to authorize telegram bot")
	}

	bot.Debug = false

	return &Client{
		bot:      bot,
		UserName: bot.Self.UserName,
	}, nil
}

// SendMessage posts a plain text message to chatID.
func (c *Client) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := c.bot.Send(msg); err != nil {
		return errors.Wrapf(err, "failed to send telegram message to chat %d", chatID)
	}
	return nil
}
