// Package notification delivers listing notifications through Telegram
package notification

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/raykavin/futwatch/pkg/core"
	"github.com/raykavin/futwatch/pkg/logger"
	tb "gopkg.in/tucnak/telebot.v2"
)

const defaultPollTimeout = 10 * time.Second

// CommandHandler is what the bot commands act upon
type CommandHandler interface {
	Register(ctx context.Context, id string) bool
	Unregister(ctx context.Context, id string) bool
	Status() core.Status
}

// commands lists the bot commands, shared by SetCommands and /help
var commands = []tb.Command{
	{Text: "start", Description: "Subscribe to new futures listings"},
	{Text: "stop", Description: "Unsubscribe from new futures listings"},
	{Text: "status", Description: "Check watcher status"},
	{Text: "help", Description: "Display help instructions"},
}

var _ core.Sender = (*Telegram)(nil)

// Telegram implements core.Sender on top of a telebot client
type Telegram struct {
	client *tb.Bot
	log    logger.Logger

	mu      sync.RWMutex
	ctx     context.Context
	handler CommandHandler
}

// Option is a function that configures a Telegram instance
type Option func(settings *tb.Settings)

// WithAPIURL points the client at another Bot API server
func WithAPIURL(url string) Option {
	return func(settings *tb.Settings) {
		settings.URL = url
	}
}

// WithPoller replaces the long poller, eg: with a middleware poller
func WithPoller(poller tb.Poller) Option {
	return func(settings *tb.Settings) {
		settings.Poller = poller
	}
}

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(settings core.TelegramSettings, log logger.Logger, options ...Option) (*Telegram, error) {
	timeout := settings.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}

	// Messages are sent as plain text, symbols such as BTC_USDT break markdown
	botSettings := tb.Settings{
		Token:  settings.Token,
		Poller: &tb.LongPoller{Timeout: timeout},
	}

	// Apply custom options if provided
	for _, option := range options {
		option(&botSettings)
	}

	client, err := tb.NewBot(botSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	if err := client.SetCommands(commands); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	bot := &Telegram{
		client: client,
		log:    log.WithField("component", "telegram"),
		ctx:    context.Background(),
	}

	// Register command handlers
	client.Handle("/start", bot.StartHandle)
	client.Handle("/stop", bot.StopHandle)
	client.Handle("/status", bot.StatusHandle)
	client.Handle("/help", bot.HelpHandle)

	return bot, nil
}

// Bind sets the handler commands are forwarded to
func (t *Telegram) Bind(handler CommandHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

// Start begins long polling in the background. ctx is handed to the command
// handlers and cancelling it stops the poller.
func (t *Telegram) Start(ctx context.Context) {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()

	go t.client.Start()
	go func() {
		<-ctx.Done()
		t.client.Stop()
	}()

	t.log.WithField("bot", t.client.Me.Username).Info("telegram bot started")
}

// Send implements core.Sender, to is a chat ID
func (t *Telegram) Send(ctx context.Context, to string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.client.Send(recipient(to), text); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	return nil
}

// StartHandle subscribes the chat
func (t *Telegram) StartHandle(m *tb.Message) {
	handler, ctx := t.binding()
	chat := chatID(m)
	if handler == nil || chat == "" {
		return
	}

	t.log.WithField("chat", chat).Info("received /start")
	handler.Register(ctx, chat)
}

// StopHandle unsubscribes the chat
func (t *Telegram) StopHandle(m *tb.Message) {
	handler, ctx := t.binding()
	chat := chatID(m)
	if handler == nil || chat == "" {
		return
	}

	t.log.WithField("chat", chat).Info("received /stop")
	if !handler.Unregister(ctx, chat) {
		t.reply(ctx, chat, "This chat is not subscribed. Send /start to subscribe.")
	}
}

// StatusHandle displays the current watcher status
func (t *Telegram) StatusHandle(m *tb.Message) {
	handler, ctx := t.binding()
	chat := chatID(m)
	if handler == nil || chat == "" {
		return
	}

	t.reply(ctx, chat, FormatStatus(handler.Status()))
}

// HelpHandle displays available commands
func (t *Telegram) HelpHandle(m *tb.Message) {
	_, ctx := t.binding()
	chat := chatID(m)
	if chat == "" {
		return
	}

	lines := make([]string, 0, len(commands))
	for _, command := range commands {
		lines = append(lines, fmt.Sprintf("/%s - %s", command.Text, command.Description))
	}

	t.reply(ctx, chat, strings.Join(lines, "\n"))
}

// FormatStatus renders a status as a plain text message
func FormatStatus(status core.Status) string {
	lastCheck := "never"
	if !status.LastCheck.IsZero() {
		lastCheck = status.LastCheck.UTC().Format("2006-01-02 15:04:05 UTC")
	}

	lastListing := "none"
	if status.LastListing != "" {
		lastListing = status.LastListing
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Exchange: %s\n", status.Exchange)
	fmt.Fprintf(&sb, "Subscribers: %d\n", status.Subscribers)
	fmt.Fprintf(&sb, "Known contracts: %d\n", status.Known)
	fmt.Fprintf(&sb, "Last check: %s\n", lastCheck)
	fmt.Fprintf(&sb, "Last listing: %s", lastListing)
	return sb.String()
}

// reply sends a message to a chat, failures are only logged
func (t *Telegram) reply(ctx context.Context, chat, text string) {
	if err := t.Send(ctx, chat, text); err != nil {
		t.log.WithError(err).Error("failed to send reply")
	}
}

func (t *Telegram) binding() (CommandHandler, context.Context) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.handler, t.ctx
}

// chatID returns the chat a message came from, empty when unknown
func chatID(m *tb.Message) string {
	if m == nil || m.Chat == nil {
		return ""
	}
	return strconv.FormatInt(m.Chat.ID, 10)
}

// recipient adapts a raw chat ID to tb.Recipient
type recipient string

func (r recipient) Recipient() string {
	return string(r)
}
