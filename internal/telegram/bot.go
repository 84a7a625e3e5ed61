package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/okmeder/mailgate/internal/access"
	"github.com/okmeder/mailgate/internal/archive"
	"github.com/okmeder/mailgate/internal/binding"
	"github.com/okmeder/mailgate/internal/config"
	"github.com/okmeder/mailgate/internal/credential"
	"github.com/okmeder/mailgate/internal/i18n"
	"github.com/okmeder/mailgate/internal/kv"
	"github.com/okmeder/mailgate/internal/mailapi"
	"github.com/okmeder/mailgate/internal/paginate"
	"github.com/okmeder/mailgate/internal/settings"
)

// Bot is the Telegram command surface
type Bot struct {
	bot       *bot.Bot
	config    *config.Config
	kvs       kv.Store
	registry  *credential.Registry
	bindings  *binding.Store
	locales   *i18n.Resolver
	paginator *paginate.Paginator
	archive   *archive.Archive
	mailAPI   *mailapi.Client // nil when not configured
	logger    *slog.Logger
}

// BotDeps dependencies for creating a bot
type BotDeps struct {
	Config    *config.Config
	KV        kv.Store
	Registry  *credential.Registry
	Bindings  *binding.Store
	Locales   *i18n.Resolver
	Paginator *paginate.Paginator
	Archive   *archive.Archive
	MailAPI   *mailapi.Client
	Logger    *slog.Logger
}

// NewBot creates a new Telegram bot
func NewBot(deps BotDeps) (*Bot, error) {
	b := &Bot{
		config:    deps.Config,
		kvs:       deps.KV,
		registry:  deps.Registry,
		bindings:  deps.Bindings,
		locales:   deps.Locales,
		paginator: deps.Paginator,
		archive:   deps.Archive,
		mailAPI:   deps.MailAPI,
		logger:    deps.Logger.With("component", "telegram_bot"),
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
	}

	tgBot, err := bot.New(deps.Config.TelegramToken, opts...)
	if err != nil {
		return nil, err
	}

	b.bot = tgBot
	b.registerHandlers()

	return b, nil
}

// registerHandlers registers command handlers
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.command(b.handleStart))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypePrefix, b.command(b.handleNew))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/address", bot.MatchTypePrefix, b.command(b.handleAddress))
	// "/bind" is a prefix of "/bindtopic"; a single handler dispatches on
	// the exact command token
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/bind", bot.MatchTypePrefix, b.command(b.handleBindDispatch))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unbind", bot.MatchTypePrefix, b.command(b.handleUnbind))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delete", bot.MatchTypePrefix, b.command(b.handleDelete))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mails", bot.MatchTypePrefix, b.command(b.handleMails))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cleaninvalidaddress", bot.MatchTypePrefix, b.command(b.handleClean))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/lang", bot.MatchTypePrefix, b.command(b.handleLang))
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "mail_", bot.MatchTypePrefix, b.handleCallback)
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("starting telegram bot")
	b.bot.Start(ctx)
}

// defaultHandler handles unknown messages
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.Text != "" && update.Message.Text[0] == '/' {
		b.logger.Debug("unknown command", "text", update.Message.Text)
	}
}

// request is the resolved state one command handler runs with. Every
// handler receives the identity, locale pack and settings snapshot
// explicitly; nothing reads ambient state.
type request struct {
	userID   string
	chatID   int64
	threadID int
	text     string
	pack     i18n.Pack
	st       settings.Settings
}

type handlerFunc func(ctx context.Context, req *request)

// command wraps a handler with the per-interaction chain: channel-scope
// filter (silent drop), identity extraction, settings snapshot, allow-list
// gate, locale resolution.
func (b *Bot) command(fn handlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil {
			return
		}

		if !access.ScopeAllowed(string(msg.Chat.Type), msg.Text) {
			// Dropped without a reply so group chats stay clean
			return
		}

		if msg.From == nil {
			b.reply(ctx, msg, b.locales.Default().UnableGetUser)
			return
		}
		userID := strconv.FormatInt(msg.From.ID, 10)
		pack := b.locales.Resolve(ctx, userID)

		st, err := settings.Load(ctx, b.kvs)
		if err != nil {
			b.logger.Error("failed to load settings", "error", err)
			b.reply(ctx, msg, fmt.Sprintf("Error: %v", err))
			return
		}

		if !access.Admit(st, userID) {
			b.reply(ctx, msg, pack.NoPermission)
			return
		}

		fn(ctx, &request{
			userID:   userID,
			chatID:   msg.Chat.ID,
			threadID: msg.MessageThreadID,
			text:     msg.Text,
			pack:     pack,
			st:       st,
		})
	}
}
