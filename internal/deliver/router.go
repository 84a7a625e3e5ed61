// Package deliver routes newly arrived mail to every configured delivery
// target: the global broadcast list and the address binding (direct chat or
// topic thread). Each target is best-effort; one failing dispatch never
// stops the others.
package deliver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/okmeder/mailgate/internal/archive"
	"github.com/okmeder/mailgate/internal/binding"
	"github.com/okmeder/mailgate/internal/i18n"
	"github.com/okmeder/mailgate/internal/mailparse"
	"github.com/okmeder/mailgate/internal/render"
	"github.com/okmeder/mailgate/internal/settings"
)

// Sender dispatches one rendered notification. threadID 0 targets the
// chat's main stream.
type Sender interface {
	Send(ctx context.Context, chatID int64, threadID int, text string, keyboard *models.InlineKeyboardMarkup) error
}

// MailIDLookup resolves a Message-ID header to an archive id
type MailIDLookup interface {
	MailIDByMessageID(ctx context.Context, address, messageID string) (int64, error)
}

// MailParser parses raw mail into displayable parts
type MailParser interface {
	Parse(raw []byte) (mailparse.Parsed, error)
}

// Router fans out mail-arrival events
type Router struct {
	bindings *binding.Store
	locales  *i18n.Resolver
	lookup   MailIDLookup
	parser   MailParser
	sender   Sender
	logger   *slog.Logger
}

// NewRouter creates a delivery router
func NewRouter(bindings *binding.Store, locales *i18n.Resolver, lookup MailIDLookup, parser MailParser, sender Sender, logger *slog.Logger) *Router {
	return &Router{
		bindings: bindings,
		locales:  locales,
		lookup:   lookup,
		parser:   parser,
		sender:   sender,
		logger:   logger.With("component", "delivery_router"),
	}
}

// Deliver dispatches one notification per applicable target. Unbound mail
// with global push off is a no-op. Per-target failures are logged,
// collected and returned joined; remaining targets are still attempted.
func (r *Router) Deliver(ctx context.Context, st settings.Settings, address string, raw []byte, messageID string) error {
	rec, err := r.bindings.Lookup(ctx, address)
	bound := err == nil
	if err != nil && !errors.Is(err, binding.ErrNotBound) {
		r.logger.Error("failed to look up binding", "address", address, "error", err)
	}

	if !bound && !st.GlobalPush() {
		return nil
	}

	// Unparseable mail is still pushed: targets get the localized
	// parse-failure text instead of losing the notification entirely
	parsed, parseErr := r.parser.Parse(raw)
	if parseErr != nil {
		r.logger.Error("failed to parse mail", "address", address, "error", parseErr)
	}

	// Best-effort: a missing id only drops the mini-app button
	var mailID int64
	if messageID != "" {
		id, err := r.lookup.MailIDByMessageID(ctx, address, messageID)
		if err != nil && !errors.Is(err, archive.ErrNotFound) {
			r.logger.Warn("failed to look up mail id", "address", address, "error", err)
		} else {
			mailID = id
		}
	}

	date := time.Now().UTC().Format(time.RFC1123)
	var errs []error

	dispatch := func(pack i18n.Pack, chatID int64, threadID int) {
		var text string
		if parseErr != nil {
			text = fmt.Sprintf("%s %v", pack.ParseFailed, parseErr)
		} else {
			text = render.Mail(pack, parsed, address, date)
		}
		var keyboard *models.InlineKeyboardMarkup
		if btn, ok := render.MiniAppButton(pack, st.MiniAppURL, mailID); ok {
			keyboard = &models.InlineKeyboardMarkup{
				InlineKeyboard: [][]models.InlineKeyboardButton{{btn}},
			}
		}
		if err := r.sender.Send(ctx, chatID, threadID, text, keyboard); err != nil {
			r.logger.Error("failed to dispatch notification",
				"address", address, "chat_id", chatID, "thread_id", threadID, "error", err)
			errs = append(errs, fmt.Errorf("dispatch to %d: %w", chatID, err))
		}
	}

	if st.GlobalPush() {
		pack := r.locales.Default()
		for _, target := range st.GlobalPushTargets {
			chatID, err := strconv.ParseInt(target, 10, 64)
			if err != nil {
				r.logger.Warn("skipping malformed push target", "target", target)
				continue
			}
			dispatch(pack, chatID, 0)
		}
	}

	if bound {
		chatID := rec.ChatID
		if chatID == 0 {
			// Legacy record: the owner id is the chat id
			id, err := strconv.ParseInt(rec.Owner, 10, 64)
			if err != nil {
				r.logger.Warn("skipping binding with malformed owner", "address", address, "owner", rec.Owner)
				return errors.Join(errs...)
			}
			chatID = id
		}
		dispatch(r.locales.Resolve(ctx, rec.Owner), chatID, rec.ThreadID)
	}

	return errors.Join(errs...)
}
