package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/okmeder/mailgate/internal/access"
	"github.com/okmeder/mailgate/internal/binding"
	"github.com/okmeder/mailgate/internal/paginate"
	"github.com/okmeder/mailgate/internal/settings"
)

// handleStart handles /start
func (b *Bot) handleStart(ctx context.Context, req *request) {
	var sb strings.Builder
	sb.WriteString(req.pack.Welcome + "\n\n")
	if b.config.AddressPrefix != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", req.pack.CurrentPrefix, b.config.AddressPrefix))
	}
	if len(b.config.MailDomains) > 0 {
		sb.WriteString(fmt.Sprintf("%s %s\n", req.pack.CurrentDomains, strings.Join(b.config.MailDomains, ", ")))
	}
	sb.WriteString(req.pack.AvailableCommands + "\n")
	for _, cmd := range Commands(b.locales.PerUserEnabled()) {
		sb.WriteString(fmt.Sprintf("/%s: %s\n", cmd.Command, cmd.Description))
	}
	b.respond(ctx, req, sb.String())
}

// handleNew handles /new: asks the mail backend for a fresh address and
// keeps the returned credential.
func (b *Bot) handleNew(ctx context.Context, req *request) {
	if b.mailAPI == nil {
		b.respond(ctx, req, req.pack.NotConfigured)
		return
	}

	res, err := b.mailAPI.NewAddress(ctx, commandArg(req.text))
	if err != nil {
		b.logger.Error("failed to create address", "error", err)
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.CreateFailed, err))
		return
	}

	if err := b.registry.Append(ctx, req.userID, res.Credential); err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.CreateFailed, err))
		return
	}
	// Creation implicitly routes pushes to the creator
	if _, err := b.bindings.Bind(ctx, res.Address, req.userID, req.chatID, 0); err != nil {
		b.logger.Warn("failed to bind new address", "address", res.Address, "error", err)
	}

	var sb strings.Builder
	sb.WriteString(req.pack.CreateSuccess + "\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", req.pack.AddressLabel, res.Address))
	if res.Password != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", req.pack.PasswordLabel, res.Password))
	}
	sb.WriteString(fmt.Sprintf("%s %s", req.pack.CredentialLabel, res.Credential))
	b.respond(ctx, req, sb.String())
}

// handleAddress handles /address
func (b *Bot) handleAddress(ctx context.Context, req *request) {
	res, err := b.registry.ResolveAll(ctx, req.userID)
	if err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.GetAddressFailed, err))
		return
	}

	var sb strings.Builder
	sb.WriteString(req.pack.AddressList + "\n\n")
	for _, address := range res.Addresses {
		sb.WriteString(fmt.Sprintf("%s %s\n", req.pack.AddressLabel, address))
	}
	b.respond(ctx, req, sb.String())
}

// handleBindDispatch routes /bind and /bindtopic, which share a prefix
func (b *Bot) handleBindDispatch(ctx context.Context, req *request) {
	if commandToken(req.text) == "/bindtopic" {
		b.handleBindTopic(ctx, req)
		return
	}
	b.handleBind(ctx, req)
}

// bindCredential validates a caller-supplied credential, appends it to the
// caller's list and returns the address it resolves to.
func (b *Bot) bindCredential(ctx context.Context, req *request, token string) (string, error) {
	res, err := b.registry.Resolve(ctx, []string{token})
	if err != nil {
		return "", err
	}
	if len(res.Addresses) == 0 {
		return "", errors.New("credential is invalid or its address is gone")
	}
	if err := b.registry.Append(ctx, req.userID, token); err != nil {
		return "", err
	}
	return res.Addresses[0], nil
}

// handleBind handles /bind <credential>
func (b *Bot) handleBind(ctx context.Context, req *request) {
	token := commandArg(req.text)
	if token == "" {
		b.respond(ctx, req, req.pack.InputCredential)
		return
	}

	address, err := b.bindCredential(ctx, req, token)
	if err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.BindFailed, err))
		return
	}
	if _, err := b.bindings.Bind(ctx, address, req.userID, req.chatID, 0); err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.BindFailed, err))
		return
	}

	b.respond(ctx, req, fmt.Sprintf("%s\n%s %s", req.pack.BindSuccess, req.pack.AddressLabel, address))
}

// handleBindTopic handles /bindtopic <credential> inside a forum topic
func (b *Bot) handleBindTopic(ctx context.Context, req *request) {
	if req.threadID == 0 {
		b.respond(ctx, req, req.pack.TopicOnly)
		return
	}
	token := commandArg(req.text)
	if token == "" {
		b.respond(ctx, req, req.pack.InputCredential)
		return
	}

	address, err := b.bindCredential(ctx, req, token)
	if err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.BindFailed, err))
		return
	}
	if _, err := b.bindings.Bind(ctx, address, req.userID, req.chatID, req.threadID); err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.BindFailed, err))
		return
	}

	b.respond(ctx, req, fmt.Sprintf("%s\n%s %s\n%s %d\n%s",
		req.pack.BindSuccess, req.pack.AddressLabel, address,
		req.pack.TopicIDLabel, req.threadID, req.pack.TopicPushEnabled))
}

// handleUnbind handles /unbind <address>
func (b *Bot) handleUnbind(ctx context.Context, req *request) {
	address := commandArg(req.text)
	if address == "" {
		b.respond(ctx, req, req.pack.InputAddress)
		return
	}

	// A valid credential for the address is as good a proof as the
	// binding record's owner field
	res, err := b.registry.ResolveAll(ctx, req.userID)
	if err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.UnbindFailed, err))
		return
	}
	_, ownsCredential := res.AddressIDs[address]

	if err := b.bindings.Unbind(ctx, address, req.userID, ownsCredential); err != nil {
		if errors.Is(err, binding.ErrNotBound) {
			b.respond(ctx, req, fmt.Sprintf("%s %s", req.pack.NotBound, address))
			return
		}
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.UnbindFailed, err))
		return
	}

	b.respond(ctx, req, fmt.Sprintf("%s\n%s %s", req.pack.UnbindSuccess, req.pack.AddressLabel, address))
}

// handleDelete handles /delete <address>: deletes the mailbox upstream,
// then the local archive rows, the binding and the caller's credentials.
func (b *Bot) handleDelete(ctx context.Context, req *request) {
	address := commandArg(req.text)
	if address == "" {
		b.respond(ctx, req, req.pack.InputAddress)
		return
	}

	res, err := b.registry.ResolveAll(ctx, req.userID)
	if err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.DeleteFailed, err))
		return
	}
	addressID, ok := res.AddressIDs[address]
	if !ok {
		b.respond(ctx, req, fmt.Sprintf("%s %s", req.pack.NotBoundAddress, address))
		return
	}

	if b.mailAPI != nil {
		if err := b.mailAPI.DeleteAddress(ctx, addressID); err != nil {
			b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.DeleteFailed, err))
			return
		}
	}

	// The mailbox is gone; cleanup failures must still be surfaced, not
	// masked as success
	var cleanupErrs []error
	if err := b.archive.DeleteAddress(ctx, addressID); err != nil {
		cleanupErrs = append(cleanupErrs, fmt.Errorf("archive: %w", err))
	}
	if err := b.bindings.Remove(ctx, address); err != nil {
		cleanupErrs = append(cleanupErrs, fmt.Errorf("binding: %w", err))
	}
	if err := b.registry.RemoveByAddress(ctx, req.userID, address); err != nil {
		cleanupErrs = append(cleanupErrs, fmt.Errorf("credentials: %w", err))
	}
	if err := errors.Join(cleanupErrs...); err != nil {
		b.logger.Error("address deleted but cleanup failed", "address", address, "error", err)
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.DeleteFailed, err))
		return
	}

	b.respond(ctx, req, fmt.Sprintf("%s %s", req.pack.DeleteSuccess, address))
}

// handleMails handles /mails [address]
func (b *Bot) handleMails(ctx context.Context, req *request) {
	address := commandArg(req.text)

	res, err := b.registry.ResolveAll(ctx, req.userID)
	if err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.GetMailFailed, err))
		return
	}
	if address == "" && len(res.Addresses) > 0 {
		address = res.Addresses[0]
	}
	addressID, ok := res.AddressIDs[address]
	if !ok {
		b.respond(ctx, req, fmt.Sprintf("%s %s", req.pack.NotBoundAddress, address))
		return
	}
	// The credential may outlive the address row; re-check before querying
	exists, err := b.archive.AddressExists(ctx, addressID)
	if err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.GetMailFailed, err))
		return
	}
	if !exists {
		b.respond(ctx, req, req.pack.InvalidAddress)
		return
	}

	page, err := b.paginator.Render(ctx, req.pack, req.st, address, 0)
	if err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.GetMailFailed, err))
		return
	}
	if _, err := b.sendMessage(ctx, req.chatID, req.threadID, page.Text, page.Keyboard); err != nil {
		b.logger.Error("failed to send mail page", "chat_id", req.chatID, "error", err)
	}
}

// handleClean handles /cleaninvalidaddress
func (b *Bot) handleClean(ctx context.Context, req *request) {
	res, err := b.registry.Prune(ctx, req.userID)
	if err != nil {
		b.respond(ctx, req, fmt.Sprintf("%s %v", req.pack.CleanFailed, err))
		return
	}

	var sb strings.Builder
	sb.WriteString(req.pack.CleanSuccess + "\n\n")
	sb.WriteString(req.pack.CurrentAddressList + "\n\n")
	for _, address := range res.Addresses {
		sb.WriteString(fmt.Sprintf("%s %s\n", req.pack.AddressLabel, address))
	}
	b.respond(ctx, req, sb.String())
}

// handleLang handles /lang [zh|en]. Anything but a supported code is a
// status query, never an error.
func (b *Bot) handleLang(ctx context.Context, req *request) {
	if !b.locales.PerUserEnabled() {
		b.respond(ctx, req, req.pack.LangDisabled)
		return
	}

	code := strings.ToLower(commandArg(req.text))
	if code == "zh" || code == "en" {
		if err := b.locales.SetLanguage(ctx, req.userID, code); err != nil {
			b.respond(ctx, req, fmt.Sprintf("Error: %v", err))
			return
		}
		name := "中文"
		if code == "en" {
			name = "English"
		}
		b.respond(ctx, req, fmt.Sprintf("%s %s", req.pack.LangSetSuccess, name))
		return
	}

	saved := b.locales.Saved(ctx, req.userID)
	if saved == "" {
		saved = "auto"
	}
	b.respond(ctx, req, fmt.Sprintf("%s %s\n%s\n/lang zh - 中文\n/lang en - English",
		req.pack.CurrentLang, saved, req.pack.SelectLang))
}

// handleCallback handles pagination clicks. The button payload carries the
// whole cursor, so clicks from any device or message resolve independently.
func (b *Bot) handleCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	if cb.Message.Message == nil {
		// Still answer, or the client keeps its loading spinner
		b.answerCallback(ctx, cb.ID, "")
		return
	}
	msg := cb.Message.Message
	userID := strconv.FormatInt(cb.From.ID, 10)
	pack := b.locales.Resolve(ctx, userID)

	address, offset, ok := paginate.DecodeCursor(cb.Data)
	if !ok {
		// Malformed payloads are ignored without a user-visible error
		b.answerCallback(ctx, cb.ID, "")
		return
	}

	st, err := settings.Load(ctx, b.kvs)
	if err != nil {
		b.logger.Error("failed to load settings", "error", err)
		b.answerCallback(ctx, cb.ID, fmt.Sprintf("Error: %v", err))
		return
	}
	if !access.Admit(st, userID) {
		b.answerCallback(ctx, cb.ID, pack.NoPermission)
		return
	}

	res, err := b.registry.ResolveAll(ctx, userID)
	if err != nil {
		b.answerCallback(ctx, cb.ID, fmt.Sprintf("%s %v", pack.GetMailFailed, err))
		return
	}
	addressID, owns := res.AddressIDs[address]
	if !owns {
		b.answerCallback(ctx, cb.ID, fmt.Sprintf("%s %s", pack.NotBoundAddress, address))
		return
	}
	exists, err := b.archive.AddressExists(ctx, addressID)
	if err != nil {
		b.answerCallback(ctx, cb.ID, fmt.Sprintf("%s %v", pack.GetMailFailed, err))
		return
	}
	if !exists {
		b.answerCallback(ctx, cb.ID, pack.InvalidAddress)
		return
	}

	page, err := b.paginator.Render(ctx, pack, st, address, offset)
	if err != nil {
		b.answerCallback(ctx, cb.ID, fmt.Sprintf("%s %v", pack.GetMailFailed, err))
		return
	}
	if err := b.editMessage(ctx, msg.Chat.ID, msg.ID, page.Text, page.Keyboard); err != nil {
		b.logger.Error("failed to edit mail page", "chat_id", msg.Chat.ID, "error", err)
	}
	b.answerCallback(ctx, cb.ID, "")
}
