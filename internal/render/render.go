// Package render formats archived mail for Telegram. The same layout is
// used by pagination replies and push notifications.
package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/okmeder/mailgate/internal/i18n"
	"github.com/okmeder/mailgate/internal/mailparse"
)

// maxBodyRunes is the display truncation threshold. Stored mail is never
// touched.
const maxBodyRunes = 1000

// Mail renders one parsed mail as the text block shown to users.
func Mail(pack i18n.Pack, parsed mailparse.Parsed, address, date string) string {
	sender := parsed.Sender
	if sender == "" {
		sender = pack.NoSender
	}

	text := parsed.Text
	if runes := []rune(text); len(runes) > maxBodyRunes {
		text = string(runes[:maxBodyRunes]) + "\n\n...\n" + pack.TooLong
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\n", sender))
	sb.WriteString(fmt.Sprintf("To: %s\n", address))
	if date != "" {
		sb.WriteString(fmt.Sprintf("Date: %s\n", date))
	}
	sb.WriteString(fmt.Sprintf("Subject: %s\n", parsed.Subject))
	sb.WriteString(fmt.Sprintf("Content:\n%s", text))
	return sb.String()
}

// MiniAppButton builds the external-viewer web-app button. ok is false when
// no mini-app is configured, the mail id is unknown, or the URL is broken.
func MiniAppButton(pack i18n.Pack, miniAppURL string, mailID int64) (models.InlineKeyboardButton, bool) {
	if miniAppURL == "" || mailID == 0 {
		return models.InlineKeyboardButton{}, false
	}
	u, err := url.Parse(miniAppURL)
	if err != nil {
		return models.InlineKeyboardButton{}, false
	}
	u.Path = "/telegram_mail"
	q := u.Query()
	q.Set("mail_id", strconv.FormatInt(mailID, 10))
	u.RawQuery = q.Encode()

	return models.InlineKeyboardButton{
		Text:   pack.ViewMailBtn,
		WebApp: &models.WebAppInfo{URL: u.String()},
	}, true
}
