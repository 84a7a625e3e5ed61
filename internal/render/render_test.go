package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okmeder/mailgate/internal/i18n"
	"github.com/okmeder/mailgate/internal/mailparse"
)

func TestMailLayout(t *testing.T) {
	pack := i18n.PackFor("en")
	parsed := mailparse.Parsed{
		Sender:  "Alice <alice@example.com>",
		Subject: "hello",
		Text:    "short body",
	}

	text := Mail(pack, parsed, "foo@example.com", "2026-08-29")
	assert.Contains(t, text, "From: Alice <alice@example.com>")
	assert.Contains(t, text, "To: foo@example.com")
	assert.Contains(t, text, "Date: 2026-08-29")
	assert.Contains(t, text, "Subject: hello")
	assert.Contains(t, text, "Content:\nshort body")
}

func TestMailTruncationBoundary(t *testing.T) {
	pack := i18n.PackFor("en")

	exact := strings.Repeat("a", 1000)
	text := Mail(pack, mailparse.Parsed{Text: exact}, "foo@example.com", "")
	assert.NotContains(t, text, pack.TooLong, "1000 runes is not truncated")

	over := strings.Repeat("a", 1001)
	text = Mail(pack, mailparse.Parsed{Text: over}, "foo@example.com", "")
	assert.Contains(t, text, pack.TooLong)
	assert.NotContains(t, text, strings.Repeat("a", 1001))
	assert.Contains(t, text, strings.Repeat("a", 1000))
}

func TestMailNoSenderPlaceholder(t *testing.T) {
	pack := i18n.PackFor("en")
	text := Mail(pack, mailparse.Parsed{}, "foo@example.com", "")
	assert.Contains(t, text, "From: "+pack.NoSender)
}

func TestMiniAppButton(t *testing.T) {
	pack := i18n.PackFor("en")

	btn, ok := MiniAppButton(pack, "https://mail.example.com", 42)
	require.True(t, ok)
	assert.Equal(t, pack.ViewMailBtn, btn.Text)
	require.NotNil(t, btn.WebApp)
	assert.Equal(t, "https://mail.example.com/telegram_mail?mail_id=42", btn.WebApp.URL)

	_, ok = MiniAppButton(pack, "", 42)
	assert.False(t, ok, "no mini-app configured")

	_, ok = MiniAppButton(pack, "https://mail.example.com", 0)
	assert.False(t, ok, "no mail id found")
}
