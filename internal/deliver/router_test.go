package deliver

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okmeder/mailgate/internal/archive"
	"github.com/okmeder/mailgate/internal/binding"
	"github.com/okmeder/mailgate/internal/i18n"
	"github.com/okmeder/mailgate/internal/kv"
	"github.com/okmeder/mailgate/internal/mailparse"
	"github.com/okmeder/mailgate/internal/settings"
)

const rawMail = "From: a@example.com\r\nSubject: s\r\nContent-Type: text/plain\r\n\r\nbody\r\n"

type sentMessage struct {
	ChatID   int64
	ThreadID int
	Text     string
	Keyboard *models.InlineKeyboardMarkup
}

// recordingSender records dispatches and fails for chat ids in failFor
type recordingSender struct {
	sent    []sentMessage
	failFor map[int64]bool
}

func (s *recordingSender) Send(ctx context.Context, chatID int64, threadID int, text string, keyboard *models.InlineKeyboardMarkup) error {
	s.sent = append(s.sent, sentMessage{ChatID: chatID, ThreadID: threadID, Text: text, Keyboard: keyboard})
	if s.failFor[chatID] {
		return errors.New("telegram says no")
	}
	return nil
}

type stubLookup struct {
	ids map[string]int64
}

func (s *stubLookup) MailIDByMessageID(ctx context.Context, address, messageID string) (int64, error) {
	id, ok := s.ids[messageID]
	if !ok {
		return 0, archive.ErrNotFound
	}
	return id, nil
}

type routerFixture struct {
	router   *Router
	sender   *recordingSender
	bindings *binding.Store
	store    *kv.Memory
}

func newFixture(t *testing.T, ids map[string]int64) *routerFixture {
	t.Helper()
	store := kv.NewMemory()
	bindings := binding.NewStore(store)
	sender := &recordingSender{failFor: map[int64]bool{}}
	locales := i18n.NewResolver(store, "zh", true)
	router := NewRouter(bindings, locales, &stubLookup{ids: ids}, mailparse.NewParser(), sender, slog.Default())
	return &routerFixture{router: router, sender: sender, bindings: bindings, store: store}
}

func TestDeliverUnboundNoGlobalIsNoop(t *testing.T) {
	f := newFixture(t, nil)

	err := f.router.Deliver(context.Background(), settings.Settings{}, "foo@x.com", []byte(rawMail), "m1")
	require.NoError(t, err)
	assert.Empty(t, f.sender.sent)
}

func TestDeliverFanOutSurvivesFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.bindings.Bind(ctx, "foo@x.com", "300", 300, 0)
	require.NoError(t, err)
	f.sender.failFor[200] = true

	st := settings.Settings{
		GlobalPushEnabled: true,
		GlobalPushTargets: []string{"100", "200"},
	}
	err = f.router.Deliver(ctx, st, "foo@x.com", []byte(rawMail), "m1")
	assert.Error(t, err, "the failed target is reported")

	// All three targets were attempted, in order, despite 200 failing
	require.Len(t, f.sender.sent, 3)
	assert.Equal(t, int64(100), f.sender.sent[0].ChatID)
	assert.Equal(t, int64(200), f.sender.sent[1].ChatID)
	assert.Equal(t, int64(300), f.sender.sent[2].ChatID)
}

func TestDeliverTopicBinding(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int64{"m1": 55})
	_, err := f.bindings.Bind(ctx, "foo@example.com", "100", 100, 7)
	require.NoError(t, err)

	st := settings.Settings{MiniAppURL: "https://mail.example.com"}
	err = f.router.Deliver(ctx, st, "foo@example.com", []byte(rawMail), "m1")
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	sent := f.sender.sent[0]
	assert.Equal(t, int64(100), sent.ChatID)
	assert.Equal(t, 7, sent.ThreadID)

	// Only the mini-app button, never pagination buttons
	require.NotNil(t, sent.Keyboard)
	require.Len(t, sent.Keyboard.InlineKeyboard, 1)
	require.Len(t, sent.Keyboard.InlineKeyboard[0], 1)
	btn := sent.Keyboard.InlineKeyboard[0][0]
	require.NotNil(t, btn.WebApp)
	assert.Equal(t, "https://mail.example.com/telegram_mail?mail_id=55", btn.WebApp.URL)
	assert.Empty(t, btn.CallbackData)
}

func TestDeliverLegacyBindingUsesOwnerAsChat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.store.Put(ctx, "tg:foo@x.com", "424242"))

	err := f.router.Deliver(ctx, settings.Settings{}, "foo@x.com", []byte(rawMail), "")
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, int64(424242), f.sender.sent[0].ChatID)
	assert.Zero(t, f.sender.sent[0].ThreadID)
}

func TestDeliverBoundOwnerLocale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.bindings.Bind(ctx, "foo@x.com", "100", 100, 0)
	require.NoError(t, err)
	// Owner saved English; default is Chinese
	require.NoError(t, f.store.Put(ctx, "tg:lang:100", "en"))

	st := settings.Settings{
		GlobalPushEnabled: true,
		GlobalPushTargets: []string{"900"},
	}
	// Mail without a From header renders the localized no-sender placeholder
	senderless := "Subject: s\r\nContent-Type: text/plain\r\n\r\nbody\r\n"
	err = f.router.Deliver(ctx, st, "foo@x.com", []byte(senderless), "")
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 2)
	// Broadcast renders in the default locale, the bound chat in the owner's
	assert.Contains(t, f.sender.sent[0].Text, i18n.PackFor("zh").NoSender)
	assert.Contains(t, f.sender.sent[1].Text, i18n.PackFor("en").NoSender)
}

func TestDeliverUnparseableMailStillDispatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.bindings.Bind(ctx, "foo@x.com", "100", 100, 0)
	require.NoError(t, err)

	st := settings.Settings{
		GlobalPushEnabled: true,
		GlobalPushTargets: []string{"900"},
	}
	err = f.router.Deliver(ctx, st, "foo@x.com", []byte("\x00\x01not a mail at all"), "")
	require.NoError(t, err)

	// Every target still gets a notification, carrying the localized
	// parse-failure text in place of the mail body
	require.Len(t, f.sender.sent, 2)
	assert.Equal(t, int64(900), f.sender.sent[0].ChatID)
	assert.Equal(t, int64(100), f.sender.sent[1].ChatID)
	for _, sent := range f.sender.sent {
		assert.Contains(t, sent.Text, i18n.PackFor("zh").ParseFailed)
	}
}

func TestDeliverNoKeyboardWithoutMiniApp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int64{"m1": 55})
	_, err := f.bindings.Bind(ctx, "foo@x.com", "100", 100, 0)
	require.NoError(t, err)

	err = f.router.Deliver(ctx, settings.Settings{}, "foo@x.com", []byte(rawMail), "m1")
	require.NoError(t, err)
	require.Len(t, f.sender.sent, 1)
	assert.Nil(t, f.sender.sent[0].Keyboard)
}
