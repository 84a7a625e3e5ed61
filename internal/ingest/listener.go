// Package ingest watches the catch-all IMAP inbox of the mail backend,
// archives every arriving message and hands it to the delivery router.
package ingest

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/okmeder/mailgate/internal/archive"
	"github.com/okmeder/mailgate/internal/deliver"
	"github.com/okmeder/mailgate/internal/kv"
	"github.com/okmeder/mailgate/internal/settings"
)

// Config for the catch-all listener
type Config struct {
	Server       string // host:port
	User         string
	Password     string
	DialTimeout  time.Duration
	PollInterval time.Duration
}

// Listener is the catch-all IMAP ingest loop
type Listener struct {
	cfg     Config
	archive *archive.Archive
	router  *deliver.Router
	kvs     kv.Store
	logger  *slog.Logger

	client  *client.Client
	lastUID uint32
}

// New creates a catch-all listener
func New(cfg Config, arch *archive.Archive, router *deliver.Router, kvs kv.Store, logger *slog.Logger) *Listener {
	return &Listener{
		cfg:     cfg,
		archive: arch,
		router:  router,
		kvs:     kvs,
		logger:  logger.With("component", "ingest"),
	}
}

// Run polls the catch-all inbox until the context is cancelled,
// reconnecting with backoff on failures.
func (l *Listener) Run(ctx context.Context) {
	interval := l.cfg.PollInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if l.client == nil {
			if err := l.connect(); err != nil {
				l.logger.Error("failed to connect", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(10 * time.Second):
				}
				continue
			}
		}

		if err := l.fetchNew(ctx); err != nil {
			l.logger.Warn("fetch failed, reconnecting", "error", err)
			l.disconnect()
			continue
		}

		select {
		case <-ctx.Done():
			l.disconnect()
			return
		case <-ticker.C:
		}
	}
}

func (l *Listener) connect() error {
	l.logger.Info("connecting to IMAP server", "server", l.cfg.Server)

	timeout := l.cfg.DialTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", l.cfg.Server, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	imapClient, err := client.New(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create IMAP client: %w", err)
	}
	if err := imapClient.Login(l.cfg.User, l.cfg.Password); err != nil {
		imapClient.Logout()
		return fmt.Errorf("failed to login: %w", err)
	}

	mbox, err := imapClient.Select("INBOX", false)
	if err != nil {
		imapClient.Logout()
		return fmt.Errorf("failed to select INBOX: %w", err)
	}

	l.client = imapClient
	if mbox.UidNext > 0 {
		l.lastUID = mbox.UidNext - 1
	}
	l.logger.Info("connected to IMAP server", "uid_next", mbox.UidNext)
	return nil
}

func (l *Listener) disconnect() {
	if l.client != nil {
		l.client.Logout()
		l.client = nil
	}
}

func (l *Listener) fetchNew(ctx context.Context) error {
	seqSet := new(imap.SeqSet)
	seqSet.AddRange(l.lastUID+1, 0)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- l.client.UidFetch(seqSet, items, messages)
	}()

	for msg := range messages {
		// The range fetch echoes the last seen message back
		if msg.Uid <= l.lastUID {
			continue
		}
		if err := l.handle(ctx, msg, section); err != nil {
			l.logger.Error("failed to ingest message", "uid", msg.Uid, "error", err)
		}
		if msg.Uid > l.lastUID {
			l.lastUID = msg.Uid
		}
	}

	if err := <-done; err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	return nil
}

func (l *Listener) handle(ctx context.Context, msg *imap.Message, section *imap.BodySectionName) error {
	body := msg.GetBody(section)
	if body == nil {
		return fmt.Errorf("message has no body section")
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	var address, messageID string
	if msg.Envelope != nil {
		messageID = msg.Envelope.MessageId
		if len(msg.Envelope.To) > 0 {
			address = strings.ToLower(msg.Envelope.To[0].Address())
		}
	}
	if address == "" {
		return fmt.Errorf("message has no recipient")
	}

	if _, err := l.archive.EnsureAddress(ctx, address); err != nil {
		return err
	}
	if err := l.archive.InsertMail(ctx, &archive.Mail{
		MessageID: messageID,
		Address:   address,
		Raw:       string(raw),
	}); err != nil {
		return err
	}

	l.logger.Info("mail archived", "address", address, "uid", msg.Uid)

	st, err := settings.Load(ctx, l.kvs)
	if err != nil {
		return err
	}
	if err := l.router.Deliver(ctx, st, address, raw, messageID); err != nil {
		// Partial delivery failures were already logged per target
		return fmt.Errorf("delivery incomplete: %w", err)
	}
	return nil
}
