// Package paginate renders one archived mail per page with stateless
// prev/next navigation.
package paginate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/okmeder/mailgate/internal/archive"
	"github.com/okmeder/mailgate/internal/i18n"
	"github.com/okmeder/mailgate/internal/mailparse"
	"github.com/okmeder/mailgate/internal/render"
	"github.com/okmeder/mailgate/internal/settings"
)

// ArchiveReader is the slice of the mail archive pagination needs
type ArchiveReader interface {
	MailAt(ctx context.Context, address string, offset int) (*archive.Mail, error)
}

// MailParser parses raw mail into displayable parts
type MailParser interface {
	Parse(raw []byte) (mailparse.Parsed, error)
}

// Page is one rendered pagination page
type Page struct {
	Text     string
	Keyboard *models.InlineKeyboardMarkup
}

// Paginator renders pages. It holds no per-session state; the cursor in
// the button payload is the only state.
type Paginator struct {
	archive ArchiveReader
	parser  MailParser
}

// New creates a paginator
func New(reader ArchiveReader, parser MailParser) *Paginator {
	return &Paginator{archive: reader, parser: parser}
}

// Render builds the page for (address, offset). Offset 0 is the newest
// mail; an offset past the end renders the no-more-mail placeholder with
// the next button withheld.
func (p *Paginator) Render(ctx context.Context, pack i18n.Pack, st settings.Settings, address string, offset int) (Page, error) {
	var (
		text    string
		hasMail bool
		mailID  int64
	)

	m, err := p.archive.MailAt(ctx, address, offset)
	switch {
	case errors.Is(err, archive.ErrNotFound):
		text = pack.NoMoreMail
	case err != nil:
		return Page{}, fmt.Errorf("failed to fetch mail at offset %d: %w", offset, err)
	default:
		hasMail = true
		mailID = m.ID
		parsed, err := p.parser.Parse([]byte(m.Raw))
		if err != nil {
			// Parse failure is shown in place of the body, not raised
			text = fmt.Sprintf("%s %v", pack.ParseFailed, err)
		} else {
			text = render.Mail(pack, parsed, address, m.CreatedAt.UTC().Format(time.RFC1123))
		}
	}

	var row []models.InlineKeyboardButton
	if offset > 0 {
		row = append(row, models.InlineKeyboardButton{
			Text:         pack.PrevBtn,
			CallbackData: EncodeCursor(address, offset-1),
		})
	}
	if btn, ok := render.MiniAppButton(pack, st.MiniAppURL, mailID); ok {
		row = append(row, btn)
	}
	if hasMail {
		row = append(row, models.InlineKeyboardButton{
			Text:         pack.NextBtn,
			CallbackData: EncodeCursor(address, offset+1),
		})
	}

	page := Page{Text: text}
	if len(row) > 0 {
		page.Keyboard = &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{row},
		}
	}
	return page, nil
}
