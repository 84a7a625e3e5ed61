// Package mailparse turns a raw RFC 822 message into the sender, subject
// and plain text shown to users.
package mailparse

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"
)

// Parsed is the extracted view of a raw mail
type Parsed struct {
	Sender  string
	Subject string
	Text    string
}

// Parser parses raw mail
type Parser struct {
	html *htmlToText
}

// NewParser creates a mail parser
func NewParser() *Parser {
	return &Parser{html: newHTMLToText()}
}

// Parse extracts sender, subject and text body. HTML-only mail is converted
// to plain text.
func (p *Parser) Parse(raw []byte) (Parsed, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return Parsed{}, fmt.Errorf("failed to read mail: %w", err)
	}

	var parsed Parsed
	if addrs, err := mr.Header.AddressList("From"); err == nil && len(addrs) > 0 {
		from := addrs[0]
		if from.Name != "" {
			parsed.Sender = fmt.Sprintf("%s <%s>", from.Name, from.Address)
		} else {
			parsed.Sender = from.Address
		}
	}
	if subject, err := mr.Header.Subject(); err == nil {
		parsed.Subject = subject
	}

	var bodyText, bodyHTML string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(ct, "text/plain") && bodyText == "":
			bodyText = string(body)
		case strings.HasPrefix(ct, "text/html") && bodyHTML == "":
			bodyHTML = string(body)
		}
	}

	parsed.Text = strings.TrimSpace(bodyText)
	if parsed.Text == "" && bodyHTML != "" {
		text, err := p.html.convert(bodyHTML)
		if err == nil {
			parsed.Text = text
		}
	}

	return parsed, nil
}
