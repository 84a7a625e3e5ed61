package mailparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainMail = "From: Alice <alice@example.com>\r\n" +
	"To: foo@example.com\r\n" +
	"Subject: hello\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"verification code 123456\r\n"

const htmlMail = "From: noreply@example.com\r\n" +
	"To: foo@example.com\r\n" +
	"Subject: welcome\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><head><style>p{color:red}</style></head>" +
	"<body><p>Hello</p><div>Your code is <b>987</b></div></body></html>\r\n"

func TestParsePlain(t *testing.T) {
	p := NewParser()

	parsed, err := p.Parse([]byte(plainMail))
	require.NoError(t, err)
	assert.Equal(t, "Alice <alice@example.com>", parsed.Sender)
	assert.Equal(t, "hello", parsed.Subject)
	assert.Equal(t, "verification code 123456", parsed.Text)
}

func TestParseHTMLFallback(t *testing.T) {
	p := NewParser()

	parsed, err := p.Parse([]byte(htmlMail))
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", parsed.Sender)
	assert.Equal(t, "welcome", parsed.Subject)
	assert.Contains(t, parsed.Text, "Hello")
	assert.Contains(t, parsed.Text, "Your code is 987")
	assert.NotContains(t, parsed.Text, "color:red")
}

func TestParseGarbage(t *testing.T) {
	p := NewParser()

	_, err := p.Parse([]byte("\x00\x01not a mail"))
	assert.Error(t, err)
}
