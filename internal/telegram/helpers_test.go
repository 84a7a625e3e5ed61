package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandArg(t *testing.T) {
	assert.Equal(t, "", commandArg("/address"))
	assert.Equal(t, "", commandArg("/mails "))
	assert.Equal(t, "a@example.com", commandArg("/mails a@example.com"))
	assert.Equal(t, "eyJhbGciOi.abc.def", commandArg("/bind eyJhbGciOi.abc.def"))
	assert.Equal(t, "two words", commandArg("/new two words"))
}

func TestCommandToken(t *testing.T) {
	assert.Equal(t, "/bind", commandToken("/bind abc"))
	assert.Equal(t, "/bindtopic", commandToken("/bindtopic abc"))
	assert.Equal(t, "/bindtopic", commandToken("/BindTopic@MailBot abc"))
	assert.Equal(t, "/mails", commandToken("  /mails  "))
}

func TestCommandsHidesLangWhenDisabled(t *testing.T) {
	all := Commands(true)
	trimmed := Commands(false)

	assert.Len(t, trimmed, len(all)-1)
	for _, cmd := range trimmed {
		assert.NotEqual(t, "lang", cmd.Command)
	}
}
