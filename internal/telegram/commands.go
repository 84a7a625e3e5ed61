package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var allCommands = []models.BotCommand{
	{Command: "start", Description: "开始使用 | Get started"},
	{Command: "new", Description: "创建新邮箱地址 | Create a new address"},
	{Command: "address", Description: "查看已绑定的地址 | List bound addresses"},
	{Command: "bind", Description: "绑定邮箱凭证 | Bind an address credential"},
	{Command: "bindtopic", Description: "绑定邮箱到当前话题 | Bind an address to this topic"},
	{Command: "unbind", Description: "解绑邮箱地址 | Unbind an address"},
	{Command: "delete", Description: "删除邮箱地址 | Delete an address"},
	{Command: "mails", Description: "查看邮件 | Browse mail"},
	{Command: "cleaninvalidaddress", Description: "清理无效地址 | Clean invalid addresses"},
	{Command: "lang", Description: "设置语言 | Set language"},
}

// Commands returns the advertised command list. The language command is
// hidden when per-user language is disabled.
func Commands(allowUserLang bool) []models.BotCommand {
	if allowUserLang {
		return allCommands
	}
	out := make([]models.BotCommand, 0, len(allCommands))
	for _, cmd := range allCommands {
		if cmd.Command == "lang" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

// SetupCommands publishes the command list to Telegram
func (b *Bot) SetupCommands(ctx context.Context) error {
	_, err := b.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: Commands(b.locales.PerUserEnabled()),
	})
	return err
}
