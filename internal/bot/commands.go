package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Commands is the menu published to Telegram.
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Приветствие и создание профиля"},
	{Command: "set_profile", Description: "Настроить профиль"},
	{Command: "log_water", Description: "Записать воду"},
	{Command: "log_food", Description: "Записать еду"},
	{Command: "log_workout", Description: "Записать тренировку"},
	{Command: "check_progress", Description: "Показать прогресс"},
	{Command: "history", Description: "История"},
	{Command: "plot", Description: "График"},
}

// RegisterCommands replaces the bot's command menu.
func RegisterCommands(api TelegramAPI) error {
	if _, err := api.Request(tgbotapi.NewSetMyCommands(Commands...)); err != nil {
		return fmt.Errorf("set my commands: %w", err)
	}
	return nil
}

func commandList() string {
	lines := []string{
		"• /set_profile — настройка профиля",
		"• /log_water &lt;мл&gt; — записать воду",
		"• /log_food — записать еду",
		"• /log_workout — записать тренировку",
		"• /check_progress — показать прогресс",
		"• /history — показать историю",
		"• /plot &lt;water|calories|burned&gt; — график за последние дни",
		"• /cancel — отменить текущий ввод",
	}
	return strings.Join(lines, "\n")
}
