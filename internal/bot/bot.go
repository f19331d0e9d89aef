package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"healthbot/internal/chart"
	"healthbot/internal/conversation"
	"healthbot/internal/metrics"
	"healthbot/internal/service"
)

const cbFoodPrefix = "food:"

const (
	btnCancelDialog   = "⏪ Отменить ввод"
	menuLabelWater    = "💧 Вода"
	menuLabelFood     = "🍽 Еда"
	menuLabelWorkout  = "🏃 Тренировка"
	menuLabelProgress = "📊 Прогресс"
)

const (
	msgNeedProfile = "Сначала настройте профиль /set_profile"
	msgUnsupported = "Команда не поддерживается. Загляни в /help."
	msgCancelled   = "⏪ Ввод отменён."
	msgNothingToDo = "Сейчас нечего отменять."
	msgPlotUsage   = "Используйте: /plot water, /plot calories или /plot burned"
	msgPlotFailed  = "Не удалось построить график, попробуйте позже."
)

// TelegramAPI is the part of *tgbotapi.BotAPI the bot uses.
type TelegramAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetWebhookInfo() (tgbotapi.WebhookInfo, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// Bot routes Telegram updates to the dialogue machine and the reports.
type Bot struct {
	api       TelegramAPI
	machine   *conversation.Machine
	store     *service.UserStore
	reminders *service.ReminderService
}

func New(api TelegramAPI, machine *conversation.Machine, store *service.UserStore, reminders *service.ReminderService) *Bot {
	return &Bot{
		api:       api,
		machine:   machine,
		store:     store,
		reminders: reminders,
	}
}

// NewAPI authorizes the token against Telegram.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Printf("[info] bot authorized on account %s", api.Self.UserName)
	return api, nil
}

// Start polls updates until ctx is cancelled. Updates are handled one at a time.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		metrics.IncUpdate("callback")
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("[error] handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		metrics.IncUpdate("message")
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("[error] handle message: %v", err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if isCancelDialogInput(msg.Text) {
		return b.handleCancel(msg)
	}
	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	reply, err := b.machine.Text(ctx, msg.From.ID, msg.Text)
	observe(msg.From.ID, err)
	if reply.Empty() {
		// No active dialogue: free text is ignored.
		return nil
	}
	return b.sendReply(msg.Chat.ID, reply)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "set_profile":
		return b.begin(ctx, msg, conversation.FlowProfile, "")
	case "log_water":
		return b.begin(ctx, msg, conversation.FlowWater, strings.TrimSpace(msg.CommandArguments()))
	case "log_food":
		return b.begin(ctx, msg, conversation.FlowFood, "")
	case "log_workout":
		return b.begin(ctx, msg, conversation.FlowWorkout, "")
	case "check_progress":
		return b.handleProgress(msg)
	case "history":
		return b.handleHistory(msg)
	case "plot":
		return b.handlePlot(msg)
	case "cancel":
		return b.handleCancel(msg)
	default:
		return b.sendText(msg.Chat.ID, msgUnsupported)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	b.machine.Register(ctx, msg.From.ID)

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}
	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я бот для воды, калорий и тренировок.</b>\n"+
			"Начни с /set_profile.\n\nКоманды:\n%s",
		escape(name), commandList(),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Подсказки</b>\n"+commandList())
}

func (b *Bot) begin(ctx context.Context, msg *tgbotapi.Message, flow conversation.Flow, args string) error {
	reply, err := b.machine.Begin(ctx, msg.From.ID, flow, args)
	observe(msg.From.ID, err)
	return b.sendReply(msg.Chat.ID, reply)
}

func (b *Bot) handleProgress(msg *tgbotapi.Message) error {
	text, err := b.reminders.Summary(msg.From.ID)
	if err != nil {
		metrics.IncRejection("no_profile")
		return b.sendText(msg.Chat.ID, msgNeedProfile)
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHistory(msg *tgbotapi.Message) error {
	text, err := b.reminders.History(msg.From.ID)
	if errors.Is(err, service.ErrUserNotFound) {
		return b.sendText(msg.Chat.ID, msgNeedProfile)
	}
	if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handlePlot(msg *tgbotapi.Message) error {
	metric, err := service.ParseMetric(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, msgPlotUsage)
	}
	points, err := b.reminders.Series(msg.From.ID, metric)
	if errors.Is(err, service.ErrUserNotFound) {
		return b.sendText(msg.Chat.ID, msgNeedProfile)
	}
	if err != nil {
		return err
	}

	dates := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		dates[i] = p.Date.String()
		values[i] = p.Value
	}
	title := capitalize(string(metric))
	img, err := chart.Render(dates, values, title)
	if err != nil {
		log.Printf("[error] plot user=%d metric=%s: %v", msg.From.ID, metric, err)
		return b.sendText(msg.Chat.ID, msgPlotFailed)
	}

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: string(metric) + ".png", Bytes: img})
	photo.Caption = fmt.Sprintf("📊 %s за последние %d дней", title, len(points))
	_, err = b.api.Send(photo)
	return err
}

func (b *Bot) handleCancel(msg *tgbotapi.Message) error {
	if b.machine.Cancel(msg.From.ID) {
		log.Printf("[info] dialogue cancelled user=%d", msg.From.ID)
		return b.sendWithReplyMarkup(msg.Chat.ID, msgCancelled, mainMenuKeyboard())
	}
	return b.sendText(msg.Chat.ID, msgNothingToDo)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("[warn] callback ack: %v", err)
	}

	if !strings.HasPrefix(cb.Data, cbFoodPrefix) {
		return nil
	}
	log.Printf("[info] callback food choice user=%d data=%s", cb.From.ID, cb.Data)
	index, err := strconv.Atoi(strings.TrimPrefix(cb.Data, cbFoodPrefix))
	if err != nil {
		return nil
	}

	reply, err := b.machine.Select(ctx, cb.From.ID, index)
	observe(cb.From.ID, err)
	return b.sendReply(cb.Message.Chat.ID, reply)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelWater:
		return true, b.begin(ctx, msg, conversation.FlowWater, "")
	case menuLabelFood:
		return true, b.begin(ctx, msg, conversation.FlowFood, "")
	case menuLabelWorkout:
		return true, b.begin(ctx, msg, conversation.FlowWorkout, "")
	case menuLabelProgress:
		return true, b.handleProgress(msg)
	default:
		return false, nil
	}
}

// observe counts a rejected dialogue input. The reply already tells the user what went wrong.
func observe(userID int64, err error) {
	if err == nil {
		return
	}
	reason := conversation.Reason(err)
	metrics.IncRejection(reason)
	if reason == "collaborator" {
		log.Printf("[warn] user=%d: %v", userID, err)
		return
	}
	log.Printf("[info] rejected input user=%d reason=%s: %v", userID, reason, err)
}

// sendReply renders a machine reply. Its text may carry user input, so it is escaped.
func (b *Bot) sendReply(chatID int64, reply conversation.Reply) error {
	if reply.Empty() {
		return nil
	}
	switch {
	case len(reply.Choices) > 0:
		return b.sendWithReplyMarkup(chatID, escape(reply.Text), choicesKeyboard(reply.Choices))
	case reply.Done:
		return b.sendWithReplyMarkup(chatID, escape(reply.Text), mainMenuKeyboard())
	default:
		return b.sendWithReplyMarkup(chatID, escape(reply.Text), cancelKeyboard())
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func choicesKeyboard(choices []conversation.Choice) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for _, c := range choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Label, cbFoodPrefix+strconv.Itoa(c.Index)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelWater),
			tgbotapi.NewKeyboardButton(menuLabelFood),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelWorkout),
			tgbotapi.NewKeyboardButton(menuLabelProgress),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "отменить ввод" || value == "отмена"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
