package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthbot/internal/conversation"
	"healthbot/internal/model"
	"healthbot/internal/service"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	webhook  tgbotapi.WebhookInfo
	updates  chan tgbotapi.Update
	stopOnce sync.Once
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.stopOnce.Do(func() { close(f.updates) })
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetWebhookInfo() (tgbotapi.WebhookInfo, error) {
	return f.webhook, nil
}

func (f *fakeAPI) HandleUpdate(r *http.Request) (*tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return nil, err
	}
	return &update, nil
}

// texts returns the text of every sent message, in order.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeAPI) last() tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) lastText() string {
	msg, _ := f.last().(tgbotapi.MessageConfig)
	return msg.Text
}

type staticWeather float64

func (w staticWeather) Temperature(context.Context, string) (float64, error) {
	return float64(w), nil
}

type staticFood []model.FoodItem

func (f staticFood) Search(context.Context, string, int) ([]model.FoodItem, error) {
	return f, nil
}

type harness struct {
	bot   *Bot
	api   *fakeAPI
	store *service.UserStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := service.NewUserStore(context.Background(), nil)
	require.NoError(t, err)

	clock := service.FixedClock(time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC))
	food := staticFood{{Name: "Яблоко", KcalPer100g: 52}, {Name: "Яблочный <сок>", KcalPer100g: 46}}
	machine := conversation.NewMachine(store, clock, staticWeather(28), food)
	api := newFakeAPI()
	return &harness{
		bot:   New(api, machine, store, service.NewReminderService(store, clock)),
		api:   api,
		store: store,
	}
}

func message(userID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: "Ann"},
		Chat: &tgbotapi.Chat{ID: userID, Type: "private"},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		command := strings.SplitN(text, " ", 2)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	}
	return tgbotapi.Update{Message: msg}
}

func callback(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID, Type: "private"}},
		Data:    data,
	}}
}

func (h *harness) say(userID int64, texts ...string) {
	for _, text := range texts {
		h.bot.handleUpdate(context.Background(), message(userID, text))
	}
}

func (h *harness) known(userID int64) bool {
	_, ok := h.store.Get(userID)
	return ok
}

func (h *harness) profile(userID int64) {
	h.say(userID, "/set_profile", "муж", "70", "175", "30", "45", "Москва")
}

func TestStartRegistersUser(t *testing.T) {
	h := newHarness(t)
	h.say(1, "/start")

	assert.True(t, h.known(1))
	assert.Contains(t, h.api.lastText(), "Привет, Ann!")
	assert.Contains(t, h.api.lastText(), "/set_profile")
}

func TestProfileDialogue(t *testing.T) {
	h := newHarness(t)
	h.profile(1)

	assert.Contains(t, h.api.lastText(), "3100 мл/день")
	u, ok := h.store.Get(1)
	require.True(t, ok)
	assert.True(t, u.HasProfile())
	_, isMenu := h.api.last().(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.True(t, isMenu)
}

func TestLoggingNeedsProfile(t *testing.T) {
	h := newHarness(t)
	for _, cmd := range []string{"/log_water", "/log_food", "/log_workout", "/check_progress"} {
		h.say(1, cmd)
		assert.Equal(t, msgNeedProfile, h.api.lastText(), cmd)
	}
	h.say(1, "/history")
	assert.Equal(t, msgNeedProfile, h.api.lastText())
}

func TestWaterShortcutAndProgress(t *testing.T) {
	h := newHarness(t)
	h.profile(1)

	h.say(1, "/log_water 250")
	assert.Contains(t, h.api.lastText(), "Записано: 250 мл")

	h.say(1, "/check_progress")
	assert.Contains(t, h.api.lastText(), "💧 Вода: 250 / 3100 мл")
}

func TestFoodDialogueWithCallback(t *testing.T) {
	h := newHarness(t)
	h.profile(1)

	h.say(1, "/log_food", "яблоко")
	msg := h.api.last().(tgbotapi.MessageConfig)
	keyboard, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.InlineKeyboard, 2)
	assert.Equal(t, "food:1", *keyboard.InlineKeyboard[1][0].CallbackData)

	h.bot.handleUpdate(context.Background(), callback(1, "food:9"))
	assert.Equal(t, "Ошибка выбора.", h.api.lastText())

	h.bot.handleUpdate(context.Background(), callback(1, "food:1"))
	assert.Contains(t, h.api.lastText(), "Яблочный &lt;сок&gt;")

	h.say(1, "200")
	assert.Contains(t, h.api.lastText(), "92.0 ккал")

	u, _ := h.store.Get(1)
	assert.Equal(t, 92.0, u.LoggedCaloriesKcal)
	assert.NotEmpty(t, h.api.requests)
}

func TestCancelDialogue(t *testing.T) {
	h := newHarness(t)
	h.profile(1)

	h.say(1, "/log_workout", "отмена")
	assert.Equal(t, msgCancelled, h.api.lastText())

	h.say(1, "/cancel")
	assert.Equal(t, msgNothingToDo, h.api.lastText())

	sent := len(h.api.texts())
	h.say(1, "просто текст")
	assert.Len(t, h.api.texts(), sent)
}

func TestMenuAliasStartsFlow(t *testing.T) {
	h := newHarness(t)
	h.profile(1)

	h.say(1, menuLabelWorkout, "бег", "30")
	assert.Contains(t, h.api.lastText(), "Бег 30 мин")
}

func TestPlotSendsPhoto(t *testing.T) {
	h := newHarness(t)
	h.profile(1)

	h.say(1, "/plot")
	assert.Equal(t, msgPlotUsage, h.api.lastText())

	h.say(1, "/plot water")
	photo, ok := h.api.last().(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, "📊 Water за последние 1 дней", photo.Caption)
	file, ok := photo.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(file.Bytes, []byte("\x89PNG")))
}

func TestHistoryCommand(t *testing.T) {
	h := newHarness(t)
	h.say(1, "/start", "/history")
	assert.Equal(t, "История пока пуста.", h.api.lastText())
}

func TestGroupChatsIgnored(t *testing.T) {
	h := newHarness(t)
	update := message(1, "/start")
	update.Message.Chat.Type = "group"
	h.bot.handleUpdate(context.Background(), update)

	assert.Empty(t, h.api.texts())
	assert.False(t, h.known(1))
}

func TestSendDailyReportsOnlyProfiled(t *testing.T) {
	h := newHarness(t)
	h.profile(1)
	h.say(2, "/start")
	before := len(h.api.texts())

	require.NoError(t, h.bot.SendDailyReports(context.Background()))

	texts := h.api.texts()[before:]
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Итоги дня")
}

func TestPollingStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	h.api.updates <- message(1, "/start")
	done := make(chan error, 1)
	go func() { done <- h.bot.Start(ctx) }()

	require.Eventually(t, func() bool { return h.known(1) }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("polling did not stop")
	}
}

func TestWebhookRoutes(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.bot.routes(context.Background(), true))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := json.Marshal(message(5, "/start"))
	require.NoError(t, err)
	resp, err = http.Post(srv.URL+webhookPath, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, h.known(5))

	resp, err = http.Post(srv.URL+webhookPath, "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnsureWebhook(t *testing.T) {
	h := newHarness(t)
	target := "https://bot.example.com" + webhookPath

	h.api.webhook = tgbotapi.WebhookInfo{URL: target}
	require.NoError(t, h.bot.ensureWebhook(target))
	assert.Empty(t, h.api.requests)

	h.api.webhook = tgbotapi.WebhookInfo{URL: "https://old.example.com/webhook"}
	require.NoError(t, h.bot.ensureWebhook(target))
	require.Len(t, h.api.requests, 1)
	wh, ok := h.api.requests[0].(tgbotapi.WebhookConfig)
	require.True(t, ok)
	assert.Equal(t, target, wh.URL.String())
}

func TestRegisterCommands(t *testing.T) {
	api := newFakeAPI()
	require.NoError(t, RegisterCommands(api))
	require.Len(t, api.requests, 1)
	cfg, ok := api.requests[0].(tgbotapi.SetMyCommandsConfig)
	require.True(t, ok)
	assert.Len(t, cfg.Commands, 8)
}
