package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agalitsyn/todo-list/internal/model"
	"github.com/agalitsyn/todo-list/internal/storage/memory"
	"github.com/agalitsyn/todo-list/internal/todo"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
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

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("nothing was sent")
	}
	switch c := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return c.Text
	case tgbotapi.EditMessageTextConfig:
		return c.Text
	default:
		t.Fatalf("unexpected chattable %T", c)
		return ""
	}
}

func newTestBot() (*Bot, *fakeAPI, *memory.Store) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 4)}
	kv := memory.NewStore()
	cfg := BotConfig{UpdateTimeout: 1, Store: todo.DefaultConfig()}
	return newBot(api, tgbotapi.User{UserName: "todo_bot"}, cfg, kv), api, kv
}

func messageUpdate(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{Message: msg}
}

func mustHandle(t *testing.T, b *Bot, update tgbotapi.Update) {
	t.Helper()
	if err := b.handleUpdate(context.Background(), update); err != nil {
		t.Fatalf("handle update: %v", err)
	}
}

func chatTasks(t *testing.T, b *Bot, chatID int64) []model.Task {
	t.Helper()
	s, err := b.chatStore(context.Background(), chatID)
	if err != nil {
		t.Fatalf("chat store: %v", err)
	}
	return s.Tasks()
}

func TestBotAddDoneDelete(t *testing.T) {
	b, api, kv := newTestBot()

	mustHandle(t, b, messageUpdate(1, "/add work Buy milk"))
	tasks := chatTasks(t, b, 1)
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" || tasks[0].Category != model.CategoryWork {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if text := api.lastText(t); !strings.Contains(text, "Task added") || !strings.Contains(text, "1. ⬜ 💼 Buy milk") {
		t.Fatalf("unexpected reply:\n%s", text)
	}
	if _, ok, _ := kv.Get(context.Background(), "chat:1:tasks"); !ok {
		t.Fatal("expected list stored under the chat namespace")
	}

	mustHandle(t, b, messageUpdate(1, "/done 1"))
	if tasks = chatTasks(t, b, 1); !tasks[0].Completed {
		t.Fatal("expected task completed")
	}

	mustHandle(t, b, messageUpdate(1, "/del 1"))
	if tasks = chatTasks(t, b, 1); len(tasks) != 0 {
		t.Fatalf("expected empty list, got %+v", tasks)
	}
	if _, ok, _ := kv.Get(context.Background(), "chat:1:tasks"); ok {
		t.Fatal("expected key removed for empty list")
	}
}

func TestBotChatsAreIsolated(t *testing.T) {
	b, _, _ := newTestBot()

	mustHandle(t, b, messageUpdate(1, "/add first chat"))
	mustHandle(t, b, messageUpdate(2, "/add second chat"))

	if tasks := chatTasks(t, b, 1); len(tasks) != 1 || tasks[0].Text != "first chat" {
		t.Fatalf("unexpected chat 1 tasks: %+v", tasks)
	}
	if tasks := chatTasks(t, b, 2); len(tasks) != 1 || tasks[0].Text != "second chat" {
		t.Fatalf("unexpected chat 2 tasks: %+v", tasks)
	}
}

func TestBotPlainTextAddsInPrivateChat(t *testing.T) {
	b, _, _ := newTestBot()
	mustHandle(t, b, messageUpdate(1, "call the plumber"))

	tasks := chatTasks(t, b, 1)
	if len(tasks) != 1 || tasks[0].Category != model.CategoryPersonal {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	group := messageUpdate(2, "just chatting")
	group.Message.Chat.Type = "group"
	mustHandle(t, b, group)
	if tasks := chatTasks(t, b, 2); len(tasks) != 0 {
		t.Fatalf("group chatter must not become tasks: %+v", tasks)
	}
}

func TestBotMentionCommand(t *testing.T) {
	b, _, _ := newTestBot()
	update := messageUpdate(3, "@todo_bot /add urgent renew passport")
	update.Message.Chat.Type = "group"
	mustHandle(t, b, update)

	tasks := chatTasks(t, b, 3)
	if len(tasks) != 1 || tasks[0].Category != model.CategoryUrgent || tasks[0].Text != "renew passport" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestBotRejectsInvalidText(t *testing.T) {
	b, api, _ := newTestBot()

	mustHandle(t, b, messageUpdate(1, "/add "+strings.Repeat("x", 101)))
	if text := api.lastText(t); !strings.Contains(text, "too long") {
		t.Fatalf("expected warning, got:\n%s", text)
	}
	mustHandle(t, b, messageUpdate(1, "/add"))
	if text := api.lastText(t); !strings.Contains(text, "cannot be empty") {
		t.Fatalf("expected warning, got:\n%s", text)
	}
	if tasks := chatTasks(t, b, 1); len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %+v", tasks)
	}
}

func TestBotSearchFilterStats(t *testing.T) {
	b, api, _ := newTestBot()

	mustHandle(t, b, messageUpdate(1, "/add work Prepare slides"))
	mustHandle(t, b, messageUpdate(1, "/add personal Buy milk"))

	mustHandle(t, b, messageUpdate(1, "/search MILK"))
	text := api.lastText(t)
	if !strings.Contains(text, "Buy milk") || strings.Contains(text, "Prepare slides") {
		t.Fatalf("unexpected search result:\n%s", text)
	}

	mustHandle(t, b, messageUpdate(1, "/search"))
	mustHandle(t, b, messageUpdate(1, "/filter work"))
	text = api.lastText(t)
	if strings.Contains(text, "Buy milk") || !strings.Contains(text, "Filter: Work") {
		t.Fatalf("unexpected filter result:\n%s", text)
	}

	mustHandle(t, b, messageUpdate(1, "/stats"))
	text = api.lastText(t)
	if !strings.Contains(text, "Total: 2") || !strings.Contains(text, "Work: 1 active") {
		t.Fatalf("unexpected stats:\n%s", text)
	}
}

func TestBotCallbackToggle(t *testing.T) {
	b, api, _ := newTestBot()
	mustHandle(t, b, messageUpdate(1, "/add work Ship release"))
	id := chatTasks(t, b, 1)[0].ID

	mustHandle(t, b, tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    "toggle:" + formatID(id),
		Message: &tgbotapi.Message{MessageID: 42, Chat: &tgbotapi.Chat{ID: 1}},
	}})

	if !chatTasks(t, b, 1)[0].Completed {
		t.Fatal("expected task completed from callback")
	}
	if len(api.requests) != 1 {
		t.Fatalf("expected callback answered, got %d requests", len(api.requests))
	}
	edit, ok := api.sent[len(api.sent)-1].(tgbotapi.EditMessageTextConfig)
	if !ok || edit.MessageID != 42 {
		t.Fatalf("expected message edit, got %#v", api.sent[len(api.sent)-1])
	}

	mustHandle(t, b, tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-2",
		Data:    "del:" + formatID(id),
		Message: &tgbotapi.Message{MessageID: 42, Chat: &tgbotapi.Chat{ID: 1}},
	}})
	if tasks := chatTasks(t, b, 1); len(tasks) != 0 {
		t.Fatalf("expected task deleted, got %+v", tasks)
	}
}

func TestBotUnknownCommand(t *testing.T) {
	b, api, _ := newTestBot()
	mustHandle(t, b, messageUpdate(1, "/fly"))
	if text := api.lastText(t); !strings.Contains(text, "Unknown command") {
		t.Fatalf("unexpected reply: %s", text)
	}
}

func TestBotStartStopsOnClosedUpdates(t *testing.T) {
	b, api, _ := newTestBot()
	api.updates <- messageUpdate(1, "/add from the loop")
	close(api.updates)

	done := make(chan struct{})
	go func() {
		b.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
	}
	if tasks := chatTasks(t, b, 1); len(tasks) != 1 {
		t.Fatalf("expected task added from update loop, got %+v", tasks)
	}
}

func TestSplitCategory(t *testing.T) {
	text, c := splitCategory("urgent fix prod", true)
	if text != "fix prod" || c != model.CategoryUrgent {
		t.Fatalf("unexpected split: %q %s", text, c)
	}
	text, c = splitCategory("work", true)
	if text != "work" || c != model.CategoryPersonal {
		t.Fatalf("a lone category word is the task text, got %q %s", text, c)
	}
	text, c = splitCategory("urgent fix prod", false)
	if text != "urgent fix prod" || c != "" {
		t.Fatalf("unexpected split without categories: %q %s", text, c)
	}
}
