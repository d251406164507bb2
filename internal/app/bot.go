package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agalitsyn/todo-list/internal/model"
	"github.com/agalitsyn/todo-list/internal/storage"
	"github.com/agalitsyn/todo-list/internal/todo"
	"github.com/agalitsyn/todo-list/version"
)

type BotConfig struct {
	UpdateTimeout int
	Store         todo.Config
}

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Bot struct {
	api    botAPI
	client *tgbotapi.BotAPI
	self   tgbotapi.User

	cfg    BotConfig
	kv     model.KeyValueStore
	logger lgr.L

	mu     sync.Mutex
	stores map[int64]*todo.Store
}

func NewBot(
	cfg BotConfig,
	token string,
	logger tgbotapi.BotLogger,
	kv model.KeyValueStore,
) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if err := tgbotapi.SetLogger(logger); err != nil {
		return nil, err
	}
	b := newBot(client, client.Self, cfg, kv)
	b.client = client
	return b, nil
}

func newBot(api botAPI, self tgbotapi.User, cfg BotConfig, kv model.KeyValueStore) *Bot {
	return &Bot{
		api:    api,
		self:   self,
		cfg:    cfg,
		kv:     kv,
		logger: lgr.Std,
		stores: make(map[int64]*todo.Store),
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				log.Printf("DEBUG updates channel closed")
				return
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				log.Printf("ERROR handling update %d: %s", update.UpdateID, err)
			}

		case <-ctx.Done():
			log.Printf("DEBUG stopped: %s", ctx.Err())
			return
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return b.handleCallbackQuery(ctx, update)
	}

	if update.Message == nil { // ignore any non-Message updates
		return nil
	}

	if !update.Message.IsCommand() {
		command, ok := parseCommand(update.Message.Text, b.self.UserName)
		if ok {
			name, args, _ := strings.Cut(command, " ")
			return b.handleCommand(ctx, update.Message, name, args)
		}

		// In a private chat any text is a new task.
		if update.Message.Chat != nil && update.Message.Chat.IsPrivate() && strings.TrimSpace(update.Message.Text) != "" {
			return b.handleCommand(ctx, update.Message, "add", update.Message.Text)
		}
		return nil
	}

	return b.handleCommand(ctx, update.Message, update.Message.Command(), update.Message.CommandArguments())
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, command, args string) error {
	chatID := msg.Chat.ID
	switch command {
	case "start", "help":
		return b.showMainMenu(chatID)
	case "add":
		return b.addCommand(ctx, chatID, args)
	case "done", "toggle":
		return b.taskCommand(ctx, chatID, args, func(id int64) todo.Intent { return todo.ToggleIntent{ID: id} })
	case "del", "delete":
		return b.taskCommand(ctx, chatID, args, func(id int64) todo.Intent { return todo.DeleteIntent{ID: id} })
	case "search":
		return b.dispatchAndShow(ctx, chatID, todo.SearchIntent{Query: strings.TrimSpace(args)})
	case "filter":
		return b.dispatchAndShow(ctx, chatID, todo.FilterIntent{Filter: model.ParseCategoryFilter(args)})
	case "clear":
		return b.dispatchAndShow(ctx, chatID, todo.ClearCompletedIntent{})
	case "list":
		return b.showList(ctx, chatID)
	case "stats":
		return b.statsCommand(ctx, chatID)
	case "status":
		return b.statusCommand(ctx, chatID)
	default:
		return b.send(tgbotapi.NewMessage(chatID, "Unknown command. Try /help."))
	}
}

func (b *Bot) addCommand(ctx context.Context, chatID int64, args string) error {
	text, category := splitCategory(args, b.cfg.Store.Categories)
	return b.dispatchAndShow(ctx, chatID, todo.AddIntent{Text: text, Category: category})
}

// splitCategory takes a leading category word off args. Without one the
// task goes to Personal.
func splitCategory(args string, categories bool) (string, model.Category) {
	args = strings.TrimSpace(args)
	if !categories {
		return args, ""
	}
	first, rest, _ := strings.Cut(args, " ")
	if c, err := model.ParseCategory(first); err == nil && strings.TrimSpace(rest) != "" {
		return rest, c
	}
	return args, model.CategoryPersonal
}

func (b *Bot) taskCommand(ctx context.Context, chatID int64, args string, intent func(id int64) todo.Intent) error {
	store, err := b.chatStore(ctx, chatID)
	if err != nil {
		return err
	}

	id, ok := todo.ResolveRef(store.Visible(), args)
	if !ok {
		return b.send(tgbotapi.NewMessage(chatID, "Which task? Pass its number from /list."))
	}
	view, _ := store.Dispatch(ctx, intent(id))
	return b.sendView(chatID, view)
}

func (b *Bot) dispatchAndShow(ctx context.Context, chatID int64, intent todo.Intent) error {
	store, err := b.chatStore(ctx, chatID)
	if err != nil {
		return err
	}
	view, err := store.Dispatch(ctx, intent)
	var verr *model.ValidationError
	if err != nil && !errors.As(err, &verr) {
		return err
	}
	return b.sendView(chatID, view)
}

func (b *Bot) showList(ctx context.Context, chatID int64) error {
	store, err := b.chatStore(ctx, chatID)
	if err != nil {
		return err
	}
	view := store.View()
	// Stale notifications are not repeated on a plain listing.
	view.Notification = todo.Notification{}
	return b.sendView(chatID, view)
}

func (b *Bot) statsCommand(ctx context.Context, chatID int64) error {
	store, err := b.chatStore(ctx, chatID)
	if err != nil {
		return err
	}
	return b.send(tgbotapi.NewMessage(chatID, renderStats(store.Stats(), b.cfg.Store.Categories)))
}

func (b *Bot) statusCommand(ctx context.Context, chatID int64) error {
	statusText := fmt.Sprintf("🤖 *Bot status*\n\n✅ Running\n📊 Version: %s", version.String())
	if lister, ok := b.kv.(storage.KeyLister); ok {
		keys, err := lister.Keys(ctx, "chat:")
		if err != nil {
			log.Printf("WARN could not count stored lists: %s", err)
		} else {
			statusText += fmt.Sprintf("\n🗂 Stored lists: %d", len(keys))
		}
	}
	msg := tgbotapi.NewMessage(chatID, statusText)
	msg.ParseMode = "Markdown"
	return b.send(msg)
}

func (b *Bot) sendView(chatID int64, view todo.View) error {
	msg := tgbotapi.NewMessage(chatID, renderView(view))
	if kb, ok := viewKeyboard(view); ok {
		msg.ReplyMarkup = kb
	}
	return b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	_, err := b.api.Send(c)
	return err
}

func (b *Bot) chatStore(ctx context.Context, chatID int64) (*todo.Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.stores[chatID]; ok {
		return s, nil
	}

	s := todo.NewStore(storage.Namespace(b.kv, storage.ChatPrefix(chatID)), b.cfg.Store, todo.WithLogger(b.logger))
	if err := s.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("could not load list for chat %d: %w", chatID, err)
	}
	log.Printf("DEBUG loaded list for chat %d", chatID)
	b.stores[chatID] = s
	return s, nil
}

func (b *Bot) SetDebug(debug bool) {
	if b.client != nil {
		b.client.Debug = debug
	}
}

func (b *Bot) GetSelf() tgbotapi.User {
	return b.self
}

func parseCommand(text string, botUsername string) (string, bool) {
	prefix := "@" + botUsername + " /"
	if strings.HasPrefix(text, prefix) {
		return strings.TrimPrefix(text, prefix), true
	}
	return "", false
}

func (b *Bot) showMainMenu(chatID int64) error {
	text := fmt.Sprintf("🤖 *To-do list*\n\n"+
		"/add `[work|personal|urgent]` text - new task\n"+
		"/done N - complete or reopen task N\n"+
		"/del N - delete task N\n"+
		"/search text - search, empty to reset\n"+
		"/filter all|work|personal|urgent\n"+
		"/clear - remove completed\n"+
		"/stats - counters\n\n"+
		"_Version: %s_", version.String())

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Tasks", "cmd_list"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", "cmd_stats"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤖 Status", "cmd_status"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	return b.send(msg)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) error {
	callback := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		log.Printf("ERROR answering callback query: %s", err)
	}

	if update.CallbackQuery.Message == nil || update.CallbackQuery.Message.Chat == nil {
		return nil
	}
	data := update.CallbackQuery.Data
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID

	switch data {
	case "cmd_list":
		return b.showList(ctx, chatID)
	case "cmd_stats":
		return b.statsCommand(ctx, chatID)
	case "cmd_status":
		return b.statusCommand(ctx, chatID)
	}

	action, arg, ok := strings.Cut(data, ":")
	if !ok {
		return nil
	}

	var intent todo.Intent
	switch action {
	case "toggle", "del":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("bad callback data %q: %w", data, err)
		}
		if action == "toggle" {
			intent = todo.ToggleIntent{ID: id}
		} else {
			intent = todo.DeleteIntent{ID: id}
		}
	case "filter":
		intent = todo.FilterIntent{Filter: model.ParseCategoryFilter(arg)}
	default:
		return nil
	}

	store, err := b.chatStore(ctx, chatID)
	if err != nil {
		return err
	}
	view, _ := store.Dispatch(ctx, intent)

	kb, ok := viewKeyboard(view)
	if !ok {
		kb = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, renderView(view), kb)
	return b.send(edit)
}
