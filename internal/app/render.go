package app

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agalitsyn/todo-list/internal/model"
	"github.com/agalitsyn/todo-list/internal/todo"
)

// Telegram allows up to 100 buttons; keep the keyboard readable.
const maxTaskButtons = 10

func severityEmoji(s todo.Severity) string {
	switch s {
	case todo.SeveritySuccess:
		return "✅"
	case todo.SeverityWarning:
		return "⚠️"
	case todo.SeverityError:
		return "❌"
	default:
		return "ℹ️"
	}
}

// renderView is plain text: task text is user input and must not be parsed
// as markup.
func renderView(view todo.View) string {
	var sb strings.Builder

	if view.Notification.Visible {
		fmt.Fprintf(&sb, "%s %s\n\n", severityEmoji(view.Notification.Severity), view.Notification.Message)
	}

	fmt.Fprintf(&sb, "📋 Tasks: %d active, %d done", view.Stats.Active, view.Stats.Completed)
	if view.Categories && view.State.Filter != model.FilterAll && view.State.Filter != "" {
		fmt.Fprintf(&sb, "\n🏷 Filter: %s", filterLabel(view.State.Filter))
	}
	if view.State.Search != "" {
		fmt.Fprintf(&sb, "\n🔎 Search: %q", view.State.Search)
	}
	sb.WriteString("\n")

	if len(view.Tasks) == 0 {
		if view.Stats.Total == 0 {
			sb.WriteString("\nNothing to do. Add a task with /add.")
		} else {
			sb.WriteString("\nNo tasks match.")
		}
		return sb.String()
	}

	for i, t := range view.Tasks {
		mark := "⬜"
		if t.Completed {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("\n%d. %s ", i+1, mark))
		if t.Category != "" {
			sb.WriteString(t.Category.Emoji() + " ")
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

func renderStats(stats model.TaskStats, categories bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Total: %d\n⏳ Active: %d\n✅ Completed: %d", stats.Total, stats.Active, stats.Completed)
	if categories {
		sb.WriteString("\n")
		for _, c := range model.Categories {
			fmt.Fprintf(&sb, "\n%s %s: %d active", c.Emoji(), c, stats.ActiveByCategory[c])
		}
	}
	return sb.String()
}

func filterLabel(f model.CategoryFilter) string {
	return cases.Title(language.English).String(strings.ToLower(string(f)))
}

func viewKeyboard(view todo.View) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton

	for i, t := range view.Tasks {
		if i == maxTaskButtons {
			break
		}
		n := strconv.Itoa(i + 1)
		toggle := "✅ " + n
		if t.Completed {
			toggle = "↩️ " + n
		}
		id := formatID(t.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggle, "toggle:"+id),
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+n, "del:"+id),
		))
	}

	if view.Categories {
		var filters []tgbotapi.InlineKeyboardButton
		for _, f := range append([]model.CategoryFilter{model.FilterAll}, categoryFilters()...) {
			label := filterLabel(f)
			if f == view.State.Filter {
				label = "• " + label
			}
			filters = append(filters, tgbotapi.NewInlineKeyboardButtonData(label, "filter:"+string(f)))
		}
		rows = append(rows, filters)
	}

	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func categoryFilters() []model.CategoryFilter {
	res := make([]model.CategoryFilter, 0, len(model.Categories))
	for _, c := range model.Categories {
		res = append(res, model.CategoryFilter(c))
	}
	return res
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
