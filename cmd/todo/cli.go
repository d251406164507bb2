package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/agalitsyn/todo-list/internal/model"
	"github.com/agalitsyn/todo-list/internal/todo"
)

type cli struct {
	store      *todo.Store
	out        io.Writer
	categories bool

	faint   *color.Color
	success *color.Color
	info    *color.Color
	warning *color.Color
	danger  *color.Color
}

func newCLI(store *todo.Store, out io.Writer, categories bool) *cli {
	return &cli{
		store:      store,
		out:        out,
		categories: categories,
		faint:      color.New(color.Faint),
		success:    color.New(color.FgGreen),
		info:       color.New(color.FgCyan),
		warning:    color.New(color.FgYellow),
		danger:     color.New(color.FgRed, color.Bold),
	}
}

func (c *cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "add":
		return c.add(ctx, args)
	case "ls", "list":
		return c.list(args)
	case "done", "toggle":
		return c.withTask(args, func(id int64) { c.store.ToggleComplete(ctx, id) })
	case "rm", "del":
		return c.withTask(args, func(id int64) { c.store.DeleteTask(ctx, id) })
	case "clear":
		c.store.ClearCompleted(ctx)
		c.printNotification()
		return nil
	case "stats":
		c.printStats(c.store.Stats())
		return nil
	default:
		return fmt.Errorf("unknown command %q, see todo -h", command)
	}
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(c.out)
	categoryName := fs.String("category", string(model.CategoryPersonal), "Task category (work | personal | urgent).")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var category model.Category
	if c.categories {
		var err error
		if category, err = model.ParseCategory(*categoryName); err != nil {
			return err
		}
	}

	task, err := c.store.AddTask(ctx, strings.Join(fs.Args(), " "), category)
	c.printNotification()
	if err != nil {
		return err
	}
	c.printTask(len(c.store.Tasks()), task)
	return nil
}

func (c *cli) list(args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(c.out)
	search := fs.String("search", "", "Case-insensitive text search.")
	filter := fs.String("filter", string(model.FilterAll), "Category filter (all | work | personal | urgent).")
	if err := fs.Parse(args); err != nil {
		return err
	}

	all := c.store.Tasks()
	tasks := c.store.Filter(*search, model.ParseCategoryFilter(*filter))
	if len(tasks) == 0 {
		if len(all) == 0 {
			c.faint.Fprintln(c.out, "Nothing to do.")
		} else {
			c.faint.Fprintln(c.out, "No tasks match.")
		}
		return nil
	}

	// Numbers refer to the full list so that done/rm N stay unambiguous.
	pos := make(map[int64]int, len(all))
	for i, t := range all {
		pos[t.ID] = i + 1
	}
	for _, t := range tasks {
		c.printTask(pos[t.ID], t)
	}
	return nil
}

func (c *cli) withTask(args []string, fn func(id int64)) error {
	if len(args) != 1 {
		return errors.New("expected exactly one task number")
	}
	id, ok := todo.ResolveRef(c.store.Tasks(), args[0])
	if !ok {
		return fmt.Errorf("bad task number %q", args[0])
	}
	if _, ok := c.store.Task(id); !ok {
		return fmt.Errorf("task %s: %w", args[0], model.ErrTaskNotFound)
	}

	fn(id)
	c.printNotification()
	if t, ok := c.store.Task(id); ok {
		c.printTask(positionOf(c.store.Tasks(), id), t)
	}
	return nil
}

func positionOf(tasks []model.Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i + 1
		}
	}
	return 0
}

func (c *cli) printTask(n int, t model.Task) {
	check := "[ ]"
	text := t.Text
	if t.Completed {
		check = c.success.Sprint("[x]")
		text = c.faint.Sprint(text)
	}
	category := ""
	if t.Category != "" {
		category = t.Category.Emoji() + " "
	}
	fmt.Fprintf(c.out, "%3d %s %s%s\n", n, check, category, text)
}

func (c *cli) printStats(stats model.TaskStats) {
	fmt.Fprintf(c.out, "total %d, active %d, completed %d\n", stats.Total, stats.Active, stats.Completed)
	if !c.categories {
		return
	}
	for _, cat := range model.Categories {
		fmt.Fprintf(c.out, "  %s %-9s %d active\n", cat.Emoji(), cat, stats.ActiveByCategory[cat])
	}
}

func (c *cli) printNotification() {
	n := c.store.Notification()
	if !n.Visible {
		return
	}
	col := c.info
	switch n.Severity {
	case todo.SeveritySuccess:
		col = c.success
	case todo.SeverityWarning:
		col = c.warning
	case todo.SeverityError:
		col = c.danger
	}
	col.Fprintln(c.out, n.Message)
}
