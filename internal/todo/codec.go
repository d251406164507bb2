package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/agalitsyn/todo-list/internal/model"
)

//go:embed tasks.schema.json
var tasksSchemaJSON string

var tasksSchema = jsonschema.MustCompileString("tasks.schema.json", tasksSchemaJSON)

// Encode serializes the whole collection as a JSON array.
func Encode(tasks []model.Task) (string, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("could not encode tasks: %w", err)
	}
	return string(b), nil
}

// Decode parses a stored collection. Anything that is not a well-formed list
// of valid tasks with unique ids is rejected with *model.ParseError.
func Decode(value string) ([]model.Task, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(value)))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, &model.ParseError{Err: err}
	}
	if err := tasksSchema.Validate(raw); err != nil {
		return nil, &model.ParseError{Err: err}
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(value), &tasks); err != nil {
		return nil, &model.ParseError{Err: err}
	}

	seen := make(map[int64]struct{}, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if _, ok := seen[t.ID]; ok {
			return nil, &model.ParseError{Err: fmt.Errorf("duplicate task id %d", t.ID)}
		}
		seen[t.ID] = struct{}{}

		text, err := model.NormalizeTaskText(t.Text)
		if err != nil {
			return nil, &model.ParseError{Err: fmt.Errorf("task %d: %w", t.ID, err)}
		}
		t.Text = text
	}
	return tasks, nil
}
