package demo

import (
	"context"
	"slices"

	"github.com/dshills/purdah/internal/event"
	"github.com/dshills/purdah/internal/event/topic"
)

// Todo is one item in the list.
type Todo struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TodoKind selects what a TodoAction does.
type TodoKind int

const (
	AddTodo TodoKind = iota
	ToggleTodo
	RemoveTodo
	ClearTodos
)

// String returns the lower-case kind name.
func (k TodoKind) String() string {
	switch k {
	case AddTodo:
		return "add"
	case ToggleTodo:
		return "toggle"
	case RemoveTodo:
		return "remove"
	case ClearTodos:
		return "clear"
	default:
		return "unknown"
	}
}

// TodoAction is the todo store's action. Text is read by AddTodo, ID by
// ToggleTodo and RemoveTodo.
type TodoAction struct {
	Kind TodoKind `json:"kind"`
	Text string   `json:"text,omitempty"`
	ID   int      `json:"id,omitempty"`
}

// Add builds an AddTodo action.
func Add(text string) TodoAction { return TodoAction{Kind: AddTodo, Text: text} }

// Toggle builds a ToggleTodo action.
func Toggle(id int) TodoAction { return TodoAction{Kind: ToggleTodo, ID: id} }

// Remove builds a RemoveTodo action.
func Remove(id int) TodoAction { return TodoAction{Kind: RemoveTodo, ID: id} }

// Clear builds a ClearTodos action.
func Clear() TodoAction { return TodoAction{Kind: ClearTodos} }

// TodoStore is a reducer over a todo list. IDs start at 1 and are never
// reused, including after Clear.
type TodoStore struct {
	todos  []Todo
	nextID int
}

// NewTodoStore returns an empty store.
func NewTodoStore() *TodoStore {
	return &TodoStore{nextID: 1}
}

// Reduce applies a. Unknown IDs are ignored.
func (s *TodoStore) Reduce(_ context.Context, a TodoAction) {
	switch a.Kind {
	case AddTodo:
		s.todos = append(s.todos, Todo{ID: s.nextID, Text: a.Text})
		s.nextID++
	case ToggleTodo:
		for i := range s.todos {
			if s.todos[i].ID == a.ID {
				s.todos[i].Completed = !s.todos[i].Completed
			}
		}
	case RemoveTodo:
		s.todos = slices.DeleteFunc(s.todos, func(t Todo) bool { return t.ID == a.ID })
	case ClearTodos:
		s.todos = nil
	}
}

// State returns a copy of the list.
func (s *TodoStore) State() []Todo {
	return slices.Clone(s.todos)
}

// TodoTopic is the topic of todo events for kind.
func TodoTopic(kind TodoKind) topic.Topic {
	return topic.Topic("todo." + kind.String())
}

// TodoEvent wraps a in an event that projects to an action only.
func TodoEvent(a TodoAction) event.Typed[TodoAction] {
	return event.New(TodoTopic(a.Kind), a,
		event.WithAction(func(a TodoAction) TodoAction { return a }),
	).WithSource("demo")
}
