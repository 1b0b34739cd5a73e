package ports

import "context"

// Task is a unit of background work. Tasks sharing a Key run in submission order.
type Task struct {
	Key  string
	Name string
	Run  func(ctx context.Context) error
}

// TaskQueue accepts fire-and-forget background work.
type TaskQueue interface {
	Enqueue(task Task)
}
