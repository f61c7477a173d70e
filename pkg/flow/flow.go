package flow

import (
	"github.com/EgorDm/nauman/pkg/core"
)

// Step is one position in a flow: a task, its identifier, and, for hook
// tasks, the identifier of the main task it decorates.
type Step struct {
	ID    TaskID
	Task  *Task
	Focus TaskID // Empty for non-hook tasks
}

// Flow is an ordered, named collection of tasks plus flow-level environment
// and working directory. Task definitions are immutable after construction;
// the flow additionally keeps a registry of results fed back during the run,
// so later tasks can reference a prior task by identifier.
type Flow struct {
	ID   string
	Name string
	Env  core.Env
	Cwd  string

	steps   []Step
	tasks   map[TaskID]*Task
	results map[TaskID]TaskResult
	order   []TaskID // Result insertion order, for the run summary
}

// New creates an empty flow.
func New(id, name string, env core.Env, cwd string) *Flow {
	return &Flow{
		ID:      id,
		Name:    name,
		Env:     env,
		Cwd:     cwd,
		tasks:   make(map[TaskID]*Task),
		results: make(map[TaskID]TaskResult),
	}
}

// Append adds a task at the end of the flow. A non-empty focus marks the
// task as a hook attached to that main task.
func (f *Flow) Append(id TaskID, task *Task, focus TaskID) {
	f.steps = append(f.steps, Step{ID: id, Task: task, Focus: focus})
	f.tasks[id] = task
}

// Steps returns the flow's steps in definition order.
func (f *Flow) Steps() []Step {
	return f.steps
}

// Len returns the number of steps, hooks included.
func (f *Flow) Len() int {
	return len(f.steps)
}

// Task looks up a task definition by identifier.
func (f *Flow) Task(id TaskID) (*Task, bool) {
	t, ok := f.tasks[id]
	return t, ok
}

// PutResult records a task's result for later lookup by identifier.
func (f *Flow) PutResult(res TaskResult) {
	if _, exists := f.results[res.ID]; !exists {
		f.order = append(f.order, res.ID)
	}
	f.results[res.ID] = res
}

// Result looks up a recorded result by identifier.
func (f *Flow) Result(id TaskID) (TaskResult, bool) {
	r, ok := f.results[id]
	return r, ok
}

// Results returns all recorded results in feedback order.
func (f *Flow) Results() []TaskResult {
	out := make([]TaskResult, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.results[id])
	}
	return out
}
