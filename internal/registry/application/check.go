package registry

import (
	"context"
	"fmt"

	registry "github.com/zjrosen/sbin/internal/domain/registry"
)

// ProgramResolver finds the executable behind a stage program.
type ProgramResolver interface {
	Resolve(ctx context.Context, program string) (string, error)
}

// Problem is a stage whose program cannot be run.
type Problem struct {
	Entry   string
	Stage   int
	Program string
	Err     error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: stage %d: %v", p.Entry, p.Stage, p.Err)
}

// CheckPrograms resolves every stage program of every entry and returns
// the ones that fail, in registration and stage order.
func CheckPrograms(ctx context.Context, p registry.Provider, r ProgramResolver) ([]Problem, error) {
	var problems []Problem
	for _, entry := range p.List() {
		for i, stage := range entry.Stages() {
			if err := ctx.Err(); err != nil {
				return problems, err
			}
			if _, err := r.Resolve(ctx, stage.Program()); err != nil {
				problems = append(problems, Problem{
					Entry:   entry.Name(),
					Stage:   i,
					Program: stage.Program(),
					Err:     err,
				})
			}
		}
	}
	return problems, nil
}
