// Package presentation renders registry entries for the terminal and as JSON.
package presentation

import (
	registry "github.com/zjrosen/sbin/internal/domain/registry"
)

// EntryDTO represents a registry entry for presentation
type EntryDTO struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Invocation  string     `json:"cmd"`
	Stages      []StageDTO `json:"stages"`
	Tags        []string   `json:"tags"` // always present, empty when untagged
	Source      string     `json:"source"`
}

// StageDTO is one pipeline stage.
type StageDTO struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
}

// FromEntry converts a domain entry to a DTO.
func FromEntry(e *registry.Entry) EntryDTO {
	stages := make([]StageDTO, len(e.Stages()))
	for i, s := range e.Stages() {
		args := s.Args()
		if args == nil {
			args = []string{}
		}
		stages[i] = StageDTO{Program: s.Program(), Args: args}
	}

	tags := e.Tags()
	if tags == nil {
		tags = []string{}
	}

	return EntryDTO{
		Name:        e.Name(),
		Description: e.Description(),
		Invocation:  e.Invocation(),
		Stages:      stages,
		Tags:        tags,
		Source:      e.Source().String(),
	}
}

// FromEntries converts entries to DTOs, keeping their order.
func FromEntries(entries []*registry.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = FromEntry(e)
	}
	return dtos
}

// ProblemDTO is a stage whose program cannot be run.
type ProblemDTO struct {
	Entry   string `json:"entry"`
	Stage   int    `json:"stage"`
	Program string `json:"program"`
	Error   string `json:"error"`
}
