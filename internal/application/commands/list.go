package commands

import (
	"context"
	"slices"

	"geolog/internal/domain"
)

// ListResult is a snapshot of the session
type ListResult struct {
	Records  []domain.Record
	Locked   bool
	Category domain.Category
}

// ListCommand lists the records of the session
type ListCommand struct {
	log         *domain.SessionLog
	NewestFirst bool
}

// NewListCommand creates a new ListCommand
func NewListCommand(log *domain.SessionLog, newestFirst bool) *ListCommand {
	return &ListCommand{log: log, NewestFirst: newestFirst}
}

// Execute runs the list command
func (c *ListCommand) Execute(ctx context.Context) (*ListResult, error) {
	records := c.log.Records()
	if c.NewestFirst {
		slices.Reverse(records)
	}
	category, locked := c.log.LockedCategory()
	return &ListResult{
		Records:  records,
		Locked:   locked,
		Category: category,
	}, nil
}

// ListCategoriesCommand lists the categories an observation can be logged
// under. While the session is locked only the locked category is selectable.
type ListCategoriesCommand struct {
	log *domain.SessionLog
}

// CategoryOption is one entry of ListCategoriesCommand's result
type CategoryOption struct {
	Category   domain.Category
	Selectable bool
}

// NewListCategoriesCommand creates a new ListCategoriesCommand
func NewListCategoriesCommand(log *domain.SessionLog) *ListCategoriesCommand {
	return &ListCategoriesCommand{log: log}
}

// Execute runs the list categories command
func (c *ListCategoriesCommand) Execute(ctx context.Context) ([]CategoryOption, error) {
	locked, isLocked := domain.Category(0), false
	if c.log != nil {
		locked, isLocked = c.log.LockedCategory()
	}

	options := make([]CategoryOption, len(domain.Categories))
	for i, category := range domain.Categories {
		options[i] = CategoryOption{
			Category:   category,
			Selectable: !isLocked || category == locked,
		}
	}
	return options, nil
}
