package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"geolog/internal/application"
	"geolog/internal/domain"
)

// DeleteResult contains the result of a delete operation
type DeleteResult struct {
	Removed   int
	Remaining int
	Message   string
}

// DeleteCommand removes records by creation-order position or by ID.
// Positions are 0-based; out-of-range positions and unknown IDs are ignored.
type DeleteCommand struct {
	log       *domain.SessionLog
	Positions []int
	IDs       []string
}

// NewDeleteCommand creates a new DeleteCommand for record IDs
func NewDeleteCommand(log *domain.SessionLog, ids ...string) *DeleteCommand {
	return &DeleteCommand{
		log: log,
		IDs: ids,
	}
}

// NewDeletePositionsCommand creates a new DeleteCommand for positions
func NewDeletePositionsCommand(log *domain.SessionLog, positions ...int) *DeleteCommand {
	return &DeleteCommand{
		log:       log,
		Positions: positions,
	}
}

// Validate checks that something was selected and that every ID parses
func (c *DeleteCommand) Validate() error {
	if len(c.Positions) == 0 && len(c.IDs) == 0 {
		return &application.ValidationError{
			Field:   "recordID",
			Message: "select at least one record",
		}
	}
	if _, err := c.parseIDs(); err != nil {
		return err
	}
	return nil
}

func (c *DeleteCommand) parseIDs() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(c.IDs))
	for _, raw := range c.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, &application.ValidationError{
				Field:   "recordID",
				Message: fmt.Sprintf("invalid record ID: %s", raw),
				Err:     err,
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Execute runs the delete command
func (c *DeleteCommand) Execute(ctx context.Context) (*DeleteResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ids, _ := c.parseIDs()

	before := c.log.Len()
	if len(c.Positions) > 0 {
		c.log.Delete(c.Positions)
	}
	if len(ids) > 0 {
		c.log.DeleteIDs(ids)
	}
	removed := before - c.log.Len()

	return &DeleteResult{
		Removed:   removed,
		Remaining: c.log.Len(),
		Message:   fmt.Sprintf("Deleted %d %s", removed, plural(removed, "record", "records")),
	}, nil
}

// ClearResult contains the result of a clear operation
type ClearResult struct {
	Removed int
	Message string
}

// ClearCommand empties the session and lifts the category lock
type ClearCommand struct {
	log *domain.SessionLog
}

// NewClearCommand creates a new ClearCommand
func NewClearCommand(log *domain.SessionLog) *ClearCommand {
	return &ClearCommand{log: log}
}

// Execute runs the clear command
func (c *ClearCommand) Execute(ctx context.Context) (*ClearResult, error) {
	removed := c.log.Len()
	c.log.Clear()
	return &ClearResult{
		Removed: removed,
		Message: fmt.Sprintf("Cleared %d %s", removed, plural(removed, "record", "records")),
	}, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
