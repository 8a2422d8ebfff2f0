package commands

import (
	"context"
	"fmt"

	"geolog/internal/application"
	"geolog/internal/domain"
)

// AppendResult contains the record created by an append
type AppendResult struct {
	Record  domain.Record
	Message string
}

// AppendCommand records one observation at the current location
type AppendCommand struct {
	log      *domain.SessionLog
	fixes    domain.FixSource
	Category domain.Category
	Value    string
	Note     string
}

// NewAppendCommand creates a new AppendCommand. fixes is the same source the
// log reads from; it is consulted only to explain a rejection.
func NewAppendCommand(log *domain.SessionLog, fixes domain.FixSource, category domain.Category, value, note string) *AppendCommand {
	return &AppendCommand{
		log:      log,
		fixes:    fixes,
		Category: category,
		Value:    value,
		Note:     note,
	}
}

// Validate checks the category and that a value or note was given
func (c *AppendCommand) Validate() error {
	if !c.Category.Valid() {
		return &application.ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("unknown category %d", int(c.Category)),
			Err:     application.ErrUnknownCategory,
		}
	}
	_, _, err := application.ParseObservation(c.Value, c.Note)
	return err
}

// Execute appends the observation. A rejection by the log is returned as a
// *application.RejectedError wrapping ErrLocationUnavailable or
// ErrCategoryMismatch; the log itself is left untouched.
func (c *AppendCommand) Execute(ctx context.Context) (*AppendResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	value, note, _ := application.ParseObservation(c.Value, c.Note)

	if !c.log.Append(c.Category, value, note) {
		return nil, c.rejection()
	}

	records := c.log.Records()
	record := records[len(records)-1]
	return &AppendResult{
		Record:  record,
		Message: fmt.Sprintf("Logged %s #%d", record.Category.Label(), record.SequenceIndex),
	}, nil
}

func (c *AppendCommand) rejection() error {
	if locked, ok := c.log.LockedCategory(); ok && locked != c.Category {
		return &application.RejectedError{
			Reason: application.ErrCategoryMismatch,
			Detail: fmt.Sprintf("session is logging %s", locked.Label()),
		}
	}
	if c.fixes != nil {
		if fix, ok := c.fixes.CurrentFix(); ok && !fix.Valid() {
			return &application.RejectedError{
				Reason: application.ErrLocationUnavailable,
				Detail: fmt.Sprintf("invalid fix %s", fix),
			}
		}
	}
	return &application.RejectedError{Reason: application.ErrLocationUnavailable, Detail: "no fix yet"}
}
