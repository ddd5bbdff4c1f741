// Package validate enforces the level-sequence invariant on any row stream,
// whether it was parsed from a navigation table or produced by the local
// walker.
package validate

import (
	"fmt"

	"github.com/canonical/upload-charm-docs/internal/errs"
	"github.com/canonical/upload-charm-docs/internal/table"
)

// Levels checks that rows form a valid level sequence:
//   - the first row has level == 1
//   - every row has level >= 1
//   - consecutive rows never jump by more than 1 (decreases of any size are fine)
//
// It returns an *errs.InputError naming the offending row and the rule
// broken on the first violation found.
func Levels(rows []table.Row) error {
	for i, row := range rows {
		if row.Level <= 0 {
			return errs.NewInputError(fmt.Sprintf(
				"invalid row level: row %d (path %q) has level %d, zero or negative level value is invalid",
				i, row.Path, row.Level,
			))
		}

		if i == 0 {
			if row.Level != 1 {
				return errs.NewInputError(fmt.Sprintf(
					"invalid starting row level: row 0 (path %q) has level %d, "+
						"a table row must start with level value 1",
					row.Path, row.Level,
				))
			}
			continue
		}

		if row.Level-rows[i-1].Level > 1 {
			return errs.NewInputError(fmt.Sprintf(
				"invalid row level value sequence: row %d (path %q) jumps from level %d to %d, "+
					"level sequence jumps of more than 1 is invalid",
				i, row.Path, rows[i-1].Level, row.Level,
			))
		}
	}

	return nil
}
