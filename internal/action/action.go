// Package action defines the typed plan the differ emits and the executor
// consumes: a closed set of CREATE, UPDATE, DELETE and NOOP variants, plus
// the append-only reports the executor and migrator produce while running
// them.
package action

import "github.com/canonical/upload-charm-docs/internal/table"

// Kind discriminates the Action variants.
type Kind int

const (
	Create Kind = iota
	Update
	Delete
	Noop
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Noop:
		return "noop"
	default:
		return "unknown"
	}
}

// Action is a tagged union over the four action variants. Only the fields
// relevant to Kind are populated; see the per-kind constructors below.
type Action struct {
	Kind  Kind
	Level int
	Path  string

	// CREATE payload.
	Title   string
	Content *string // nil for group rows

	// UPDATE payload.
	OldNavlink table.Navlink
	NewNavlink table.Navlink
	OldContent *string
	NewContent *string

	// DELETE payload: the remote row being removed (carries the link to delete).
	RemoteRow table.Row

	// NOOP payload: the unchanged row.
	Row        table.Row
	RowContent *string
}

// NewCreate builds a CREATE action. Content is nil for a group row.
func NewCreate(level int, path, title string, content *string) Action {
	return Action{Kind: Create, Level: level, Path: path, Title: title, Content: content}
}

// NewUpdate builds an UPDATE action.
func NewUpdate(level int, path string, oldNav, newNav table.Navlink, oldContent, newContent *string) Action {
	return Action{
		Kind: Update, Level: level, Path: path,
		OldNavlink: oldNav, NewNavlink: newNav,
		OldContent: oldContent, NewContent: newContent,
	}
}

// NewDelete builds a DELETE action from the remote-only row being removed.
func NewDelete(row table.Row) Action {
	return Action{Kind: Delete, Level: row.Level, Path: row.Path, RemoteRow: row}
}

// NewNoop builds a NOOP action for a row whose navlink and content are
// unchanged.
func NewNoop(row table.Row, content *string) Action {
	return Action{Kind: Noop, Level: row.Level, Path: row.Path, Row: row, RowContent: content}
}

// Result is the outcome tag of an ActionReport.
type Result int

const (
	Success Result = iota
	Skipped
	Fail
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Skipped:
		return "skip"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Report is a single, append-only record of an executed action.
type Report struct {
	Row      *table.Row // the row the action produced, nil if the action had none
	Location string     // URL (reconcile) or local path (migrate)
	Result   Result
	Reason   string
}
