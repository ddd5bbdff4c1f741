// Package table implements the navigation-table data model and its codec:
// parsing a forum index topic's body into an ordered sequence of rows, and
// emitting rows back into the same table format.
package table

// Navlink is a displayable (title, link) pair. Link is nil for a group row.
type Navlink struct {
	Title string
	Link  *string
}

// IsGroup reports whether the navlink belongs to a group row (no link).
func (n Navlink) IsGroup() bool {
	return n.Link == nil
}

// Row is a single row of the navigation table: a group (directory) or a
// document, identified by its dash-joined Path.
type Row struct {
	Level   int
	Path    string
	Navlink Navlink
}

// IsGroup reports whether the row represents a group (no linked topic).
func (r Row) IsGroup() bool {
	return r.Navlink.IsGroup()
}

// Link returns the row's link, or the empty string if the row is a group.
func (r Row) Link() string {
	if r.Navlink.Link == nil {
		return ""
	}
	return *r.Navlink.Link
}

// NewLink builds a pointer suitable for Navlink.Link from a plain string.
func NewLink(link string) *string {
	return &link
}
