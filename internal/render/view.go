// Package render builds the portal page. It has no side effects beyond
// writing markup.
package render

import (
	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/editor"
)

// Brand holds the page texts that surround the columns.
type Brand struct {
	Title    string
	Subtitle string
	Footer   string
	Version  string
}

// Page is everything the page template needs for one request.
type Page struct {
	Brand   Brand
	Columns []ColumnView
	// Manager is true when the visitor unlocked the protected columns.
	Manager bool
	// LoginError is shown inside every locked column.
	LoginError string
	// Editor is nil for anonymous visitors.
	Editor *EditorView
}

// ColumnView is one fixed department column.
type ColumnView struct {
	Name      string
	Icon      string
	Theme     domain.Theme
	Present   bool
	Protected bool
	Locked    bool
	Links     []domain.Link
}

// EditorView is the manager's link table for one department.
type EditorView struct {
	Departments []string
	Selected    string
	Revision    string
	Rows        []domain.Link
	Extra       int
	Error       string
	Notice      string
}

// PageOptions carries the per-request inputs that are not part of the session.
type PageOptions struct {
	Department string
	Extra      int
	LoginError string
	EditError  string
	Notice     string
	// Rows overrides the table contents, used to re-show a rejected submission.
	Rows []domain.Link
}

const maxExtraRows = 20

// NewPage lays out the page for a session.
func NewPage(brand Brand, sess *domain.Session, opts PageOptions) Page {
	page := Page{
		Brand:      brand,
		Columns:    Columns(sess),
		Manager:    sess.Manager,
		LoginError: opts.LoginError,
	}
	if sess.Manager {
		page.Editor = newEditorView(sess, opts)
	}
	return page
}

// Columns resolves the fixed columns against the session's config.
func Columns(sess *domain.Session) []ColumnView {
	cols := make([]ColumnView, 0, len(domain.Columns))
	for _, col := range domain.Columns {
		view := ColumnView{Name: col.Name, Theme: col.DefaultTheme}

		dept, ok := sess.Config.Department(col.Name)
		if !ok {
			cols = append(cols, view)
			continue
		}

		view.Present = true
		view.Icon = dept.Icon
		view.Protected = dept.Protected
		view.Theme = dept.Theme.Or(col.DefaultTheme)
		if sess.CanView(dept) {
			view.Links = dept.Links
		} else {
			view.Locked = true
			view.Theme = domain.ThemeGray
		}
		cols = append(cols, view)
	}
	return cols
}

func newEditorView(sess *domain.Session, opts PageOptions) *EditorView {
	names := sess.Config.DepartmentNames()
	if len(names) == 0 {
		return &EditorView{Error: opts.EditError, Notice: opts.Notice}
	}

	selected := names[0]
	for _, n := range names {
		if n == opts.Department {
			selected = n
			break
		}
	}

	rows := opts.Rows
	if rows == nil {
		dept, _ := sess.Config.Department(selected)
		rows = editor.Rows(dept)
	}

	extra := opts.Extra
	if extra < 0 {
		extra = 0
	}
	if extra > maxExtraRows {
		extra = maxExtraRows
	}

	return &EditorView{
		Departments: names,
		Selected:    selected,
		Revision:    sess.Revision,
		Rows:        rows,
		Extra:       extra,
		Error:       opts.EditError,
		Notice:      opts.Notice,
	}
}
