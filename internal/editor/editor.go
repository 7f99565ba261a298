// Package editor turns the manager's link table into a replacement link list
// for one department and persists it.
package editor

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/logger"
	"github.com/MrSnakeDoc/portal/internal/store/filestore"
)

// Form field names shared with the rendered table.
const (
	FieldDepartment = "dept"
	FieldRevision   = "revision"
	FieldName       = "name"
	FieldURL        = "url"
	FieldDesc       = "desc"
	FieldRemove     = "remove"
	FieldAction     = "action"
)

// ActionAddRow asks for the table back with one more blank row, unsaved.
const ActionAddRow = "add"

// Placeholder is the row offered when a department has no links yet.
var Placeholder = domain.Link{Name: "範例按鈕", URL: "https://", Desc: "說明"}

// ErrMissingDepartment is returned when the form names no department.
var ErrMissingDepartment = errors.New("no department selected")

// ValidationError reports a row missing a required field. Row is 1-based.
type ValidationError struct {
	Row   int
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s is required", e.Row, e.Field)
}

// Rows returns the links to show in the table, or the placeholder row when
// the department is empty.
func Rows(d *domain.Department) []domain.Link {
	if d == nil || len(d.Links) == 0 {
		return []domain.Link{Placeholder}
	}
	return append([]domain.Link(nil), d.Links...)
}

// Form is a parsed editor submission.
type Form struct {
	Department string
	Revision   string
	Links      []domain.Link
}

// ParseForm reads the table rows in order. Rows ticked for removal and rows
// left completely blank are dropped; any other row needs a name and a url.
func ParseForm(values url.Values) (Form, error) {
	form := Form{
		Department: strings.TrimSpace(values.Get(FieldDepartment)),
		Revision:   values.Get(FieldRevision),
	}
	if form.Department == "" {
		return form, ErrMissingDepartment
	}

	names := values[FieldName]
	urls := values[FieldURL]
	descs := values[FieldDesc]

	removed := removedRows(values)

	rows := max(len(names), len(urls), len(descs))
	form.Links = make([]domain.Link, 0, rows)
	for i := 0; i < rows; i++ {
		if removed[i] {
			continue
		}
		link := domain.Link{
			Name: strings.TrimSpace(at(names, i)),
			URL:  strings.TrimSpace(at(urls, i)),
			Desc: strings.TrimSpace(at(descs, i)),
		}
		if link.IsBlank() {
			continue
		}
		if link.Name == "" {
			return form, &ValidationError{Row: i + 1, Field: FieldName}
		}
		if link.URL == "" {
			return form, &ValidationError{Row: i + 1, Field: FieldURL}
		}
		form.Links = append(form.Links, link)
	}

	return form, nil
}

// RawRows returns the submitted rows without validation, minus removed and
// blank ones, so a rejected table can be shown again as typed.
func RawRows(values url.Values) []domain.Link {
	names := values[FieldName]
	urls := values[FieldURL]
	descs := values[FieldDesc]
	removed := removedRows(values)

	rows := max(len(names), len(urls), len(descs))
	out := make([]domain.Link, 0, rows)
	for i := 0; i < rows; i++ {
		link := domain.Link{Name: at(names, i), URL: at(urls, i), Desc: at(descs, i)}
		if removed[i] || link.IsBlank() {
			continue
		}
		out = append(out, link)
	}
	return out
}

// BlankRows counts the submitted rows left completely empty and not removed,
// so a re-shown table keeps them.
func BlankRows(values url.Values) int {
	names := values[FieldName]
	urls := values[FieldURL]
	descs := values[FieldDesc]
	removed := removedRows(values)

	n := 0
	for i := 0; i < max(len(names), len(urls), len(descs)); i++ {
		link := domain.Link{Name: at(names, i), URL: at(urls, i), Desc: at(descs, i)}
		if !removed[i] && link.IsBlank() {
			n++
		}
	}
	return n
}

func removedRows(values url.Values) map[int]bool {
	removed := make(map[int]bool, len(values[FieldRemove]))
	for _, raw := range values[FieldRemove] {
		if i, err := strconv.Atoi(raw); err == nil {
			removed[i] = true
		}
	}
	return removed
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// Apply returns a copy of cfg with the department's links replaced by the form.
func Apply(cfg *domain.Config, form Form) (*domain.Config, error) {
	next := cfg.Clone()
	if next == nil {
		return nil, &domain.UnknownDepartmentError{Name: form.Department}
	}
	if err := next.ReplaceLinks(form.Department, form.Links); err != nil {
		return nil, err
	}
	return next, nil
}

// Store is the persistence the editor needs.
type Store interface {
	Load() (filestore.Snapshot, error)
	SaveIfUnchanged(cfg *domain.Config, revision string) (string, error)
}

// Service applies editor submissions to a session and the store.
type Service struct {
	store  Store
	logger logger.Logger
}

// NewService creates an editor service.
func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// Save replaces one department's links in the session config and writes the
// whole document. It refuses when the store changed since the session loaded
// it; the session is then refreshed from disk and ErrConflict returned.
func (s *Service) Save(sess *domain.Session, form Form) error {
	if !sess.Manager {
		return domain.ErrNotManager
	}

	next, err := Apply(sess.Config, form)
	if err != nil {
		return err
	}

	rev, err := s.store.SaveIfUnchanged(next, form.Revision)
	if errors.Is(err, domain.ErrConflict) {
		s.logger.Warn("editor save rejected, store changed since session loaded it",
			logger.String("department", form.Department),
			logger.String("session_id", sess.ID))
		if snap, loadErr := s.store.Load(); loadErr == nil {
			sess.Adopt(snap.Config, snap.Revision)
		} else {
			s.logger.Error("failed to reload store after conflict", logger.Error(loadErr))
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to save department %s: %w", form.Department, err)
	}

	sess.Adopt(next, rev)
	s.logger.Info("department links saved",
		logger.String("department", form.Department),
		logger.Int("links", len(form.Links)),
		logger.String("session_id", sess.ID))
	return nil
}
