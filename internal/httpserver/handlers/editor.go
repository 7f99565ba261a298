package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/editor"
	"github.com/MrSnakeDoc/portal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portal/internal/httpserver/mw"
	"github.com/MrSnakeDoc/portal/internal/logger"
	"github.com/MrSnakeDoc/portal/internal/render"
)

// Editor saves the manager's table for one department. Rejected submissions
// re-render the page with the table as typed and an inline message. The add
// row action re-renders the table as typed plus one blank row, saving nothing.
func Editor(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := mw.CurrentSession(r)
		if !sess.Manager {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if r.PostForm.Get(editor.FieldAction) == editor.ActionAddRow {
			renderPage(w, r, d, sess, render.PageOptions{
				Department: r.PostForm.Get(editor.FieldDepartment),
				Rows:       editor.RawRows(r.PostForm),
				Extra:      editor.BlankRows(r.PostForm) + 1,
			}, http.StatusOK)
			return
		}

		form, err := editor.ParseForm(r.PostForm)
		if err == nil {
			err = d.Editor.Save(sess, form)
		}

		opts := render.PageOptions{Department: form.Department}
		var verr *editor.ValidationError
		switch {
		case err == nil:
			if err := d.Sessions.Save(r.Context(), sess); err != nil {
				d.Logger.Error("failed to save session after edit", logger.Error(err))
			}
			q := url.Values{}
			q.Set("dept", form.Department)
			q.Set("saved", "1")
			http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)

		case errors.Is(err, editor.ErrMissingDepartment):
			opts.EditError = msgNoDepartment
			renderPage(w, r, d, sess, opts, http.StatusBadRequest)

		case errors.As(err, &verr):
			opts.EditError = fmt.Sprintf(msgRequired, verr.Row)
			opts.Rows = editor.RawRows(r.PostForm)
			renderPage(w, r, d, sess, opts, http.StatusUnprocessableEntity)

		case errors.Is(err, domain.ErrUnknownDepartment):
			opts.EditError = fmt.Sprintf(msgUnknownDept, form.Department)
			renderPage(w, r, d, sess, opts, http.StatusBadRequest)

		case errors.Is(err, domain.ErrConflict):
			// The editor service refreshed the session from disk.
			if err := d.Sessions.Save(r.Context(), sess); err != nil {
				d.Logger.Error("failed to save refreshed session", logger.Error(err))
			}
			opts.EditError = msgConflict
			renderPage(w, r, d, sess, opts, http.StatusConflict)

		default:
			d.Logger.Error("failed to save department links",
				logger.String("department", form.Department),
				logger.Error(err))
			opts.EditError = msgSaveFailed
			opts.Rows = editor.RawRows(r.PostForm)
			renderPage(w, r, d, sess, opts, http.StatusInternalServerError)
		}
	}
}
