package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/portal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portal/internal/httpserver/mw"
	"github.com/MrSnakeDoc/portal/internal/render"
)

// Portal renders the page for the visitor's session.
//
// Query parameters: dept selects the department in the editor, extra adds
// blank rows to its table and saved=1 shows the confirmation after a save.
func Portal(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := mw.CurrentSession(r)
		q := r.URL.Query()

		opts := render.PageOptions{Department: q.Get("dept")}
		if n, err := strconv.Atoi(q.Get("extra")); err == nil {
			opts.Extra = n
		}
		if q.Get("saved") == "1" && opts.Department != "" {
			opts.Notice = fmt.Sprintf(msgSaved, opts.Department)
		}

		renderPage(w, r, d, sess, opts, http.StatusOK)
	}
}
