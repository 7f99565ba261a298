package render

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/editor"
)

// htmlWriter keeps the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) { h.raw(templ.EscapeString(s)) }

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *htmlWriter) href(u string) { h.attr("href", string(templ.URL(u))) }

func (h *htmlWriter) child(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// PortalPage renders the full document.
func PortalPage(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="zh-Hant"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>馬尼通訊系統入口</title><style>` + pageStyle + `</style></head><body>`)

		h.raw(`<h1>`)
		h.text(p.Brand.Title)
		h.raw(`</h1><div class="caption">`)
		h.text(p.Brand.Subtitle)
		h.raw(`</div><hr>`)

		h.raw(`<div class="columns">`)
		for _, col := range p.Columns {
			h.child(ctx, DepartmentColumn(col, p.LoginError))
		}
		h.raw(`</div><hr>`)

		if p.Editor != nil {
			h.child(ctx, EditorPanel(*p.Editor))
		}

		h.raw(`<div class="caption">`)
		h.text(footer(p.Brand))
		h.raw(`</div></body></html>`)
		return h.err
	})
}

func footer(b Brand) string {
	if b.Version == "" {
		return b.Footer
	}
	return b.Footer + " " + b.Version
}

// DepartmentColumn renders one column: themed header, then link cards or the
// unlock form.
func DepartmentColumn(col ColumnView, loginError string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="column"`)
		h.attr("data-department", col.Name)
		h.raw(`>`)
		if !col.Present {
			h.raw(`</section>`)
			return h.err
		}

		h.child(ctx, Header(col.Name, col.Icon, col.Theme))

		if col.Locked {
			h.child(ctx, LoginBox(loginError))
			h.raw(`</section>`)
			return h.err
		}

		for _, link := range col.Links {
			h.child(ctx, LinkCard(link))
		}
		if col.Protected {
			h.raw(`<hr><form method="post" action="/logout"><button class="btn" type="submit">登出系統 🔒</button></form>`)
		}
		h.raw(`</section>`)
		return h.err
	})
}

// Header renders a department title on its theme gradient.
func Header(name, icon string, theme domain.Theme) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div`)
		h.attr("class", "dept-header theme-"+string(theme))
		h.raw(`>`)
		h.text(icon + " " + name)
		h.raw(`</div>`)
		return h.err
	})
}

// LinkCard renders one link with its outbound button.
func LinkCard(link domain.Link) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="card"><div class="link-card-title">`)
		h.text(link.Name)
		h.raw(`</div><div class="link-card-desc">`)
		h.text(link.Desc)
		h.raw(`</div><a class="btn"`)
		h.href(link.URL)
		h.raw(` target="_blank" rel="noopener noreferrer">前往系統 🚀</a></div>`)
		return h.err
	})
}

// LoginBox renders the unlock form of a protected column.
func LoginBox(loginError string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="card"><div class="info">此區域需要管理權限</div>`)
		h.raw(`<form method="post" action="/login"><label>請輸入密碼解鎖`)
		h.raw(`<input type="password" name="password" autocomplete="current-password"></label>`)
		h.raw(`<button class="btn" type="submit">解鎖</button></form>`)
		h.child(ctx, Message(messageError, loginError))
		h.raw(`</div>`)
		return h.err
	})
}

const (
	messageSuccess = "success"
	messageError   = "error"
)

// Message renders a status or alert line. Empty text renders nothing.
func Message(kind, text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if text == "" {
			return nil
		}
		h := &htmlWriter{w: w}
		role := "status"
		if kind == messageError {
			role = "alert"
		}
		h.raw(`<div`)
		h.attr("class", kind)
		h.attr("role", role)
		h.raw(`>`)
		h.text(text)
		h.raw(`</div>`)
		return h.err
	})
}

// EditorPanel renders the manager's department selector and link table.
func EditorPanel(v EditorView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<details class="editor" open><summary>⚙️ 系統參數設定 (後台管理)</summary>`)
		h.raw("<div class=\"info\">💡 操作說明：直接在表格中修改。新增請點擊「新增一列」。修改完畢請按「儲存」。</div>")
		h.child(ctx, Message(messageSuccess, v.Notice))
		h.child(ctx, Message(messageError, v.Error))
		if len(v.Departments) > 0 {
			h.child(ctx, DepartmentPicker(v.Departments, v.Selected))
			h.child(ctx, LinkTable(v))
		}
		h.raw(`</details>`)
		return h.err
	})
}

// DepartmentPicker switches the department shown in the link table.
func DepartmentPicker(names []string, selected string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<form method="get" action="/"><label>選擇編輯部門 <select name="dept">`)
		for _, name := range names {
			h.raw(`<option`)
			h.attr("value", name)
			if name == selected {
				h.raw(` selected`)
			}
			h.raw(`>`)
			h.text(name)
			h.raw(`</option>`)
		}
		h.raw(`</select></label> <button type="submit">切換</button></form>`)
		return h.err
	})
}

// LinkTable is the edit form of one department. Adding a row posts the table
// back so typed values survive.
func LinkTable(v EditorView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<form method="post" action="/editor">`)
		hidden(h, editor.FieldDepartment, v.Selected)
		hidden(h, editor.FieldRevision, v.Revision)
		h.raw(`<table><thead><tr><th>按鈕名稱</th><th>連結網址</th><th>功能描述</th><th>刪除</th></tr></thead><tbody>`)

		i := 0
		for _, row := range v.Rows {
			editorRow(h, i, row, true)
			i++
		}
		for n := 0; n < v.Extra; n++ {
			editorRow(h, i, domain.Link{}, false)
			i++
		}

		h.raw(`</tbody></table><p><button type="submit" formnovalidate`)
		h.attr("name", editor.FieldAction)
		h.attr("value", editor.ActionAddRow)
		h.raw(`>➕ 新增一列</button></p>`)
		h.raw(`<button class="btn btn-primary" type="submit">💾 儲存變更設定</button></form>`)
		return h.err
	})
}

func editorRow(h *htmlWriter, i int, row domain.Link, required bool) {
	idx := strconv.Itoa(i)
	req := ""
	if required {
		req = " required"
	}
	h.raw(`<tr><td><input type="text"`)
	h.attr("name", editor.FieldName)
	h.attr("value", row.Name)
	h.raw(req + `></td><td><input type="text" inputmode="url"`)
	h.attr("name", editor.FieldURL)
	h.attr("value", row.URL)
	h.raw(req + `></td><td><input type="text"`)
	h.attr("name", editor.FieldDesc)
	h.attr("value", row.Desc)
	h.raw(`></td><td><input type="checkbox"`)
	h.attr("name", editor.FieldRemove)
	h.attr("value", idx)
	h.attr("aria-label", fmt.Sprintf("刪除第 %d 列", i+1))
	h.raw(`></td></tr>`)
}

func hidden(h *htmlWriter, name, value string) {
	h.raw(`<input type="hidden"`)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(`>`)
}
