package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/editor"
	"github.com/MrSnakeDoc/portal/internal/store/filestore"
)

var testBrand = Brand{Title: "Portal", Subtitle: "sub", Footer: "© 2026 Money Communications System", Version: "v2.1 (Visual Upgrade)"}

func renderPage(t *testing.T, p Page) string {
	t.Helper()
	var buf bytes.Buffer
	if err := PortalPage(p).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func newSession(cfg *domain.Config, manager bool) *domain.Session {
	s := domain.NewSession("s", cfg, "rev-1", time.Now())
	s.Manager = manager
	return s
}

func column(t *testing.T, html, name string) string {
	t.Helper()
	start := strings.Index(html, `data-department="`+name+`"`)
	if start < 0 {
		t.Fatalf("column %s not rendered", name)
	}
	end := strings.Index(html[start:], "</section>")
	if end < 0 {
		t.Fatalf("column %s not closed", name)
	}
	return html[start : start+end]
}

func TestColumnsAnonymous(t *testing.T) {
	cols := Columns(newSession(filestore.Default(), false))

	if len(cols) != 3 {
		t.Fatalf("Columns() = %d columns, want 3", len(cols))
	}
	wantNames := []string{"行銷部", "電商部", "管理部"}
	wantThemes := []domain.Theme{domain.ThemeOrange, domain.ThemeBlue, domain.ThemeGray}
	for i, col := range cols {
		if col.Name != wantNames[i] {
			t.Errorf("column %d = %s, want %s", i, col.Name, wantNames[i])
		}
		if col.Theme != wantThemes[i] {
			t.Errorf("column %s theme = %s, want %s", col.Name, col.Theme, wantThemes[i])
		}
	}
	if !cols[2].Locked || cols[2].Links != nil {
		t.Errorf("protected column should be locked without links: %+v", cols[2])
	}
}

func TestColumnsManager(t *testing.T) {
	cols := Columns(newSession(filestore.Default(), true))

	mgmt := cols[2]
	if mgmt.Locked || mgmt.Theme != domain.ThemePurple || len(mgmt.Links) != 2 {
		t.Errorf("manager view of 管理部 = %+v", mgmt)
	}
}

func TestColumnsThemeFallbackAndMissing(t *testing.T) {
	cfg := &domain.Config{Departments: map[string]*domain.Department{
		"電商部": {Icon: "🛒", Theme: "neon"},
	}}
	cols := Columns(newSession(cfg, false))

	if cols[0].Present || cols[2].Present {
		t.Error("missing departments should not be present")
	}
	if cols[1].Theme != domain.ThemeBlue {
		t.Errorf("unknown theme should fall back to column default, got %s", cols[1].Theme)
	}
}

func TestPortalPageAnonymous(t *testing.T) {
	sess := newSession(filestore.Default(), false)
	html := renderPage(t, NewPage(testBrand, sess, PageOptions{LoginError: "❌ 密碼錯誤"}))

	mgmt := column(t, html, "管理部")
	if !strings.Contains(mgmt, "theme-gray") {
		t.Error("locked column should use the gray theme")
	}
	if strings.Contains(html, "業績戰情室") {
		t.Error("protected links leaked to anonymous visitor")
	}
	if !strings.Contains(mgmt, `action="/login"`) || !strings.Contains(mgmt, "❌ 密碼錯誤") {
		t.Error("locked column should show the login form and error")
	}
	if strings.Contains(html, `action="/editor"`) {
		t.Error("editor rendered for anonymous visitor")
	}
	if !strings.Contains(column(t, html, "電商部"), "Friday購物") {
		t.Error("public links missing")
	}
	if !strings.Contains(html, "© 2026 Money Communications System v2.1 (Visual Upgrade)") {
		t.Error("footer with version missing")
	}
}

func TestPortalPageManager(t *testing.T) {
	sess := newSession(filestore.Default(), true)
	html := renderPage(t, NewPage(testBrand, sess, PageOptions{Department: "管理部", Notice: "✅ 管理部 設定已更新！"}))

	mgmt := column(t, html, "管理部")
	if !strings.Contains(mgmt, "theme-purple") || !strings.Contains(mgmt, "業績戰情室") {
		t.Error("manager should see the unlocked protected column")
	}
	if !strings.Contains(mgmt, `action="/logout"`) {
		t.Error("logout control missing")
	}
	if !strings.Contains(html, `action="/editor"`) {
		t.Error("editor missing for manager")
	}
	if !strings.Contains(html, `<option value="管理部" selected>`) {
		t.Error("requested department should be selected")
	}
	if !strings.Contains(html, `name="revision" value="rev-1"`) {
		t.Error("editor must carry the session revision")
	}
	if !strings.Contains(html, "✅ 管理部 設定已更新！") {
		t.Error("save notice missing")
	}
}

func TestEditorPlaceholderAndExtraRows(t *testing.T) {
	cfg := filestore.Default()
	cfg.Departments["管理部"].Links = nil
	sess := newSession(cfg, true)

	page := NewPage(testBrand, sess, PageOptions{Department: "管理部", Extra: 99})
	if page.Editor.Extra != maxExtraRows {
		t.Errorf("Extra = %d, want clamp to %d", page.Editor.Extra, maxExtraRows)
	}
	if len(page.Editor.Rows) != 1 || page.Editor.Rows[0].Name != editor.Placeholder.Name {
		t.Errorf("Rows = %+v, want placeholder", page.Editor.Rows)
	}

	page = NewPage(testBrand, sess, PageOptions{Department: "管理部", Extra: 2})
	html := renderPage(t, page)
	if got := strings.Count(html, `name="remove"`); got != 3 {
		t.Errorf("rendered %d rows, want placeholder + 2 blank", got)
	}
	if !strings.Contains(html, "範例按鈕") {
		t.Error("placeholder row missing")
	}
	if !strings.Contains(html, `name="action" value="add"`) {
		t.Error("add-row button should post the table back")
	}
	if strings.Contains(html, "extra=") {
		t.Error("add-row control must not be a plain link")
	}
}

func TestEditorUnknownDepartmentSelectsFirst(t *testing.T) {
	page := NewPage(testBrand, newSession(filestore.Default(), true), PageOptions{Department: "nope"})
	if page.Editor.Selected != "行銷部" {
		t.Errorf("Selected = %s, want first column", page.Editor.Selected)
	}
}

func TestLinkCardEscaping(t *testing.T) {
	var buf bytes.Buffer
	link := domain.Link{Name: `<script>alert(1)</script>`, URL: "javascript:alert(1)", Desc: `"quoted" & more`}
	if err := LinkCard(link).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := buf.String()

	if strings.Contains(html, "<script>") {
		t.Error("link name not escaped")
	}
	if strings.Contains(html, "javascript:") {
		t.Error("unsafe URL not sanitized")
	}
	if !strings.Contains(html, "&amp; more") {
		t.Error("description not escaped")
	}
	if !strings.Contains(html, `rel="noopener noreferrer"`) {
		t.Error("outbound link should not leak the opener")
	}
}
