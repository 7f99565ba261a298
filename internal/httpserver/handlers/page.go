package handlers

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portal/internal/render"
)

// Messages shown inline on the page.
const (
	msgWrongPassword = "❌ 密碼錯誤"
	msgSaved         = "✅ %s 設定已更新！"
	msgRequired      = "第 %d 列：按鈕名稱與連結網址為必填"
	msgConflict      = "⚠️ 設定檔已被其他人修改，已重新載入最新內容，請確認後再儲存。"
	msgSaveFailed    = "儲存失敗，請稍後再試"
	msgUnknownDept   = "找不到部門 %s"
	msgNoDepartment  = "請選擇要編輯的部門"
)

// maxFormBytes bounds login and editor submissions.
const maxFormBytes = 1 << 20

func renderPage(w http.ResponseWriter, r *http.Request, d deps.Deps, sess *domain.Session, opts render.PageOptions, status int) {
	w.Header().Set("Cache-Control", "no-store")
	page := render.NewPage(d.Brand, sess, opts)
	templ.Handler(render.PortalPage(page), templ.WithStatus(status)).ServeHTTP(w, r)
}
