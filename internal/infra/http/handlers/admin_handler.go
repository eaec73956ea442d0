package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/auth"
	"github.com/bunnystock/leaddesk/internal/dashboard"
	"github.com/bunnystock/leaddesk/internal/entity"
	"github.com/bunnystock/leaddesk/internal/infra/http/middleware"
	"github.com/bunnystock/leaddesk/internal/usecase"
)

//go:embed templates/*.html
var pageFS embed.FS

var pages = template.Must(template.ParseFS(pageFS, "templates/*.html"))

// AdminHandler serves the server-rendered admin pages: login, logout and
// the lead dashboard.
type AdminHandler struct {
	Sessions  *auth.SessionManager
	Passwords *auth.PasswordChecker
	List      *usecase.ListLeadsUseCase
	AdminHost string
	// Secure marks the session cookie Secure (production).
	Secure   bool
	Location *time.Location
	Log      *zap.Logger
}

type loginPage struct {
	Action string
	Error  string
}

type dashboardRow struct {
	ID          string
	Name        string
	Phone       string
	Email       string
	Channel     string
	Message     string
	Status      string
	StatusLabel string
	CreatedAt   string
}

type statusOption struct {
	Value    string
	Label    string
	Selected bool
}

type dashboardPage struct {
	Rows       []dashboardRow
	Summary    dashboard.Summary
	Query      string
	Filters    []statusOption
	Statuses   []statusOption
	LogoutPath string
	Degraded   bool
	Error      string
}

// Index sends /admin to the dashboard.
func (h *AdminHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, middleware.PublicAdminPath(r, h.AdminHost, "/dashboard"), http.StatusSeeOther)
}

func (h *AdminHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.SessionCookie); err == nil && h.Sessions.Verify(c.Value) == nil {
		h.Index(w, r)
		return
	}
	h.renderLogin(w, r, http.StatusOK, "")
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, "요청을 처리할 수 없습니다.")
		return
	}

	if !h.Passwords.Check(r.PostFormValue("password")) {
		h.Log.Warn("🔒 admin login rejected", zap.String("remote_addr", r.RemoteAddr))
		h.renderLogin(w, r, http.StatusUnauthorized, "비밀번호가 올바르지 않습니다.")
		return
	}

	token, exp, err := h.Sessions.Issue()
	if err != nil {
		h.Log.Error("❌ issue admin session", zap.Error(err))
		h.renderLogin(w, r, http.StatusInternalServerError, "잠시 후 다시 시도해 주세요.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(h.Sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	h.Log.Info("🔓 admin logged in", zap.String("remote_addr", r.RemoteAddr))
	h.Index(w, r)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, middleware.LoginPath(r, h.AdminHost), http.StatusSeeOther)
}

// Dashboard renders the lead table. q and status refine the loaded rows
// with the same filter the TUI uses.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	page := dashboardPage{LogoutPath: middleware.PublicAdminPath(r, h.AdminHost, "/logout")}

	out, err := h.List.Admin(r.Context(), usecase.AdminListInput{Limit: usecase.AdminMaxLimit})
	if err != nil {
		h.Log.Error("❌ dashboard list failed", zap.Error(err))
		page.Error = "목록을 불러오지 못했습니다."
		h.render(w, http.StatusInternalServerError, "dashboard.html", page)
		return
	}

	board := dashboard.NewBoard(out.Items)
	board.Query = r.URL.Query().Get("q")
	if s, err := entity.ParseStatus(r.URL.Query().Get("status")); err == nil {
		board.Status = s
	}

	page.Query = board.Query
	page.Summary = board.Summary()
	page.Degraded = out.Degraded
	page.Filters = append(page.Filters, statusOption{Value: "", Label: "전체", Selected: board.Status == ""})
	for _, s := range entity.Statuses {
		page.Filters = append(page.Filters, statusOption{Value: string(s), Label: dashboard.StatusLabel(s), Selected: board.Status == s})
		page.Statuses = append(page.Statuses, statusOption{Value: string(s), Label: dashboard.StatusLabel(s)})
	}
	for _, it := range board.Visible() {
		page.Rows = append(page.Rows, h.row(it))
	}

	h.render(w, http.StatusOK, "dashboard.html", page)
}

func (h *AdminHandler) row(it usecase.AdminLeadItem) dashboardRow {
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	return dashboardRow{
		ID:          it.ID,
		Name:        it.Name,
		Phone:       it.Phone,
		Email:       it.Email,
		Channel:     it.Channel,
		Message:     it.Message,
		Status:      it.Status,
		StatusLabel: dashboard.StatusLabel(entity.Status(it.Status)),
		CreatedAt:   time.UnixMilli(it.CreatedAt).In(loc).Format("2006-01-02 15:04"),
	}
}

func (h *AdminHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.render(w, status, "login.html", loginPage{
		Action: middleware.LoginPath(r, h.AdminHost),
		Error:  msg,
	})
}

func (h *AdminHandler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		h.Log.Error("❌ render page", zap.String("page", name), zap.Error(err))
	}
}
