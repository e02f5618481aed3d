package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Spok95/barber-kiosk/internal/domain/catalog"
	"github.com/Spok95/barber-kiosk/internal/domain/orders"
	"github.com/Spok95/barber-kiosk/internal/domain/selection"
	"github.com/Spok95/barber-kiosk/internal/domain/styles"
	"github.com/Spok95/barber-kiosk/internal/imaging"
	"github.com/Spok95/barber-kiosk/internal/infra/metrics"
	"github.com/Spok95/barber-kiosk/internal/report"
)

const maxUploadBytes = 10 << 20

type OrderCreator interface {
	Create(ctx context.Context, o orders.Order) (*orders.Order, error)
}

type OrderLister interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]orders.Order, error)
}

// Notifier получает подтверждённый заказ (барбер в Telegram).
type Notifier interface {
	OrderConfirmed(o orders.Order)
}

// API — JSON-ручки мастера выбора для фронта киоска. Пользователь
// (аккаунт салона) приходит в заголовке X-User-ID: сама аутентификация
// живёт снаружи.
type API struct {
	log           *slog.Logger
	sessions      *selection.Sessions
	merger        *styles.Merger
	orders        OrderCreator
	lister        OrderLister
	notifier      Notifier
	minSelections int

	loadedUsers sync.Map
}

func NewAPI(log *slog.Logger, sessions *selection.Sessions, merger *styles.Merger,
	creator OrderCreator, lister OrderLister, notifier Notifier, minSelections int) *API {

	return &API{
		log:           log,
		sessions:      sessions,
		merger:        merger,
		orders:        creator,
		lister:        lister,
		notifier:      notifier,
		minSelections: minSelections,
	}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", a.createSession)
	mux.HandleFunc("GET /api/sessions/{id}", a.getSession)
	mux.HandleFunc("POST /api/sessions/{id}/service-type", a.setServiceType)
	mux.HandleFunc("POST /api/sessions/{id}/haircut/style", a.setHaircutStyle)
	mux.HandleFunc("POST /api/sessions/{id}/haircut/details", a.toggleHaircutDetail)
	mux.HandleFunc("POST /api/sessions/{id}/beard/style", a.setBeardStyle)
	mux.HandleFunc("POST /api/sessions/{id}/beard/details", a.toggleBeardDetail)
	mux.HandleFunc("POST /api/sessions/{id}/reset", a.resetSession)
	mux.HandleFunc("GET /api/sessions/{id}/progress", a.progress)
	mux.HandleFunc("POST /api/sessions/{id}/confirm", a.confirm)
	mux.HandleFunc("GET /api/catalog/{type}", a.catalogByType)
	mux.HandleFunc("POST /api/styles/{type}/{id}/image", a.updateStyleImage)
	mux.HandleFunc("DELETE /api/styles/{type}/{id}/image", a.resetStyleImage)
	mux.HandleFunc("GET /api/orders/export", a.exportOrders)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (a *API) userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// ensureOverrides лениво подтягивает переопределения пользователя
// при первом обращении к каталогу.
func (a *API) ensureOverrides(r *http.Request, userID string) {
	if userID == "" {
		return
	}
	if _, seen := a.loadedUsers.LoadOrStore(userID, struct{}{}); !seen {
		a.merger.Load(r.Context(), userID)
	}
}

// sessionView — ответ всех мутаций сессии: новый выбор плюс что
// доступно на экране деталей стрижки.
type sessionView struct {
	SessionID      string                 `json:"sessionId"`
	Selection      selection.Selection    `json:"selection"`
	Availability   selection.Availability `json:"availability"`
	SelectionCount int                    `json:"selectionCount"`
	CanContinue    bool                   `json:"canContinue"`
}

func (a *API) view(id string, sel selection.Selection) sessionView {
	return sessionView{
		SessionID:      id,
		Selection:      sel,
		Availability:   selection.Resolve(sel),
		SelectionCount: selection.SelectionCount(sel.HaircutDetails),
		CanContinue:    selection.Complete(sel.HaircutDetails, a.minSelections),
	}
}

func (a *API) createSession(w http.ResponseWriter, _ *http.Request) {
	id, m := a.sessions.Create()
	writeJSON(w, http.StatusCreated, a.view(id, m.Selection()))
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	m := a.sessions.Get(r.Context(), id)
	// авторазрешение идемпотентно, прогоняем на каждом чтении
	sel := selection.AutoResolve(m)
	writeJSON(w, http.StatusOK, a.view(id, sel))
}

func (a *API) setServiceType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServiceType selection.ServiceType `json:"serviceType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.ServiceType.Valid() {
		writeError(w, http.StatusBadRequest, "serviceType must be hair|beard|both")
		return
	}
	id := r.PathValue("id")
	m := a.sessions.Get(r.Context(), id)
	sel := m.SetServiceType(req.ServiceType)
	metrics.Transitions.WithLabelValues("set_service_type").Inc()
	writeJSON(w, http.StatusOK, a.view(id, sel))
}

func (a *API) setHaircutStyle(w http.ResponseWriter, r *http.Request) {
	a.setStyle(w, r, catalog.TypeHairStyle)
}

func (a *API) setBeardStyle(w http.ResponseWriter, r *http.Request) {
	a.setStyle(w, r, catalog.TypeBeardStyle)
}

func (a *API) setStyle(w http.ResponseWriter, r *http.Request, t catalog.OptionType) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "style id required")
		return
	}
	userID := a.userID(r)
	a.ensureOverrides(r, userID)

	var style *catalog.StyleOption
	for _, o := range a.merger.EffectiveCatalog(userID, t) {
		if o.ID == req.ID {
			style = &o
			break
		}
	}
	if style == nil {
		writeError(w, http.StatusNotFound, "unknown style")
		return
	}

	id := r.PathValue("id")
	m := a.sessions.Get(r.Context(), id)
	var sel selection.Selection
	if t == catalog.TypeHairStyle {
		m.SetHaircutStyle(*style)
		metrics.Transitions.WithLabelValues("set_haircut_style").Inc()
		// новый стиль — новые ограничения, singleton-поля доезжают сразу
		sel = selection.AutoResolve(m)
	} else {
		sel = m.SetBeardStyle(*style)
		metrics.Transitions.WithLabelValues("set_beard_style").Inc()
	}
	writeJSON(w, http.StatusOK, a.view(id, sel))
}

type toggleRequest struct {
	Field selection.DetailField `json:"field"`
	ID    string                `json:"id"`
}

func (a *API) toggleHaircutDetail(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Field == "" || req.ID == "" {
		writeError(w, http.StatusBadRequest, "field and id required")
		return
	}
	id := r.PathValue("id")
	m := a.sessions.Get(r.Context(), id)
	sel := m.Selection()

	cur := currentHaircutValue(sel.HaircutDetails, req.Field)
	if cur != req.ID {
		// выбираем новое значение — оно обязано входить в домен,
		// объявленный резолвером для текущего стиля
		av := selection.Resolve(sel)
		if !selection.AllowedHaircutDetail(av, req.Field, req.ID) {
			writeError(w, http.StatusUnprocessableEntity, "option not available for this style")
			return
		}
	}

	sel, err := m.ToggleHaircutDetail(req.Field, req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown detail field")
		return
	}
	metrics.Transitions.WithLabelValues("toggle_haircut_detail").Inc()
	writeJSON(w, http.StatusOK, a.view(id, sel))
}

func currentHaircutValue(d selection.HaircutDetails, f selection.DetailField) string {
	switch f {
	case selection.FieldMethod:
		return d.Method
	case selection.FieldMachineHeight:
		return d.MachineHeight
	case selection.FieldFadeType:
		return d.FadeType
	case selection.FieldSideStyle:
		return d.SideStyle
	case selection.FieldFinish:
		return d.Finish
	case selection.FieldScissorHeight:
		return d.ScissorHeight
	}
	return ""
}

func (a *API) toggleBeardDetail(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Field == "" || req.ID == "" {
		writeError(w, http.StatusBadRequest, "field and id required")
		return
	}
	id := r.PathValue("id")
	m := a.sessions.Get(r.Context(), id)
	sel := m.Selection()

	cur := ""
	if req.Field == selection.FieldBeardHeight {
		cur = sel.BeardDetails.Height
	} else if req.Field == selection.FieldBeardContour {
		cur = sel.BeardDetails.Contour
	}
	if cur != req.ID && !selection.AllowedBeardDetail(req.Field, req.ID) {
		writeError(w, http.StatusUnprocessableEntity, "unknown beard option")
		return
	}

	sel, err := m.ToggleBeardDetail(req.Field, req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown detail field")
		return
	}
	metrics.Transitions.WithLabelValues("toggle_beard_detail").Inc()
	writeJSON(w, http.StatusOK, a.view(id, sel))
}

func (a *API) resetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	m := a.sessions.Get(r.Context(), id)
	sel := m.Reset()
	metrics.Transitions.WithLabelValues("reset").Inc()
	writeJSON(w, http.StatusOK, a.view(id, sel))
}

func (a *API) progress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current := 0
	if v := r.URL.Query().Get("current"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			current = n
		}
	}
	m := a.sessions.Get(r.Context(), id)
	writeJSON(w, http.StatusOK, m.ProgressSteps(current))
}

func (a *API) confirm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	m := a.sessions.Get(r.Context(), id)
	sel := m.Selection()
	if sel.ServiceType == "" {
		writeError(w, http.StatusBadRequest, "nothing selected")
		return
	}

	o := orders.Order{
		SessionID:      id,
		UserID:         a.userID(r),
		ServiceType:    sel.ServiceType,
		HaircutDetails: sel.HaircutDetails,
		BeardDetails:   sel.BeardDetails,
	}
	if sel.HaircutStyle != nil {
		o.HaircutStyleID = sel.HaircutStyle.ID
	}
	if sel.BeardStyle != nil {
		o.BeardStyleID = sel.BeardStyle.ID
	}

	created, err := a.orders.Create(r.Context(), o)
	if err != nil {
		a.log.Error("order create failed", "session", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store order")
		return
	}
	metrics.OrdersConfirmed.Inc()
	if a.notifier != nil {
		a.notifier.OrderConfirmed(*created)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"orderId": created.ID})
}

func (a *API) catalogByType(w http.ResponseWriter, r *http.Request) {
	t := catalog.OptionType(r.PathValue("type"))
	if !t.Valid() {
		writeError(w, http.StatusBadRequest, "unknown option type")
		return
	}
	userID := a.userID(r)
	a.ensureOverrides(r, userID)
	writeJSON(w, http.StatusOK, a.merger.EffectiveCatalog(userID, t))
}

func (a *API) updateStyleImage(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "user required")
		return
	}
	t := catalog.OptionType(r.PathValue("type"))
	if !t.Valid() {
		writeError(w, http.StatusBadRequest, "unknown option type")
		return
	}
	optionID := r.PathValue("id")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form with image expected")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer func() { _ = file.Close() }()
	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}

	data, ext, err := imaging.Downsample(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported image")
		return
	}

	a.ensureOverrides(r, userID)
	url, err := a.merger.UpdateOverride(r.Context(), userID, optionID, t, data, ext)
	if err != nil {
		metrics.OverrideUpdates.WithLabelValues("update", "error").Inc()
		switch {
		case errors.Is(err, styles.ErrUnknownOption):
			writeError(w, http.StatusNotFound, "unknown catalog option")
		case errors.Is(err, styles.ErrUpdateInFlight):
			writeError(w, http.StatusConflict, "update already in progress")
		default:
			a.log.Error("override update failed", "user", userID, "type", t, "option", optionID, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to save image")
		}
		return
	}
	metrics.OverrideUpdates.WithLabelValues("update", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}

func (a *API) resetStyleImage(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "user required")
		return
	}
	t := catalog.OptionType(r.PathValue("type"))
	if !t.Valid() {
		writeError(w, http.StatusBadRequest, "unknown option type")
		return
	}
	optionID := r.PathValue("id")

	a.ensureOverrides(r, userID)
	if err := a.merger.ResetOverride(r.Context(), userID, optionID, t); err != nil {
		metrics.OverrideUpdates.WithLabelValues("reset", "error").Inc()
		if errors.Is(err, styles.ErrUpdateInFlight) {
			writeError(w, http.StatusConflict, "update already in progress")
			return
		}
		a.log.Error("override reset failed", "user", userID, "type", t, "option", optionID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to reset image")
		return
	}
	metrics.OverrideUpdates.WithLabelValues("reset", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) exportOrders(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from: expected YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to: expected YYYY-MM-DD")
			return
		}
		to = t.AddDate(0, 0, 1) // включительно
	}

	rows, err := a.lister.ListBetween(r.Context(), from, to)
	if err != nil {
		a.log.Error("orders list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	f, err := report.OrdersXLSX(rows)
	if err != nil {
		a.log.Error("orders export failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="pedidos.xlsx"`)
	if err := f.Write(w); err != nil {
		a.log.Error("orders export write failed", "err", err)
	}
}
