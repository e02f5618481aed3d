package http

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Spok95/barber-kiosk/internal/domain/catalog"
	"github.com/Spok95/barber-kiosk/internal/domain/orders"
	"github.com/Spok95/barber-kiosk/internal/domain/selection"
	"github.com/Spok95/barber-kiosk/internal/domain/styles"
)

type stubSnapshots struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *stubSnapshots) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[key]
	return raw, ok, nil
}

func (s *stubSnapshots) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = data
	return nil
}

func (s *stubSnapshots) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type stubStyleStore struct {
	mu      sync.Mutex
	records map[styles.Key]styles.Override
	blobs   map[string][]byte
}

func (s *stubStyleStore) ListOverrides(_ context.Context, userID string) ([]styles.Override, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []styles.Override
	for _, o := range s.records {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubStyleStore) PutBlob(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[path] = data
	return nil
}

func (s *stubStyleStore) ListBlobs(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for p := range s.blobs {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubStyleStore) DeleteBlobs(_ context.Context, paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.blobs, p)
	}
	return nil
}

func (s *stubStyleStore) PublicURL(path string) string { return "http://files.local/" + path }

func (s *stubStyleStore) UpsertOverrideRecord(_ context.Context, o styles.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[styles.Key{UserID: o.UserID, OptionType: o.OptionType, OptionID: o.OptionID}] = o
	return nil
}

func (s *stubStyleStore) DeleteOverrideRecord(_ context.Context, userID string, t catalog.OptionType, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, styles.Key{UserID: userID, OptionType: t, OptionID: optionID})
	return nil
}

type stubOrders struct {
	mu      sync.Mutex
	created []orders.Order
	listed  []orders.Order
}

func (s *stubOrders) Create(_ context.Context, o orders.Order) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = int64(len(s.created) + 1)
	o.CreatedAt = time.Now()
	s.created = append(s.created, o)
	return &o, nil
}

func (s *stubOrders) ListBetween(_ context.Context, _, _ time.Time) ([]orders.Order, error) {
	return s.listed, nil
}

type stubNotifier struct {
	mu     sync.Mutex
	orders []orders.Order
}

func (s *stubNotifier) OrderConfirmed(o orders.Order) {
	s.mu.Lock()
	s.orders = append(s.orders, o)
	s.mu.Unlock()
}

type testEnv struct {
	mux      *http.ServeMux
	orders   *stubOrders
	notifier *stubNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	sessions := selection.NewSessions(&stubSnapshots{data: map[string][]byte{}}, log)
	t.Cleanup(sessions.Close)
	merger := styles.NewMerger(&stubStyleStore{
		records: map[styles.Key]styles.Override{},
		blobs:   map[string][]byte{},
	}, log)
	ord := &stubOrders{}
	ntf := &stubNotifier{}
	api := NewAPI(log, sessions, merger, ord, ord, ntf, 2)
	mux := http.NewServeMux()
	api.Register(mux)
	return &testEnv{mux: mux, orders: ord, notifier: ntf}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) sessionView {
	t.Helper()
	var v sessionView
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", w.Code, w.Body)
	}
	v := decodeView(t, w)
	if v.SessionID == "" {
		t.Fatalf("empty session id")
	}
	return v.SessionID
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/sessions", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("code = %d", w.Code)
	}
	v := decodeView(t, w)
	if v.Selection.ServiceType != "" || v.CanContinue {
		t.Fatalf("new session must be empty: %+v", v)
	}
}

func TestUnknownSessionActsAsEmpty(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/sessions/ghost", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if v := decodeView(t, w); v.Selection.ServiceType != "" {
		t.Fatalf("ghost session must be empty: %+v", v)
	}
}

func TestServiceTypeValidation(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/service-type", "", map[string]string{"serviceType": "nails"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", w.Code)
	}
}

// Полный проход fade: тип услуги → стиль → авторазрешение → ручной
// добор деталей → можно продолжать.
func TestFadeFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/api/sessions/" + id

	w := env.do(t, http.MethodPost, base+"/service-type", "", map[string]string{"serviceType": "hair"})
	if w.Code != http.StatusOK {
		t.Fatalf("service-type: %d %s", w.Code, w.Body)
	}

	w = env.do(t, http.MethodPost, base+"/haircut/style", "", map[string]string{"id": "fade"})
	if w.Code != http.StatusOK {
		t.Fatalf("style: %d %s", w.Code, w.Body)
	}
	v := decodeView(t, w)
	if v.Selection.HaircutDetails.Method != "machine" || v.Selection.HaircutDetails.Finish != "defined" {
		t.Fatalf("singletons must auto-apply: %+v", v.Selection.HaircutDetails)
	}
	if !v.Availability.ShowFadeType {
		t.Fatalf("fade type picker must be visible")
	}
	if v.Availability.ShowMachineHeight {
		t.Fatalf("machine height hidden for fade")
	}

	w = env.do(t, http.MethodPost, base+"/haircut/details", "", toggleRequest{Field: selection.FieldFadeType, ID: "mid"})
	if w.Code != http.StatusOK {
		t.Fatalf("fadeType: %d %s", w.Code, w.Body)
	}
	w = env.do(t, http.MethodPost, base+"/haircut/details", "", toggleRequest{Field: selection.FieldSideStyle, ID: "zero"})
	if w.Code != http.StatusOK {
		t.Fatalf("sideStyle: %d %s", w.Code, w.Body)
	}
	v = decodeView(t, w)
	if v.SelectionCount != 4 || !v.CanContinue {
		t.Fatalf("count=%d canContinue=%v", v.SelectionCount, v.CanContinue)
	}
}

func TestToggleRejectsUnavailableOption(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/api/sessions/" + id

	env.do(t, http.MethodPost, base+"/service-type", "", map[string]string{"serviceType": "hair"})
	env.do(t, http.MethodPost, base+"/haircut/style", "", map[string]string{"id": "fade"})

	// straight не входит в laterais для fade
	w := env.do(t, http.MethodPost, base+"/haircut/details", "", toggleRequest{Field: selection.FieldSideStyle, ID: "straight"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code = %d %s", w.Code, w.Body)
	}

	// метод для fade один, scissors запрещён
	w = env.do(t, http.MethodPost, base+"/haircut/details", "", toggleRequest{Field: selection.FieldMethod, ID: "scissors"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code = %d %s", w.Code, w.Body)
	}
}

func TestToggleOffAlwaysAllowed(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/api/sessions/" + id

	env.do(t, http.MethodPost, base+"/service-type", "", map[string]string{"serviceType": "hair"})
	env.do(t, http.MethodPost, base+"/haircut/style", "", map[string]string{"id": "fade"})

	// повторный клик по уже выбранному значению снимает его
	w := env.do(t, http.MethodPost, base+"/haircut/details", "", toggleRequest{Field: selection.FieldMethod, ID: "machine"})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle off: %d %s", w.Code, w.Body)
	}
	if v := decodeView(t, w); v.Selection.HaircutDetails.Method != "" {
		t.Fatalf("method must be cleared, got %q", v.Selection.HaircutDetails.Method)
	}
}

// Оба сервиса: настройка бороды не трогает уже выбранную стрижку.
func TestBothFlowKeepsHaircutState(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/api/sessions/" + id

	env.do(t, http.MethodPost, base+"/service-type", "", map[string]string{"serviceType": "both"})
	env.do(t, http.MethodPost, base+"/haircut/style", "", map[string]string{"id": "fade"})
	env.do(t, http.MethodPost, base+"/haircut/details", "", toggleRequest{Field: selection.FieldFadeType, ID: "mid"})

	w := env.do(t, http.MethodPost, base+"/beard/style", "", map[string]string{"id": "goatee"})
	if w.Code != http.StatusOK {
		t.Fatalf("beard style: %d %s", w.Code, w.Body)
	}
	w = env.do(t, http.MethodPost, base+"/beard/details", "", toggleRequest{Field: selection.FieldBeardHeight, ID: "short"})
	if w.Code != http.StatusOK {
		t.Fatalf("beard details: %d %s", w.Code, w.Body)
	}

	v := decodeView(t, w)
	if v.Selection.HaircutStyle == nil || v.Selection.HaircutStyle.ID != "fade" {
		t.Fatalf("haircut style lost: %+v", v.Selection.HaircutStyle)
	}
	if v.Selection.HaircutDetails.FadeType != "mid" {
		t.Fatalf("haircut details lost: %+v", v.Selection.HaircutDetails)
	}
	if v.Selection.BeardStyle == nil || v.Selection.BeardDetails.Height != "short" {
		t.Fatalf("beard state wrong: %+v", v.Selection)
	}
}

func TestSetStyleUnknownID(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/haircut/style", "", map[string]string{"id": "mullet"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestResetSession(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/api/sessions/" + id

	env.do(t, http.MethodPost, base+"/service-type", "", map[string]string{"serviceType": "hair"})
	w := env.do(t, http.MethodPost, base+"/reset", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: %d", w.Code)
	}
	if v := decodeView(t, w); v.Selection.ServiceType != "" {
		t.Fatalf("selection must be empty after reset: %+v", v.Selection)
	}
}

func TestProgress(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/api/sessions/" + id

	env.do(t, http.MethodPost, base+"/service-type", "", map[string]string{"serviceType": "both"})
	w := env.do(t, http.MethodGet, base+"/progress?current=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("progress: %d", w.Code)
	}
	var p selection.Progress
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Current != 2 || p.Total != 5 {
		t.Fatalf("progress = %+v, want 2/5", p)
	}
}

func TestConfirm(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/api/sessions/" + id

	// пустой выбор подтверждать нечего
	w := env.do(t, http.MethodPost, base+"/confirm", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty confirm: %d", w.Code)
	}

	env.do(t, http.MethodPost, base+"/service-type", "", map[string]string{"serviceType": "hair"})
	env.do(t, http.MethodPost, base+"/haircut/style", "", map[string]string{"id": "fade"})
	env.do(t, http.MethodPost, base+"/haircut/details", "", toggleRequest{Field: selection.FieldFadeType, ID: "mid"})

	w = env.do(t, http.MethodPost, base+"/confirm", "salon-1", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("confirm: %d %s", w.Code, w.Body)
	}
	var resp struct {
		OrderID int64 `json:"orderId"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.OrderID == 0 {
		t.Fatalf("resp = %+v, %v", resp, err)
	}

	if len(env.orders.created) != 1 {
		t.Fatalf("orders created = %d", len(env.orders.created))
	}
	o := env.orders.created[0]
	if o.SessionID != id || o.UserID != "salon-1" || o.HaircutStyleID != "fade" {
		t.Fatalf("order = %+v", o)
	}
	if o.HaircutDetails.FadeType != "mid" || o.HaircutDetails.Method != "machine" {
		t.Fatalf("order details = %+v", o.HaircutDetails)
	}
	if len(env.notifier.orders) != 1 || env.notifier.orders[0].ID != resp.OrderID {
		t.Fatalf("notifier = %+v", env.notifier.orders)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/catalog/nail-style", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown type: %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/catalog/beard-style", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("catalog: %d", w.Code)
	}
	var opts []catalog.StyleOption
	if err := json.NewDecoder(w.Body).Decode(&opts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(opts) != 4 {
		t.Fatalf("beard styles = %d", len(opts))
	}
}

func multipartImage(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if err := png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, path, user string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartImage(t)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func TestStyleImageLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// без пользователя картинки персонализировать нельзя
	if w := env.upload(t, "/api/styles/beard-style/fade-beard/image", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no user: %d", w.Code)
	}
	if w := env.upload(t, "/api/styles/nail-style/x/image", "u1"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad type: %d", w.Code)
	}
	if w := env.upload(t, "/api/styles/beard-style/mullet/image", "u1"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown option: %d", w.Code)
	}

	w := env.upload(t, "/api/styles/beard-style/fade-beard/image", "u1")
	if w.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", w.Code, w.Body)
	}
	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.ImageURL, "u1/beard-style_fade-beard_") || !strings.Contains(resp.ImageURL, "?v=") {
		t.Fatalf("imageUrl = %q", resp.ImageURL)
	}

	// каталог пользователя отдаёт новую картинку
	cw := env.do(t, http.MethodGet, "/api/catalog/beard-style", "u1", nil)
	var opts []catalog.StyleOption
	if err := json.NewDecoder(cw.Body).Decode(&opts); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	var found bool
	for _, o := range opts {
		if o.ID == "fade-beard" {
			found = o.ImageURL == resp.ImageURL
		}
	}
	if !found {
		t.Fatalf("override not visible in catalog: %+v", opts)
	}

	// сброс возвращает дефолт
	dw := env.do(t, http.MethodDelete, "/api/styles/beard-style/fade-beard/image", "u1", nil)
	if dw.Code != http.StatusNoContent {
		t.Fatalf("reset: %d %s", dw.Code, dw.Body)
	}
	cw = env.do(t, http.MethodGet, "/api/catalog/beard-style", "u1", nil)
	opts = nil
	if err := json.NewDecoder(cw.Body).Decode(&opts); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	for _, o := range opts {
		if o.ID == "fade-beard" && o.ImageURL != "" {
			t.Fatalf("override must be gone: %+v", o)
		}
	}
}

func TestExportOrders(t *testing.T) {
	env := newTestEnv(t)
	env.orders.listed = []orders.Order{{
		ID:             1,
		ServiceType:    selection.ServiceHair,
		HaircutStyleID: "fade",
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}

	w := env.do(t, http.MethodGet, "/api/orders/export?from=2026-03-01&to=2026-03-31", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatalf("empty workbook")
	}

	if w := env.do(t, http.MethodGet, "/api/orders/export?from=March", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad from: %d", w.Code)
	}
}
