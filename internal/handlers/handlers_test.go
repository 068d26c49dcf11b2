package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/guard"
	"github.com/joshua-takyi/evently/internal/helpers"
	"github.com/joshua-takyi/evently/internal/middleware"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/realtime"
	"github.com/joshua-takyi/evently/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memBookings struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking
	creates  int
}

func (r *memBookings) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	cp := *b
	r.bookings[b.ID] = &cp
	return b, nil
}

func (r *memBookings) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBookings) UpdateBooking(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if s, ok := fields["status"].(string); ok {
		b.Status = models.BookingStatus(s)
	}
	cp := *b
	return &cp, nil
}

func (r *memBookings) ListBookings(ctx context.Context, filter models.ListFilter, offset, limit int) ([]*models.Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Booking{}
	for _, b := range r.bookings {
		if v, ok := filter["user_id"]; ok && b.UserID.String() != v {
			continue
		}
		if v, ok := filter["provider_id"]; ok && b.ProviderID.String() != v {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *memBookings) ListBookedDates(ctx context.Context, targetID uuid.UUID, from, to string) ([]string, error) {
	return nil, nil
}

type memServices struct {
	service *models.Service
}

func (r *memServices) CreateService(ctx context.Context, s *models.Service) (*models.Service, error) {
	return s, nil
}

func (r *memServices) GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if r.service == nil || r.service.ID != id {
		return nil, models.ErrNotFound
	}
	cp := *r.service
	return &cp, nil
}

func (r *memServices) ListServices(ctx context.Context, filter models.ListFilter, offset, limit int) ([]*models.Service, int, error) {
	return []*models.Service{r.service}, 1, nil
}

func (r *memServices) UpdateService(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Service, error) {
	return r.GetServiceByID(ctx, id)
}

func (r *memServices) DeleteService(ctx context.Context, id uuid.UUID) error { return nil }

type noSpaces struct{}

func (noSpaces) CreateEventSpace(ctx context.Context, s *models.EventSpace) (*models.EventSpace, error) {
	return s, nil
}

func (noSpaces) GetEventSpaceByID(ctx context.Context, id uuid.UUID) (*models.EventSpace, error) {
	return nil, models.ErrNotFound
}

func (noSpaces) ListEventSpaces(ctx context.Context, filter models.ListFilter, offset, limit int) ([]*models.EventSpace, int, error) {
	return nil, 0, nil
}

func (noSpaces) UpdateEventSpace(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.EventSpace, error) {
	return nil, models.ErrNotFound
}

func (noSpaces) DeleteEventSpace(ctx context.Context, id uuid.UUID) error { return models.ErrNotFound }

type testApp struct {
	router   *gin.Engine
	bookings *memBookings
	service  *models.Service
	user     uuid.UUID
	provider uuid.UUID
	svc      *services.BookingService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withClaims stands in for Auth.Required using the X-Test-User header.
func withClaims(c *gin.Context) {
	if id := c.GetHeader("X-Test-User"); id != "" {
		c.Set(middleware.ClaimsKey, &helpers.EnhancedClaims{
			CustomClaims: &helpers.CustomClaims{},
			UserID:       id,
			Role:         c.GetHeader("X-Test-Role"),
		})
		c.Set(middleware.AccessTokenKey, "test-token")
	}
	c.Next()
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	provider := uuid.New()
	service := &models.Service{ID: uuid.New(), ProviderID: provider, Title: "Catering", Price: 300, Category: "food"}
	bookings := &memBookings{bookings: map[uuid.UUID]*models.Booking{}}
	catalog := &memServices{service: service}
	spaces := services.NewEventSpaceService(noSpaces{}, bookings, nil)
	bs := services.NewBookingService(bookings, catalog, spaces, services.BookingServiceOptions{
		Guards: guard.NewRegistry(guard.Options{}),
		Logger: discardLogger(),
	})

	r := gin.New()
	r.Use(middleware.ErrorHandler(discardLogger()))
	r.Use(withClaims)
	r.POST("/bookings", CreateBooking(bs))
	r.GET("/bookings/mine", ListMyBookings(bs))
	r.GET("/bookings/:id", GetBooking(bs))
	r.PATCH("/bookings/:id/respond", RespondToBooking(bs))
	r.PATCH("/bookings/:id/cancel", CancelBooking(bs))

	return &testApp{router: r, bookings: bookings, service: service, user: uuid.New(), provider: provider, svc: bs}
}

func (a *testApp) do(method, path string, as uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != uuid.Nil {
		req.Header.Set("X-Test-User", as.String())
		req.Header.Set("X-Test-Role", models.RoleUser)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) bookingBody(phone string) map[string]string {
	return map[string]string{
		"target_kind":  string(models.TargetService),
		"target_id":    a.service.ID.String(),
		"date":         time.Now().AddDate(0, 0, 7).Format(models.DateLayout),
		"space":        "Garden Hall",
		"phone_number": phone,
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) (models.ApiResponse, json.RawMessage) {
	t.Helper()
	var env struct {
		models.ApiResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid response body %q: %v", w.Body.String(), err)
	}
	return env.ApiResponse, env.Data
}

func TestCreateBookingTwiceReturnsTooManyRequests(t *testing.T) {
	app := newTestApp(t)

	first := app.do(http.MethodPost, "/bookings", app.user, app.bookingBody("12345678"))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}
	second := app.do(http.MethodPost, "/bookings", app.user, app.bookingBody("12345678"))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for the repeated submit, got %d: %s", second.Code, second.Body.String())
	}
	if app.bookings.creates != 1 {
		t.Fatalf("expected one stored booking, got %d", app.bookings.creates)
	}
}

func TestCreateBookingInvalidPhoneAlert(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodPost, "/bookings", app.user, app.bookingBody("1234"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	res, _ := decode(t, w)
	if res.Error != guard.AlertInvalidPhone {
		t.Errorf("expected the phone alert, got %q", res.Error)
	}
	if app.bookings.creates != 0 {
		t.Error("invalid booking must not be stored")
	}
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodPost, "/bookings", uuid.Nil, app.bookingBody("12345678"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestBookingVisibilityAndTransitions(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodPost, "/bookings", app.user, app.bookingBody("12345678"))
	_, data := decode(t, w)
	var booking models.Booking
	if err := json.Unmarshal(data, &booking); err != nil {
		t.Fatalf("bad booking payload: %v", err)
	}
	path := "/bookings/" + booking.ID.String()

	if w := app.do(http.MethodGet, path, uuid.New(), nil); w.Code != http.StatusForbidden {
		t.Errorf("stranger: expected 403, got %d", w.Code)
	}
	if w := app.do(http.MethodGet, "/bookings/not-a-uuid", app.user, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", w.Code)
	}
	if w := app.do(http.MethodPatch, path+"/respond", app.user, map[string]string{"status": "accepted"}); w.Code != http.StatusForbidden {
		t.Errorf("requester responding: expected 403, got %d", w.Code)
	}
	if w := app.do(http.MethodPatch, path+"/respond", app.provider, map[string]string{"status": "confirmed"}); w.Code != http.StatusOK {
		t.Fatalf("provider accept: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := app.do(http.MethodPatch, path+"/respond", app.provider, map[string]string{"status": "rejected"}); w.Code != http.StatusConflict {
		t.Errorf("second response: expected 409, got %d", w.Code)
	}
	if w := app.do(http.MethodPatch, path+"/cancel", app.user, nil); w.Code != http.StatusOK {
		t.Errorf("cancel: expected 200, got %d", w.Code)
	}
}

func TestListMyBookingsIsPaginated(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/bookings", app.user, app.bookingBody("12345678"))

	w := app.do(http.MethodGet, "/bookings/mine?page=1&limit=5", app.user, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	res, _ := decode(t, w)
	if res.Total != 1 || res.Limit != 5 || res.Page != 1 {
		t.Errorf("unexpected page metadata %+v", res)
	}
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   models.ErrorCode
	}{
		{models.NewValidationError("date", "Please select a date"), http.StatusBadRequest, models.CodeValidation},
		{fmt.Errorf("bookings x: %w", models.ErrNotFound), http.StatusNotFound, models.CodeNotFound},
		{models.ErrForbidden, http.StatusForbidden, models.CodeForbidden},
		{models.ErrConflict, http.StatusConflict, models.CodeConflict},
		{models.ErrInvalidTransition, http.StatusConflict, models.CodeInvalidTransition},
		{models.ErrDuplicateSubmission, http.StatusTooManyRequests, models.CodeDuplicateSubmission},
		{errors.New("db down"), http.StatusInternalServerError, models.CodeInternal},
	}
	for _, tc := range cases {
		r := gin.New()
		r.Use(middleware.ErrorHandler(discardLogger()))
		r.GET("/", func(c *gin.Context) { respondError(c, tc.err) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != tc.status {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.status, w.Code)
		}
		var body models.ApiResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: bad body %s", tc.err, w.Body.String())
		}
		if body.Code != tc.code {
			t.Errorf("%v: expected code %q, got %q", tc.err, tc.code, body.Code)
		}
	}
}

func TestValidationErrorNamesField(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, models.NewValidationError("phone_number", "Phone number must be exactly 8 digits"))
	var body models.ApiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Field != "phone_number" || body.Error != "Phone number must be exactly 8 digits" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestPageFromOffset(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=10&offset=30", nil)
	p := pageFrom(c)
	if p.offset != 30 || p.limit != 10 || p.page != 4 {
		t.Errorf("unexpected pagination %+v", p)
	}
}

func TestDispatcherRoutesBookingResponse(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodPost, "/bookings", app.user, app.bookingBody("12345678"))
	_, data := decode(t, w)
	var booking models.Booking
	_ = json.Unmarshal(data, &booking)

	d := &RealtimeDispatcher{Bookings: app.svc}
	env, _ := realtime.NewEnvelope(realtime.EventBookingResponse, realtime.BookingResponse{
		BookingID: booking.ID.String(),
		Status:    "accepted",
	})
	if err := d.Dispatch(context.Background(), app.provider.String(), env); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	stored, _ := app.bookings.GetBookingByID(context.Background(), booking.ID)
	if stored.Status != models.BookingAccepted {
		t.Errorf("expected accepted, got %s", stored.Status)
	}

	outbound, _ := realtime.NewEnvelope(realtime.EventNewBooking, realtime.NewBooking{})
	if err := d.Dispatch(context.Background(), app.provider.String(), outbound); err == nil {
		t.Error("clients must not be able to send server-only events")
	}
	if err := d.Dispatch(context.Background(), "nobody", env); err == nil {
		t.Error("expected an error for a malformed user id")
	}
}
