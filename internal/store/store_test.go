package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/client"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/realtime"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newAPI(t *testing.T, h http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := client.New(srv.URL+"/api/v1", client.Options{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestFilePersisterRoundTrip(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "nested", "session.json"))

	s, err := p.Load()
	if err != nil || s != nil {
		t.Fatalf("empty persister should load nil, got %+v %v", s, err)
	}
	want := &Session{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second)}
	if err := p.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("unexpected session %+v", got)
	}
	if err := p.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := p.Clear(); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
	if s, _ := p.Load(); s != nil {
		t.Error("cleared persister should load nil")
	}
}

func authServer(t *testing.T, logouts *int32) *client.Client {
	return newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/signin":
			writeJSON(w, http.StatusOK, models.SuccessResponse(models.AuthSession{
				AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresIn: 3600,
			}, ""))
		case "/api/v1/auth/refresh":
			writeJSON(w, http.StatusOK, models.SuccessResponse(models.AuthSession{
				AccessToken: "access-2", ExpiresIn: 3600,
			}, ""))
		case "/api/v1/me":
			if r.Header.Get("Authorization") == "" {
				writeJSON(w, http.StatusUnauthorized, models.ErrorResponse("missing token"))
				return
			}
			writeJSON(w, http.StatusOK, models.SuccessResponse(models.User{Email: "ama@example.com"}, ""))
		case "/api/v1/auth/logout":
			atomic.AddInt32(logouts, 1)
			writeJSON(w, http.StatusOK, models.SuccessResponse(nil, "signed out"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
}

func TestAuthStoreSignInPersistsAndNotifies(t *testing.T) {
	var logouts int32
	api := authServer(t, &logouts)
	persist := &MemoryPersister{}
	auth := NewAuthStore(api, persist, nil)

	var seen []*Session
	unsubscribe := auth.Subscribe(func(s *Session) { seen = append(seen, s) })

	if err := auth.SignIn(context.Background(), "ama@example.com", "secret123"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if auth.Token() != "access-1" {
		t.Errorf("unexpected token %q", auth.Token())
	}
	s := auth.Session()
	if s.User == nil || s.User.Email != "ama@example.com" {
		t.Fatalf("profile not loaded: %+v", s)
	}
	if stored, _ := persist.Load(); stored == nil || stored.RefreshToken != "refresh-1" {
		t.Errorf("session not persisted: %+v", stored)
	}
	if len(seen) != 2 {
		t.Errorf("expected token and profile notifications, got %d", len(seen))
	}

	unsubscribe()
	if err := auth.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if auth.SignedIn() || len(seen) != 2 {
		t.Error("sign out should clear state without notifying removed subscribers")
	}
	if logouts != 1 {
		t.Errorf("expected one logout call, got %d", logouts)
	}
	if stored, _ := persist.Load(); stored != nil {
		t.Error("sign out should clear the persisted session")
	}
}

func TestAuthStoreRestoreRefreshesExpiredSession(t *testing.T) {
	var logouts int32
	api := authServer(t, &logouts)
	persist := &MemoryPersister{}
	_ = persist.Save(&Session{AccessToken: "stale", RefreshToken: "refresh-1", ExpiresAt: time.Now().Add(-time.Minute)})

	auth := NewAuthStore(api, persist, nil)
	if err := auth.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if auth.Token() != "access-2" {
		t.Fatalf("expected refreshed token, got %q", auth.Token())
	}
	if auth.Session().RefreshToken != "refresh-1" {
		t.Error("refresh without a new refresh token should keep the old one")
	}
}

func TestAuthStoreRestoreWithoutRefreshTokenSignsOut(t *testing.T) {
	var logouts int32
	api := authServer(t, &logouts)
	persist := &MemoryPersister{}
	_ = persist.Save(&Session{AccessToken: "stale", ExpiresAt: time.Now().Add(-time.Minute)})

	auth := NewAuthStore(api, persist, nil)
	if err := auth.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if auth.SignedIn() {
		t.Error("expired session without refresh token should be dropped")
	}
}

func TestWishlistStoreFetchAddRemove(t *testing.T) {
	itemA := models.WishlistItem{ItemID: "a", ItemType: models.ItemTypeEvent}
	itemB := models.WishlistItem{ItemID: "b", ItemType: models.ItemTypeService}
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, models.SuccessResponse([]models.WishlistItem{itemA}, ""))
		case http.MethodPost:
			writeJSON(w, http.StatusOK, models.SuccessResponse([]models.WishlistItem{itemB, itemA}, ""))
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, models.SuccessResponse(nil, "removed"))
		}
	})
	ws := NewWishlistStore(api)
	var last []models.WishlistItem
	ws.Subscribe(func(items []models.WishlistItem) { last = items })

	ctx := context.Background()
	if err := ws.Fetch(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !ws.Contains("a") || ws.Contains("b") {
		t.Fatalf("unexpected items %+v", ws.Items())
	}
	added, err := ws.Toggle(ctx, "b", models.ItemTypeService)
	if err != nil || !added {
		t.Fatalf("toggle add: %v %v", added, err)
	}
	if len(last) != 2 || last[0].ItemID != "b" {
		t.Errorf("subscriber should see newest first, got %+v", last)
	}
	added, err = ws.Toggle(ctx, "a", models.ItemTypeEvent)
	if err != nil || added {
		t.Fatalf("toggle remove: %v %v", added, err)
	}
	if ws.Contains("a") || len(ws.Items()) != 1 {
		t.Errorf("item a should be gone, got %+v", ws.Items())
	}
}

func TestWishlistStoreLatestFetchWins(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-release
			writeJSON(w, http.StatusOK, models.SuccessResponse([]models.WishlistItem{{ItemID: "old"}}, ""))
			return
		}
		writeJSON(w, http.StatusOK, models.SuccessResponse([]models.WishlistItem{{ItemID: "new"}}, ""))
	})
	ws := NewWishlistStore(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = ws.Fetch(context.Background())
	}()
	for atomic.LoadInt32(&calls) == 0 {
		time.Sleep(time.Millisecond)
	}
	if err := ws.Fetch(context.Background()); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	close(release)
	wg.Wait()

	if items := ws.Items(); len(items) != 1 || items[0].ItemID != "new" {
		t.Errorf("stale response overwrote newer state: %+v", items)
	}
}

func TestNotificationStoreFetchAndMutations(t *testing.T) {
	first, second := primitive.NewObjectID(), primitive.NewObjectID()
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, models.SuccessResponse(map[string]interface{}{
				"items": []*models.Notification{
					{ID: first, Message: "Booking confirmed"},
					{ID: second, Message: "New review", Read: true},
				},
				"total":  2,
				"unread": 1,
			}, ""))
		case r.URL.Path == "/api/v1/notifications/read-all":
			writeJSON(w, http.StatusOK, models.SuccessResponse(map[string]int{"updated": 1}, ""))
		default:
			writeJSON(w, http.StatusOK, models.SuccessResponse(nil, ""))
		}
	})
	ns := NewNotificationStore(api, 0)
	ctx := context.Background()

	if err := ns.Fetch(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if st := ns.State(); st.Total != 2 || st.Unread != 1 || len(st.Items) != 2 {
		t.Fatalf("unexpected state %+v", st)
	}
	if err := ns.MarkRead(ctx, first.Hex()); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if st := ns.State(); st.Unread != 0 || !st.Items[0].Read {
		t.Errorf("mark read not applied: %+v", st)
	}
	if err := ns.Delete(ctx, second.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if st := ns.State(); st.Total != 1 || len(st.Items) != 1 || st.Items[0].ID != first {
		t.Errorf("delete not applied: %+v", st)
	}
}

func TestNotificationStoreConsumesRealtimeEvents(t *testing.T) {
	ns := NewNotificationStore(newAPI(t, http.NotFound), 10)
	var updates int32
	ns.Subscribe(func(NotificationState) { atomic.AddInt32(&updates, 1) })

	pushed := &models.Notification{ID: primitive.NewObjectID(), UserID: uuid.New(), Message: "New booking request"}
	in := make(chan realtime.Message, 4)
	in <- realtime.Message{Event: realtime.EventNotification, Payload: &realtime.NotificationPushed{Notification: pushed}}
	in <- realtime.Message{Event: realtime.EventNotification, Payload: &realtime.NotificationPushed{Notification: pushed}}
	in <- realtime.Message{Event: realtime.EventReceiveMessage, Payload: &realtime.ReceiveMessage{}}
	close(in)

	ns.Consume(context.Background(), in)
	st := ns.State()
	if len(st.Items) != 1 || st.Unread != 1 || st.Total != 1 {
		t.Fatalf("duplicate push should be applied once, got %+v", st)
	}

	if !ns.Apply(realtime.Message{Event: realtime.EventNotificationDeleted, Payload: &realtime.NotificationDeleted{NotificationID: pushed.ID.Hex()}}) {
		t.Fatal("delete event should be applied")
	}
	if st := ns.State(); len(st.Items) != 0 || st.Unread != 0 {
		t.Errorf("delete event not applied: %+v", st)
	}
	if updates != 3 {
		t.Errorf("expected 3 notifications to subscribers, got %d", updates)
	}
}

func TestSubscribersDropOutOfOrderSnapshots(t *testing.T) {
	var subs subscribers[string]
	var seen []string
	subs.add(func(v string) {
		seen = append(seen, v)
		if v == "b" {
			subs.publish(3, "c")
		}
	})

	subs.publish(2, "b")
	subs.publish(1, "a")
	if len(seen) != 2 || seen[0] != "b" || seen[1] != "c" {
		t.Fatalf("expected b then the nested c, got %v", seen)
	}
}

func TestConcurrentPushesEndOnLatestState(t *testing.T) {
	ns := NewNotificationStore(newAPI(t, http.NotFound), 10)
	var mu sync.Mutex
	var last NotificationState
	ns.Subscribe(func(st NotificationState) {
		mu.Lock()
		last = st
		mu.Unlock()
	})

	const pushes = 50
	var wg sync.WaitGroup
	for i := 0; i < pushes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ns.Apply(realtime.Message{Event: realtime.EventNotification, Payload: &realtime.NotificationPushed{
				Notification: &models.Notification{ID: primitive.NewObjectID(), Message: "New booking request"},
			}})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if want := ns.State(); last.Total != want.Total || last.Total != pushes || len(last.Items) != pushes {
		t.Fatalf("subscriber ended on total %d with %d items, store has %d", last.Total, len(last.Items), want.Total)
	}
}
