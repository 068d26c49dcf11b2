package store

import (
	"context"
	"sync"

	"github.com/joshua-takyi/evently/internal/client"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/realtime"
)

// NotificationState is what subscribers of the notification store see.
type NotificationState struct {
	Items  []*models.Notification
	Total  int
	Unread int
}

type NotificationStore struct {
	api   *client.Client
	limit int

	mu      sync.RWMutex
	state   NotificationState
	version uint64
	gen     generation
	subs    subscribers[NotificationState]
}

func NewNotificationStore(api *client.Client, pageSize int) *NotificationStore {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &NotificationStore{api: api, limit: pageSize}
}

func (ns *NotificationStore) Subscribe(fn func(NotificationState)) func() { return ns.subs.add(fn) }

func (ns *NotificationStore) State() NotificationState {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return ns.snapshotLocked()
}

func (ns *NotificationStore) snapshotLocked() NotificationState {
	return NotificationState{
		Items:  append([]*models.Notification(nil), ns.state.Items...),
		Total:  ns.state.Total,
		Unread: ns.state.Unread,
	}
}

func (ns *NotificationStore) update(fn func(s *NotificationState)) {
	ns.mu.Lock()
	fn(&ns.state)
	ns.version++
	seq := ns.version
	snap := ns.snapshotLocked()
	ns.mu.Unlock()
	ns.subs.publish(seq, snap)
}

func (ns *NotificationStore) Fetch(ctx context.Context) error {
	n := ns.gen.begin()
	page, err := ns.api.Notifications.List(ctx, client.ListOptions{Page: 1, Limit: ns.limit})
	if err != nil {
		return err
	}
	if !ns.gen.commit(n) {
		return nil
	}
	ns.update(func(s *NotificationState) {
		s.Items = page.Items
		s.Total = page.Total
		s.Unread = page.Unread
	})
	return nil
}

func (ns *NotificationStore) MarkRead(ctx context.Context, id string) error {
	if err := ns.api.Notifications.MarkRead(ctx, id); err != nil {
		return err
	}
	ns.update(func(s *NotificationState) {
		for i, item := range s.Items {
			if item.ID.Hex() == id && !item.Read {
				cp := *item
				cp.Read = true
				s.Items[i] = &cp
				if s.Unread > 0 {
					s.Unread--
				}
			}
		}
	})
	return nil
}

func (ns *NotificationStore) MarkAllRead(ctx context.Context) error {
	if _, err := ns.api.Notifications.MarkAllRead(ctx); err != nil {
		return err
	}
	ns.update(func(s *NotificationState) {
		for i, item := range s.Items {
			if !item.Read {
				cp := *item
				cp.Read = true
				s.Items[i] = &cp
			}
		}
		s.Unread = 0
	})
	return nil
}

func (ns *NotificationStore) Delete(ctx context.Context, id string) error {
	if err := ns.api.Notifications.Delete(ctx, id); err != nil {
		return err
	}
	ns.remove(id)
	return nil
}

func (ns *NotificationStore) remove(id string) {
	ns.update(func(s *NotificationState) {
		kept := s.Items[:0:0]
		for _, item := range s.Items {
			if item.ID.Hex() == id {
				if !item.Read && s.Unread > 0 {
					s.Unread--
				}
				if s.Total > 0 {
					s.Total--
				}
				continue
			}
			kept = append(kept, item)
		}
		s.Items = kept
	})
}

// Apply folds one realtime event into the store and reports whether it was used.
func (ns *NotificationStore) Apply(msg realtime.Message) bool {
	switch p := msg.Payload.(type) {
	case *realtime.NotificationPushed:
		if p.Notification == nil {
			return false
		}
		n := p.Notification
		ns.update(func(s *NotificationState) {
			for _, item := range s.Items {
				if item.ID == n.ID {
					return
				}
			}
			s.Items = append([]*models.Notification{n}, s.Items...)
			s.Total++
			if !n.Read {
				s.Unread++
			}
		})
		return true
	case *realtime.NotificationDeleted:
		ns.remove(p.NotificationID)
		return true
	}
	return false
}

// Consume applies events from a subscriber until in is closed or ctx is done.
func (ns *NotificationStore) Consume(ctx context.Context, in <-chan realtime.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			ns.Apply(msg)
		}
	}
}

func (ns *NotificationStore) Reset() {
	ns.gen.invalidate()
	ns.update(func(s *NotificationState) { *s = NotificationState{} })
}
