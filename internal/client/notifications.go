package client

import (
	"context"
	"net/http"

	"github.com/joshua-takyi/evently/internal/models"
)

type NotificationsClient struct{ c *Client }

type NotificationPage struct {
	Items  []*models.Notification `json:"items"`
	Total  int                    `json:"total"`
	Unread int                    `json:"unread"`
}

func (n *NotificationsClient) List(ctx context.Context, opts ListOptions) (*NotificationPage, error) {
	var page NotificationPage
	if _, err := n.c.do(ctx, http.MethodGet, "/notifications", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (n *NotificationsClient) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Unread int `json:"unread"`
	}
	if _, err := n.c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Unread, nil
}

func (n *NotificationsClient) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyID
	}
	_, err := n.c.do(ctx, http.MethodPatch, "/notifications/"+pathEscape(id)+"/read", nil, nil, nil)
	return err
}

func (n *NotificationsClient) MarkAllRead(ctx context.Context) (int, error) {
	var out struct {
		Updated int `json:"updated"`
	}
	if _, err := n.c.do(ctx, http.MethodPatch, "/notifications/read-all", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

func (n *NotificationsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyID
	}
	_, err := n.c.do(ctx, http.MethodDelete, "/notifications/"+pathEscape(id), nil, nil, nil)
	return err
}
