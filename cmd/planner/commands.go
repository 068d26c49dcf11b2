package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/client"
	"github.com/joshua-takyi/evently/internal/guard"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/realtime"
	"github.com/joshua-takyi/evently/internal/store"
)

func sortedCommands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseID(flagName, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("-%s must be a valid id", flagName)
	}
	return id, nil
}

func cmdSignIn(ctx context.Context, a *app, args []string) error {
	fs := newFlags("signin")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.auth.SignIn(ctx, *email, *password); err != nil {
		return err
	}
	s := a.auth.Session()
	fmt.Fprintf(a.out, "Signed in as %s\n", s.User.Email)
	return nil
}

func cmdSignOut(ctx context.Context, a *app, _ []string) error {
	if err := a.auth.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func cmdWhoAmI(ctx context.Context, a *app, _ []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if err := a.auth.Fetch(ctx); err != nil {
		return err
	}
	u := a.auth.Session().User
	fmt.Fprintf(a.out, "%s  %s  role=%s\n", u.ID, u.Email, u.Role)
	return nil
}

func cmdEvents(ctx context.Context, a *app, args []string) error {
	fs := newFlags("events")
	page := fs.Int("page", 1, "page number")
	kind := fs.String("type", "", "event type")
	location := fs.String("location", "", "location")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.api.Events.List(ctx, client.ListOptions{Page: *page, Filters: map[string]string{"type": *kind, "location": *location}})
	if err != nil {
		return err
	}
	for _, e := range res.Items {
		fmt.Fprintf(a.out, "%s  %-30s  %s  %s\n", e.ID, e.Name, e.StartDate.Format(models.DateLayout), e.Location)
	}
	printPage(a.out, res.Page, res.Limit, res.Total)
	return nil
}

func cmdSpaces(ctx context.Context, a *app, args []string) error {
	fs := newFlags("spaces")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.api.Spaces.List(ctx, client.ListOptions{Page: *page})
	if err != nil {
		return err
	}
	for _, s := range res.Items {
		fmt.Fprintf(a.out, "%s  %-30s  %s  %.2f/day\n", s.ID, s.Name, s.Location, s.PricePerDay)
	}
	printPage(a.out, res.Page, res.Limit, res.Total)
	return nil
}

func cmdServices(ctx context.Context, a *app, args []string) error {
	fs := newFlags("services")
	page := fs.Int("page", 1, "page number")
	category := fs.String("category", "", "service category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.api.Services.List(ctx, client.ListOptions{Page: *page, Filters: map[string]string{"category": *category}})
	if err != nil {
		return err
	}
	for _, s := range res.Items {
		fmt.Fprintf(a.out, "%s  %-30s  %-12s  %.2f\n", s.ID, s.Title, s.Category, s.Price)
	}
	printPage(a.out, res.Page, res.Limit, res.Total)
	return nil
}

func printPage(w io.Writer, page, limit, total int) {
	fmt.Fprintf(w, "page %d, %d per page, %d total\n", page, limit, total)
}

func cmdAvailability(ctx context.Context, a *app, args []string) error {
	now := time.Now()
	fs := newFlags("availability")
	space := fs.String("space", "", "event space id")
	year := fs.Int("year", now.Year(), "year")
	month := fs.Int("month", int(now.Month()), "month 1-12")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID("space", *space)
	if err != nil {
		return err
	}
	avail, err := a.api.Spaces.Availability(ctx, id, *year, *month)
	if err != nil {
		return err
	}
	days := avail.Unavailable()
	if len(days) == 0 {
		fmt.Fprintf(a.out, "Every day of %d-%02d is free\n", *year, *month)
		return nil
	}
	fmt.Fprintf(a.out, "Booked days in %d-%02d: %v\n", *year, *month, days)
	return nil
}

func cmdBook(ctx context.Context, a *app, args []string) error {
	fs := newFlags("book")
	kind := fs.String("kind", string(models.TargetService), "service or event_space")
	target := fs.String("target", "", "service or event space id")
	date := fs.String("date", "", "booking date YYYY-MM-DD")
	space := fs.String("space", "", "chosen space")
	phone := fs.String("phone", "", "contact phone number")
	notes := fs.String("notes", "", "notes for the provider")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID("target", *target)
	if err != nil {
		return err
	}
	tk := models.TargetKind(*kind)
	if tk != models.TargetService && tk != models.TargetEventSpace {
		return fmt.Errorf("-kind must be %s or %s", models.TargetService, models.TargetEventSpace)
	}

	form := a.api.NewBookingForm(tk, id, guard.Options{})
	defer form.Close()
	out, booking := form.Confirm(ctx, client.BookingInput{Date: *date, Space: *space, PhoneNumber: *phone, Notes: *notes})
	if alert := client.AlertFor(out); alert != "" {
		return errors.New(alert)
	}
	if booking == nil {
		return fmt.Errorf("booking not submitted: %s", out.Reason)
	}
	fmt.Fprintf(a.out, "Booking %s for %s on %s is %s\n", booking.ID, booking.TargetName, booking.Date, booking.Status)
	return nil
}

func cmdBookings(ctx context.Context, a *app, args []string) error {
	fs := newFlags("bookings")
	incoming := fs.Bool("incoming", false, "bookings made against your listings")
	status := fs.String("status", "", "filter by status")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	opts := client.ListOptions{Page: *page, Status: *status}
	list := a.api.Bookings.Mine
	if *incoming {
		list = a.api.Bookings.Incoming
	}
	res, err := list(ctx, opts)
	if err != nil {
		return err
	}
	for _, b := range res.Items {
		fmt.Fprintf(a.out, "%s  %-10s  %s  %-24s  %s\n", b.ID, b.Status, b.Date, b.TargetName, b.Space)
	}
	printPage(a.out, res.Page, res.Limit, res.Total)
	return nil
}

func cmdRespond(ctx context.Context, a *app, args []string) error {
	fs := newFlags("respond")
	raw := fs.String("id", "", "booking id")
	status := fs.String("status", "", "accepted or rejected")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID("id", *raw)
	if err != nil {
		return err
	}
	next, err := models.ParseBookingStatus(*status)
	if err != nil {
		return err
	}
	b, err := a.api.Bookings.Respond(ctx, id, next)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Booking %s is now %s\n", b.ID, b.Status)
	return nil
}

func cmdCancel(ctx context.Context, a *app, args []string) error {
	fs := newFlags("cancel")
	raw := fs.String("id", "", "booking id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID("id", *raw)
	if err != nil {
		return err
	}
	b, err := a.api.Bookings.Cancel(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Booking %s is now %s\n", b.ID, b.Status)
	return nil
}

func cmdNotifications(ctx context.Context, a *app, args []string) error {
	fs := newFlags("notifications")
	readAll := fs.Bool("read-all", false, "mark everything read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	ns := store.NewNotificationStore(a.api, 20)
	if err := ns.Fetch(ctx); err != nil {
		return err
	}
	if *readAll {
		if err := ns.MarkAllRead(ctx); err != nil {
			return err
		}
	}
	st := ns.State()
	for _, n := range st.Items {
		printNotification(a.out, n)
	}
	fmt.Fprintf(a.out, "%d unread of %d\n", st.Unread, st.Total)
	return nil
}

func printNotification(w io.Writer, n *models.Notification) {
	mark := " "
	if !n.Read {
		mark = "*"
	}
	fmt.Fprintf(w, "%s %s  %s  %s\n", mark, n.CreatedAt.Format(time.RFC3339), n.Type, n.Message)
}

func cmdWishlist(ctx context.Context, a *app, args []string) error {
	fs := newFlags("wishlist")
	add := fs.String("add", "", "item id to save")
	itemType := fs.String("type", models.ItemTypeEvent, "event or service")
	remove := fs.String("remove", "", "item id to drop")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	ws := store.NewWishlistStore(a.api)
	switch {
	case *add != "":
		if err := ws.Add(ctx, *add, *itemType); err != nil {
			return err
		}
	case *remove != "":
		if err := ws.Fetch(ctx); err != nil {
			return err
		}
		if err := ws.Remove(ctx, *remove); err != nil {
			return err
		}
	default:
		if err := ws.Fetch(ctx); err != nil {
			return err
		}
	}
	for _, it := range ws.Items() {
		fmt.Fprintf(a.out, "%s  %-7s  added %s\n", it.ItemID, it.ItemType, it.AddedAt.Format(models.DateLayout))
	}
	return nil
}

// cmdWatch prints notifications as they arrive until interrupted.
func cmdWatch(ctx context.Context, a *app, _ []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	s := a.auth.Session()
	if s.User == nil {
		if err := a.auth.Fetch(ctx); err != nil {
			return err
		}
		s = a.auth.Session()
	}

	ns := store.NewNotificationStore(a.api, 20)
	if err := ns.Fetch(ctx); err != nil {
		return err
	}
	seen := ns.State().Total
	unsubscribe := ns.Subscribe(func(st store.NotificationState) {
		if st.Total > seen && len(st.Items) > 0 {
			printNotification(a.out, st.Items[0])
		}
		seen = st.Total
	})
	defer unsubscribe()

	sub := &realtime.Subscriber{
		URL:    wsURL(a.api.BaseURL()),
		Token:  s.AccessToken,
		UserID: s.User.ID.String(),
		Logger: a.logger,
	}
	events := make(chan realtime.Message, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ns.Consume(ctx, events)
	}()

	fmt.Fprintf(a.out, "Watching notifications for %s, %d unread\n", s.User.Email, ns.State().Unread)
	err := sub.Run(ctx, events)
	close(events)
	<-done
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
