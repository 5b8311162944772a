package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bikeshop/internal/catalog"
	"bikeshop/internal/notify"
)

type fakeStore struct {
	mu       sync.Mutex
	bookings map[string]*Booking
	updates  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: map[string]*Booking{}}
}

func (s *fakeStore) ListAll(context.Context) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (s *fakeStore) ListByEmail(_ context.Context, email string) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		if b.Email == email {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeStore) Insert(_ context.Context, b *Booking) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bookings[b.ID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id string, status Status, _ string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.Status = status
	s.updates++
	cp := *b
	return &cp, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

type fakeCatalog struct {
	mu        sync.Mutex
	offerings map[string]catalog.Offering
}

func newFakeCatalog(offs ...catalog.Offering) *fakeCatalog {
	fc := &fakeCatalog{offerings: map[string]catalog.Offering{}}
	for _, o := range offs {
		fc.offerings[o.Name] = o
	}
	return fc
}

func (c *fakeCatalog) GetByName(_ context.Context, name string) (*catalog.Offering, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.offerings[name]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (c *fakeCatalog) set(o catalog.Offering) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offerings[o.Name] = o
}

func (c *fakeCatalog) remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.offerings, name)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *fakeNotifier) Enqueue(msg notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func tuneUp() catalog.Offering {
	return catalog.Offering{
		ID:       "off-1",
		Name:     "Tune-up",
		Price:    decimal.NewFromInt(20),
		Duration: 1,
	}
}

func validParams() CreateParams {
	return CreateParams{
		Email:   "a@x.com",
		Name:    "Alex",
		Phone:   "555-0101",
		Address: "1 Main St",
		Service: "Tune-up",
		Date:    "2025-01-10",
	}
}

func newTestService(store *fakeStore, cat *fakeCatalog, n Notifier) *Service {
	return NewService(store, cat, n, zerolog.Nop())
}

func TestCreate_MissingFieldsRejected(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeCatalog(tuneUp()), &fakeNotifier{})

	for _, tc := range []struct {
		field  string
		mutate func(*CreateParams)
	}{
		{"email", func(p *CreateParams) { p.Email = "" }},
		{"name", func(p *CreateParams) { p.Name = "" }},
		{"phone", func(p *CreateParams) { p.Phone = "" }},
		{"address", func(p *CreateParams) { p.Address = "" }},
		{"service", func(p *CreateParams) { p.Service = "" }},
		{"date", func(p *CreateParams) { p.Date = "" }},
	} {
		p := validParams()
		tc.mutate(&p)
		_, err := svc.Create(context.Background(), p)
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("missing %s: expected validation error, got %v", tc.field, err)
		}
	}
}

func TestCreate_UnknownServiceRejected(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeCatalog(), &fakeNotifier{})

	p := validParams()
	_, err := svc.Create(context.Background(), p)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_ForcesPendingAndSnapshots(t *testing.T) {
	store := newFakeStore()
	cat := newFakeCatalog(tuneUp())
	svc := newTestService(store, cat, &fakeNotifier{})

	b, err := svc.Create(context.Background(), validParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("new booking status = %q, want Pending", b.Status)
	}
	if b.ID == "" || b.Timestamp == "" {
		t.Fatalf("server-side id/timestamp not stamped: %+v", b)
	}
	if b.BookingDate != "01/10/2025" {
		t.Fatalf("booking date = %q", b.BookingDate)
	}
	if b.ServiceDetails.Name != "Tune-up" || !b.ServiceDetails.Price.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("snapshot not copied from catalog: %+v", b.ServiceDetails)
	}
}

func TestCreate_SnapshotSurvivesCatalogChanges(t *testing.T) {
	store := newFakeStore()
	cat := newFakeCatalog(tuneUp())
	svc := newTestService(store, cat, &fakeNotifier{})

	b, err := svc.Create(context.Background(), validParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	repriced := tuneUp()
	repriced.Price = decimal.NewFromInt(30)
	cat.set(repriced)
	cat.remove("Tune-up")

	got, err := svc.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.ServiceDetails.Price.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("snapshot price changed to %s", got.ServiceDetails.Price)
	}
}

func TestSetStatus_InvalidValueLeavesStoreUntouched(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(tuneUp()), &fakeNotifier{})

	b, err := svc.Create(context.Background(), validParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.SetStatus(context.Background(), b.ID, "Shipped", "owner@shop.com")
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.updates != 0 {
		t.Fatalf("store written on invalid status")
	}
	got, _ := svc.Get(context.Background(), b.ID)
	if got.Status != StatusPending {
		t.Fatalf("status mutated to %q", got.Status)
	}
}

func TestSetStatus_UnknownBooking(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeCatalog(tuneUp()), &fakeNotifier{})

	if _, err := svc.SetStatus(context.Background(), "nope", "Completed", "owner@shop.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetStatus_NotificationMapping(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := newTestService(store, newFakeCatalog(tuneUp()), notifier)

	b, err := svc.Create(context.Background(), validParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i, status := range []string{"In Progress", "Ready for Delivery", "Completed"} {
		if _, err := svc.SetStatus(context.Background(), b.ID, status, "owner@shop.com"); err != nil {
			t.Fatalf("set %q: %v", status, err)
		}
		if got := notifier.count(); got != i+1 {
			t.Fatalf("after %q: %d notifications, want %d", status, got, i+1)
		}
		last := notifier.sent[len(notifier.sent)-1]
		if last.To != "a@x.com" {
			t.Fatalf("notification addressed to %q", last.To)
		}
	}

	if _, err := svc.SetStatus(context.Background(), b.ID, "Pending", "owner@shop.com"); err != nil {
		t.Fatalf("set Pending: %v", err)
	}
	if got := notifier.count(); got != 3 {
		t.Fatalf("Pending produced a notification: %d total", got)
	}
}

type failingMailer struct {
	mu       sync.Mutex
	attempts int
}

func (m *failingMailer) Send(context.Context, notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	return fmt.Errorf("relay unreachable")
}

func (m *failingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func TestSetStatus_SurvivesNotificationFailure(t *testing.T) {
	store := newFakeStore()
	mailer := &failingMailer{}
	dispatcher := notify.NewDispatcher(mailer, zerolog.Nop())
	dispatcher.Start()

	svc := newTestService(store, newFakeCatalog(tuneUp()), dispatcher)

	b, err := svc.Create(context.Background(), validParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.SetStatus(context.Background(), b.ID, "Completed", "owner@shop.com")
	if err != nil {
		t.Fatalf("transition failed because of the sink: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("status = %q", updated.Status)
	}

	dispatcher.Close()

	if mailer.count() != 1 {
		t.Fatalf("expected one delivery attempt, got %d", mailer.count())
	}
	got, _ := svc.Get(context.Background(), b.ID)
	if got.Status != StatusCompleted {
		t.Fatalf("stored status = %q after sink failure", got.Status)
	}
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeCatalog(tuneUp()), &fakeNotifier{})

	b, err := svc.Create(context.Background(), validParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
