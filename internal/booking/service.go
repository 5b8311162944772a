package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bikeshop/internal/catalog"
	"bikeshop/internal/notify"
)

// Store is the booking persistence the lifecycle service runs against.
type Store interface {
	ListAll(ctx context.Context) ([]Booking, error)
	ListByEmail(ctx context.Context, email string) ([]Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	Insert(ctx context.Context, b *Booking) (*Booking, error)
	UpdateStatus(ctx context.Context, id string, status Status, actor string) (*Booking, error)
	Delete(ctx context.Context, id string) error
}

// Catalog resolves an offering name to its current definition so the
// snapshot is copied server-side rather than trusted from the client.
type Catalog interface {
	GetByName(ctx context.Context, name string) (*catalog.Offering, error)
}

// Notifier accepts fire-and-forget notifications. Delivery is decoupled
// from the caller: Enqueue cannot fail and cannot block.
type Notifier interface {
	Enqueue(n notify.Notification)
}

// Service owns the booking lifecycle: creation rules, the status state
// machine, and notification dispatch on transitions.
type Service struct {
	store    Store
	catalog  Catalog
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(store Store, cat Catalog, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		catalog:  cat,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// CreateParams carries the client-supplied booking fields. Status and
// creation timestamps are deliberately absent: the service stamps those
// itself and ignores whatever the client sent.
type CreateParams struct {
	Email   string
	Name    string
	Phone   string
	Address string
	Service string
	Date    string
}

func (p CreateParams) validate() error {
	missing := ""
	switch {
	case p.Email == "":
		missing = "email"
	case p.Name == "":
		missing = "name"
	case p.Phone == "":
		missing = "phone"
	case p.Address == "":
		missing = "address"
	case p.Service == "":
		missing = "service"
	case p.Date == "":
		missing = "date"
	}
	if missing != "" {
		return ValidationError{Code: "FIELD_REQUIRED", Message: missing + " is required"}
	}
	return nil
}

// Create validates, snapshots the named offering from the live catalog,
// forces status to Pending and stamps creation time server-side.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Booking, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	off, err := s.catalog.GetByName(ctx, p.Service)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ValidationError{Code: "SERVICE_UNKNOWN", Message: "unknown service: " + p.Service}
		}
		return nil, err
	}

	now := s.now()
	b := &Booking{
		ID:      uuid.NewString(),
		Email:   p.Email,
		Name:    p.Name,
		Phone:   p.Phone,
		Address: p.Address,
		Service: off.Name,
		ServiceDetails: ServiceDetails{
			Name:        off.Name,
			Price:       off.Price,
			Duration:    off.Duration,
			Description: off.Description,
		},
		Date:        p.Date,
		BookingDate: formatBookingDate(p.Date),
		Status:      StatusPending,
		Timestamp:   now.Format("01/02/2006, 3:04:05 PM"),
	}

	return s.store.Insert(ctx, b)
}

// SetStatus transitions a booking and, for statuses that notify, enqueues
// exactly one customer email after the write commits. The transition's
// outcome depends only on the store write; delivery failures are the
// dispatcher's problem and never roll anything back.
func (s *Service) SetStatus(ctx context.Context, id, rawStatus, actor string) (*Booking, error) {
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, ValidationError{Code: "STATUS_INVALID", Message: err.Error()}
	}

	b, err := s.store.UpdateStatus(ctx, id, status, actor)
	if err != nil {
		return nil, err
	}

	if status.Notifies() {
		n, ok := notify.Compose(string(status), b.Email, notify.TemplateData{
			Name:    b.Name,
			Service: b.Service,
			Date:    b.Date,
		})
		if ok {
			s.notifier.Enqueue(n)
		} else {
			s.log.Error().Str("status", string(status)).Msg("no notification template")
		}
	}

	return b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Booking, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]Booking, error) {
	return s.store.ListByEmail(ctx, email)
}

// formatBookingDate renders a YYYY-MM-DD request date as MM/DD/YYYY for
// display; anything unparseable is passed through as-is.
func formatBookingDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("01/02/2006")
}
