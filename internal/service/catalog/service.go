// Package catalog is the single source of truth for identity lookups:
// movies, screenings, halls, accounts, coupons and payments. Lookups are
// tolerant (nil for not-found); only mutations return errors.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cinelab/cinetix/internal/clock"
	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/repository"
	"github.com/cinelab/cinetix/internal/sequence"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Movies     *repository.MovieRepo
	Screenings *repository.ScreeningRepo
	Halls      *repository.HallRepo
	Accounts   *repository.AccountRepo
	Coupons    *repository.CouponRepo
	Payments   *repository.PaymentRepo

	MovieSeq     *sequence.Sequence
	ScreeningSeq *sequence.Sequence
	PaymentSeq   *sequence.Sequence

	SeatsPerRow int
	Clock       clock.Clock
}

type Service struct {
	cfg Config

	mu         sync.RWMutex
	accounts   []*domain.Account
	halls      []*domain.Hall
	movies     []*domain.Movie
	screenings []*domain.Screening
	coupons    []*domain.Coupon
	payments   []*domain.Payment
}

func New(cfg Config) *Service {
	if cfg.SeatsPerRow <= 0 {
		cfg.SeatsPerRow = 10
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}

	return &Service{cfg: cfg}
}

// Load reads every collection the catalog owns. Independent collections are
// fetched in parallel; payments are linked to coupons afterwards.
func (s *Service) Load(ctx context.Context) error {
	const op = "catalog.Service.Load"

	var (
		accounts    []*domain.Account
		halls       []*domain.Hall
		movies      []*domain.Movie
		screenings  []*domain.Screening
		coupons     []*domain.Coupon
		paymentRecs []repository.PaymentRecord
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { accounts, err = s.cfg.Accounts.All(gCtx); return })
	g.Go(func() (err error) { halls, err = s.cfg.Halls.All(gCtx); return })
	g.Go(func() (err error) { movies, err = s.cfg.Movies.All(gCtx); return })
	g.Go(func() (err error) { screenings, err = s.cfg.Screenings.All(gCtx); return })
	g.Go(func() (err error) { coupons, err = s.cfg.Coupons.All(gCtx); return })
	g.Go(func() (err error) { paymentRecs, err = s.cfg.Payments.All(gCtx); return })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = accounts
	s.halls = halls
	s.movies = movies
	s.screenings = screenings
	s.coupons = coupons

	s.payments = s.payments[:0]
	for _, rec := range paymentRecs {
		p, err := s.paymentFromRecord(rec)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.payments = append(s.payments, p)
	}

	for _, m := range s.movies {
		s.cfg.MovieSeq.Observe(m.ID)
	}
	for _, sc := range s.screenings {
		s.cfg.ScreeningSeq.Observe(sc.ID)
	}
	for _, p := range s.payments {
		s.cfg.PaymentSeq.Observe(p.ID)
	}

	return nil
}

func (s *Service) paymentFromRecord(rec repository.PaymentRecord) (*domain.Payment, error) {
	created, err := time.Parse("2006-01-02 15:04:05", rec.CreatedOn)
	if err != nil {
		return nil, fmt.Errorf("payment %d: bad created_on %q: %w", rec.PaymentID, rec.CreatedOn, err)
	}

	p := &domain.Payment{
		ID:         rec.PaymentID,
		Amount:     rec.Amount,
		CreatedOn:  created,
		CardNumber: rec.CreditCardNumber,
		CardType:   rec.CardType,
		ExpiryDate: rec.ExpiryDate,
		NameOnCard: rec.NameOnCard,
	}
	if rec.Coupon != nil {
		p.Coupon = s.findCouponLocked(*rec.Coupon)
	}

	return p, nil
}

// ----- lookups -----

func (s *Service) FindMovie(id int64) *domain.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.movies {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *Service) ScreeningByID(id int64) *domain.Screening {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sc := range s.screenings {
		if sc.ID == id {
			return sc
		}
	}
	return nil
}

// FindScreening matches a movie's screening by date and start time, the way
// customers pick a session from the listings.
func (s *Service) FindScreening(movieID int64, date, startTime string) *domain.Screening {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sc := range s.screenings {
		if sc.MovieID == movieID && sc.Date == date && sc.StartTime == startTime {
			return sc
		}
	}
	return nil
}

func (s *Service) ScreeningsByMovie(movieID int64) []*domain.Screening {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Screening
	for _, sc := range s.screenings {
		if sc.MovieID == movieID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (s *Service) FindAccount(username string) *domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findAccountLocked(username)
}

func (s *Service) findAccountLocked(username string) *domain.Account {
	for _, a := range s.accounts {
		if a.Username == username {
			return a
		}
	}
	return nil
}

// FindCustomer resolves a customer account only; staff and admin usernames
// do not book tickets.
func (s *Service) FindCustomer(username string) *domain.Account {
	a := s.FindAccount(username)
	if a == nil || a.Role != domain.RoleCustomer {
		return nil
	}
	return a
}

func (s *Service) FindCoupon(code string) *domain.Coupon {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findCouponLocked(code)
}

func (s *Service) findCouponLocked(code string) *domain.Coupon {
	for _, c := range s.coupons {
		if c.Code == code {
			return c
		}
	}
	return nil
}

func (s *Service) FindPayment(id int64) *domain.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Service) FindHall(name string) *domain.Hall {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.halls {
		if h.Name == name {
			return h
		}
	}
	return nil
}

func (s *Service) Movies() []*domain.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Movie, len(s.movies))
	copy(out, s.movies)
	return out
}

// ----- browsing -----

func (s *Service) Languages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uniqueField(s.movies, func(m *domain.Movie) string { return m.Language })
}

func (s *Service) Genres() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uniqueField(s.movies, func(m *domain.Movie) string { return m.Genre })
}

func uniqueField(movies []*domain.Movie, field func(*domain.Movie) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range movies {
		v := field(m)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// ScreeningDates lists the distinct upcoming dates a movie still screens on.
func (s *Service) ScreeningDates(movieID int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.cfg.Clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	seen := make(map[string]bool)
	var dates []string
	for _, sc := range s.screenings {
		if sc.MovieID != movieID || !sc.Active {
			continue
		}
		day, err := time.Parse("2006-01-02", sc.Date)
		if err != nil || day.Before(today) {
			continue
		}
		if !seen[sc.Date] {
			seen[sc.Date] = true
			dates = append(dates, sc.Date)
		}
	}
	sort.Strings(dates)
	return dates
}

// Filter narrows the movie list. An empty field (or "all" for language and
// genre) applies no filter; the date range applies only when both bounds
// are set.
type Filter struct {
	Title    string
	Language string
	Genre    string
	From     time.Time
	To       time.Time
}

func (s *Service) FilterMovies(f Filter) []*domain.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		if f.Title != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(f.Title)) {
			continue
		}
		if f.Language != "" && f.Language != "all" &&
			!strings.Contains(strings.ToLower(m.Language), strings.ToLower(f.Language)) {
			continue
		}
		if f.Genre != "" && f.Genre != "all" &&
			!strings.Contains(strings.ToLower(m.Genre), strings.ToLower(f.Genre)) {
			continue
		}
		if !f.From.IsZero() && !f.To.IsZero() {
			if m.ReleaseDate.Before(f.From) || m.ReleaseDate.After(f.To) {
				continue
			}
		}
		matched = append(matched, m)
	}
	return matched
}

// ----- mutations -----

func (s *Service) RegisterCustomer(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	const op = "catalog.Service.RegisterCustomer"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findAccountLocked(a.Username) != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrDuplicateUsername)
	}
	for _, existing := range s.accounts {
		if existing.Role == domain.RoleCustomer && existing.Email == a.Email {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
		}
	}

	a.Role = domain.RoleCustomer
	if err := s.cfg.Accounts.AppendCustomer(ctx, a); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.accounts = append(s.accounts, a)
	return a, nil
}

func (s *Service) AddMovie(ctx context.Context, m *domain.Movie) (*domain.Movie, error) {
	const op = "catalog.Service.AddMovie"

	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.cfg.MovieSeq.Next()
	m.Active = true

	if err := s.cfg.Movies.Append(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.movies = append(s.movies, m)
	return m, nil
}

// DeactivateMovie soft-deletes a movie; bookings may still reference it.
func (s *Service) DeactivateMovie(ctx context.Context, id int64) error {
	const op = "catalog.Service.DeactivateMovie"

	s.mu.Lock()
	defer s.mu.Unlock()

	var movie *domain.Movie
	for _, m := range s.movies {
		if m.ID == id {
			movie = m
			break
		}
	}
	if movie == nil {
		return fmt.Errorf("%s: %w", op, ErrMovieNotFound)
	}

	if err := s.cfg.Movies.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	movie.Active = false
	return nil
}

// AddScreening materializes a fresh seat set for the screening from the
// hall's capacity; seats are priced per screening, not per hall.
func (s *Service) AddScreening(ctx context.Context, movieID int64, date, startTime, endTime, hallName string, seatPrice float64) (*domain.Screening, error) {
	const op = "catalog.Service.AddScreening"

	s.mu.Lock()
	defer s.mu.Unlock()

	var movie *domain.Movie
	for _, m := range s.movies {
		if m.ID == movieID {
			movie = m
			break
		}
	}
	if movie == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMovieNotFound)
	}

	var hall *domain.Hall
	for _, h := range s.halls {
		if h.Name == hallName {
			hall = h
			break
		}
	}
	if hall == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrHallNotFound)
	}

	sc := &domain.Screening{
		ID:        s.cfg.ScreeningSeq.Next(),
		MovieID:   movieID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		HallName:  hallName,
		Seats:     materializeSeats(hall.Capacity, s.cfg.SeatsPerRow, seatPrice),
		Active:    true,
	}

	if err := s.cfg.Screenings.Append(ctx, sc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.screenings = append(s.screenings, sc)
	return sc, nil
}

func (s *Service) DeactivateScreening(ctx context.Context, id int64) error {
	const op = "catalog.Service.DeactivateScreening"

	s.mu.Lock()
	defer s.mu.Unlock()

	var sc *domain.Screening
	for _, candidate := range s.screenings {
		if candidate.ID == id {
			sc = candidate
			break
		}
	}
	if sc == nil {
		return fmt.Errorf("%s: %w", op, ErrScreeningNotFound)
	}

	if err := s.cfg.Screenings.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sc.Active = false
	return nil
}

// AddPayment indexes a payment the ledger has already persisted.
func (s *Service) AddPayment(p *domain.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = append(s.payments, p)
}

// Counts reports collection sizes for startup logging.
func (s *Service) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]int{
		"accounts":   len(s.accounts),
		"halls":      len(s.halls),
		"movies":     len(s.movies),
		"screenings": len(s.screenings),
		"coupons":    len(s.coupons),
		"payments":   len(s.payments),
	}
}

func materializeSeats(capacity, seatsPerRow int, price float64) []*domain.Seat {
	rows := capacity / seatsPerRow
	seats := make([]*domain.Seat, 0, rows*seatsPerRow)
	for row := 1; row <= rows; row++ {
		for number := 1; number <= seatsPerRow; number++ {
			seats = append(seats, &domain.Seat{
				Row:    row,
				Number: number,
				Price:  price,
			})
		}
	}
	return seats
}
