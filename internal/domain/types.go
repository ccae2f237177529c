package domain

import (
	"strconv"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "front_desk"
	RoleCustomer Role = "customer"
)

// Account is a single flat identity record; the role tag decides what the
// caller may do with it.
type Account struct {
	Name     string
	Address  string
	Email    string
	Phone    string
	Username string
	Password string
	Role     Role
}

type Movie struct {
	ID          int64
	Title       string
	Language    string
	Genre       string
	Country     string
	ReleaseDate time.Time
	DurationMin int
	Description string
	Active      bool
}

type Hall struct {
	Name     string
	Capacity int
}

// Seat belongs to exactly one screening; it is materialized fresh (with its
// own price) when the screening is created.
type Seat struct {
	Row      int
	Number   int
	Reserved bool
	Price    float64
}

// ID is the row number concatenated with the seat number, e.g. row 1 seat 2
// is "12". Unique within a screening.
func (s *Seat) ID() string {
	return strconv.Itoa(s.Row) + strconv.Itoa(s.Number)
}

type Screening struct {
	ID        int64
	MovieID   int64
	Date      string // "2006-01-02"
	StartTime string // "15:04"
	EndTime   string // "15:04"
	HallName  string
	Seats     []*Seat
	Active    bool
}

func (s *Screening) SeatByID(id string) *Seat {
	for _, seat := range s.Seats {
		if seat.ID() == id {
			return seat
		}
	}
	return nil
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusPaid     Status = "Paid"
	StatusCanceled Status = "Canceled"
	StatusRefunded Status = "Refunded"
)

type Booking struct {
	ID        int64
	Customer  *Account
	Movie     *Movie
	Screening *Screening
	NumSeats  int
	Seats     []*Seat
	CreatedOn time.Time
	Total     float64
	Status    Status
	Payment   *Payment
	Coupon    *Coupon
}

func (b *Booking) SeatIDs() []string {
	ids := make([]string, 0, len(b.Seats))
	for _, seat := range b.Seats {
		ids = append(ids, seat.ID())
	}
	return ids
}

type Coupon struct {
	Code        string
	DiscountPct float64
	ExpiresOn   time.Time
}

// ValidOn reports whether the coupon may still be used on the given day.
// Expiration is inclusive: a coupon expiring today is valid today.
func (c *Coupon) ValidOn(day time.Time) bool {
	y, m, d := day.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !c.ExpiresOn.Before(today)
}

// Apply returns the discounted total.
func (c *Coupon) Apply(total float64) float64 {
	return total * (100 - c.DiscountPct) / 100
}

// Card is the payment instrument as entered by the customer.
type Card struct {
	Number string
	Expiry string // "2006-01"
	Holder string
}

type Payment struct {
	ID         int64
	Amount     float64
	Coupon     *Coupon
	CreatedOn  time.Time
	CardNumber string // masked, last four digits visible
	CardType   string
	ExpiryDate string
	NameOnCard string
}

type Notification struct {
	ID               int64
	CustomerUsername string
	Subject          string
	Message          string
	At               time.Time
	BookingID        int64 // 0 when not tied to a booking
}
