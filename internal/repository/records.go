// Package repository maps the domain onto the JSON collection files. The
// record structs below fix the field names the original data files use;
// changing a tag breaks interop with existing databases.
package repository

// Collection names, one file per collection.
const (
	colMovies        = "movies"
	colScreenings    = "screenings"
	colBookings      = "bookings"
	colPayments      = "payments"
	colCoupons       = "coupons"
	colCustomers     = "customers"
	colAdmins        = "admins"
	colStaff         = "front_desk_staffs"
	colHalls         = "cinema_hall"
	colNotifications = "notifications"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
	// Notification timestamps keep the original millisecond format.
	notifyTimestampLayout = "2006-01-02 15:04:05.000"
)

type MovieRecord struct {
	MovieID     int64  `json:"movie_id"`
	Title       string `json:"title"`
	Language    string `json:"language"`
	Genre       string `json:"genre"`
	Country     string `json:"country"`
	ReleaseDate string `json:"release_date"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type SeatRecord struct {
	SeatNumber int     `json:"seat_number"`
	RowNumber  int     `json:"row_number"`
	IsReserved bool    `json:"is_reserved"`
	SeatPrice  float64 `json:"seat_price"`
}

type ScreeningRecord struct {
	ScreeningID   int64        `json:"screening_id"`
	MovieID       int64        `json:"movie_id"`
	ScreeningDate string       `json:"screening_date"`
	StartTime     string       `json:"start_time"`
	EndTime       string       `json:"end_time"`
	HallName      string       `json:"hall_name"`
	Seats         []SeatRecord `json:"seats"`
	IsActive      bool         `json:"is_active"`
}

type BookingRecord struct {
	BookingID        int64    `json:"booking_id"`
	CustomerUsername string   `json:"customer_username"`
	MovieID          int64    `json:"movie_id"`
	ScreeningID      int64    `json:"screening_id"`
	NumOfSeats       int      `json:"num_of_seats"`
	SelectedSeats    []string `json:"selected_seats"`
	CreatedOn        string   `json:"created_on"`
	TotalAmount      float64  `json:"total_amount"`
	PaymentID        *int64   `json:"payment_id"`
	// Payment duplicates PaymentID; legacy files carry both keys.
	Payment *int64 `json:"payment,omitempty"`
	Status  string `json:"status"`
	Coupon  string `json:"coupon,omitempty"`
}

type PaymentRecord struct {
	PaymentID        int64   `json:"payment_id"`
	Amount           float64 `json:"amount"`
	Coupon           *string `json:"coupon"`
	CreatedOn        string  `json:"created_on"`
	CreditCardNumber string  `json:"credit_card_number"`
	CardType         string  `json:"card_type"`
	ExpiryDate       string  `json:"expiry_date"`
	NameOnCard       string  `json:"name_on_card"`
}

type CouponRecord struct {
	CouponCode         string  `json:"coupon_code"`
	DiscountPercentage float64 `json:"discount_percentage"`
	ExpirationDate     string  `json:"expiration_date"`
}

type AccountRecord struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type HallRecord struct {
	HallName     string `json:"hall_name"`
	HallCapacity int    `json:"hall_capacity"`
}

type NotificationRecord struct {
	NotificationID   int64  `json:"notification_id"`
	CustomerUsername string `json:"customer_username"`
	Subject          string `json:"subject"`
	Message          string `json:"message"`
	DateTime         string `json:"date_time"`
	BookingID        *int64 `json:"booking_id"`
}
