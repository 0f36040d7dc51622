package domain

import "time"

type ResourceKind string

const (
	KindRoom   ResourceKind = "room"
	KindHostel ResourceKind = "hostel"
)

func (k ResourceKind) Valid() bool {
	return k == KindRoom || k == KindHostel
}

type AvailabilityState string

const (
	StateAvailable    AvailabilityState = "available"
	StateBooked       AvailabilityState = "booked"
	StateOccupied     AvailabilityState = "occupied"
	StateNotAvailable AvailabilityState = "not_available"
	StateComingSoon   AvailabilityState = "coming_soon"
)

func (s AvailabilityState) Valid() bool {
	switch s {
	case StateAvailable, StateBooked, StateOccupied, StateNotAvailable, StateComingSoon:
		return true
	}
	return false
}

// Resource is one bookable unit: a room or a hostel bed. BookingFee is the
// reservation fee in minor currency units. The available -> booked transition
// happens only through the coordinator's conditional write; everything else
// is owned by listing management.
type Resource struct {
	ID                string       `gorm:"primaryKey"`
	Name              string
	Kind              ResourceKind `gorm:"index"`
	BookingFee        int64
	Currency          string
	AvailabilityState AvailabilityState `gorm:"index"`
	// BookedBy names the booking that won the claim, so a redelivered claim
	// from the same booking is still the winner.
	BookedBy  string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt         time.Time
}
