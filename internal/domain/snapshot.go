package domain

// UnavailableTitle is shown in place of the property title when the terms
// captured at booking time cannot be reconstructed.
const UnavailableTitle = "Property information unavailable"

// PropertySnapshot is the typed reconstruction of a PropertyVersion.
type PropertySnapshot struct {
	VersionID  int64     `json:"versionId,omitempty"`
	NumVersion int       `json:"numVersion,omitempty"`
	CapturedAt Timestamp `json:"capturedAt"`

	Title                   string   `json:"title"`
	Description             string   `json:"description"`
	PropertyType            string   `json:"propertyType"`
	PlaceType               string   `json:"placeType"`
	Address                 string   `json:"address"`
	City                    string   `json:"city"`
	Country                 string   `json:"country"`
	PostalCode              string   `json:"postalCode,omitempty"`
	Latitude                *float64 `json:"latitude,omitempty"`
	Longitude               *float64 `json:"longitude,omitempty"`
	NeighborhoodDescription string   `json:"neighborhoodDescription,omitempty"`

	MaxGuests   int      `json:"maxGuests"`
	Bedrooms    int      `json:"bedrooms"`
	Beds        int      `json:"beds"`
	Bathrooms   int      `json:"bathrooms"`
	SurfaceArea *float64 `json:"surfaceArea,omitempty"`
	FloorNumber *int     `json:"floorNumber,omitempty"`

	PricePerNight         float64  `json:"pricePerNight"`
	WeekendPricePerNight  *float64 `json:"weekendPricePerNight,omitempty"`
	CleaningFee           *float64 `json:"cleaningFee,omitempty"`
	PetFee                *float64 `json:"petFee,omitempty"`
	PlatformFeePercentage *float64 `json:"platformFeePercentage,omitempty"`

	MinStayNights      *int   `json:"minStayNights,omitempty"`
	MaxStayNights      *int   `json:"maxStayNights,omitempty"`
	BookingAdvanceDays *int   `json:"bookingAdvanceDays,omitempty"`
	CheckInTimeStart   string `json:"checkInTimeStart,omitempty"`
	CheckInTimeEnd     string `json:"checkInTimeEnd,omitempty"`
	CheckOutTime       string `json:"checkOutTime,omitempty"`
	InstantBooking     bool   `json:"instantBooking"`
	CancellationPolicy string `json:"cancellationPolicy,omitempty"`

	Photos    []Photo   `json:"photos"`
	Amenities []Amenity `json:"amenities"`
	Rules     Rules     `json:"rules"`
}

type Photo struct {
	URL          string `json:"photoUrl"`
	IsCover      bool   `json:"isCover"`
	DisplayOrder int    `json:"displayOrder"`
}

type Amenity struct {
	ID       int64  `json:"amenityId"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Icon     string `json:"icon,omitempty"`
}

type Rules struct {
	ChildrenAllowed bool   `json:"childrenAllowed"`
	BabiesAllowed   bool   `json:"babiesAllowed"`
	PetsAllowed     bool   `json:"petsAllowed"`
	SmokingAllowed  bool   `json:"smokingAllowed"`
	EventsAllowed   bool   `json:"eventsAllowed"`
	CustomRules     string `json:"customRules"`
}

// PlaceholderSnapshot keeps only what the booking itself guarantees: the
// locked nightly price. Everything else is empty and every rule is denied.
func PlaceholderSnapshot(b Booking) PropertySnapshot {
	return PropertySnapshot{
		Title:         UnavailableTitle,
		PricePerNight: b.PriceBreakdown.LockedPricePerNight,
		Photos:        []Photo{},
		Amenities:     []Amenity{},
		Rules:         Rules{},
	}
}

type DegradeReason string

const (
	ReasonNoVersion DegradeReason = "no_version"
	ReasonNotFound  DegradeReason = "not_found"
	ReasonTransport DegradeReason = "transport"
	ReasonDecode    DegradeReason = "decode"
)

// SnapshotResult is either Decoded or Degraded. The unexported method closes
// the set to this package.
type SnapshotResult interface{ snapshotResult() }

type Decoded struct {
	Snapshot PropertySnapshot
}

type Degraded struct {
	Reason      DegradeReason
	Placeholder PropertySnapshot
	Err         error // nil for ReasonNoVersion
}

func (Decoded) snapshotResult()  {}
func (Degraded) snapshotResult() {}

// Degrade builds the placeholder result for b.
func Degrade(b Booking, reason DegradeReason, err error) Degraded {
	return Degraded{Reason: reason, Placeholder: PlaceholderSnapshot(b), Err: err}
}

type SnapshotStatus string

const (
	SnapshotDecoded  SnapshotStatus = "decoded"
	SnapshotDegraded SnapshotStatus = "degraded"
)

// BookingWithSnapshot is what callers render: booking-native fields next to
// the property terms as they stood when the booking was made.
type BookingWithSnapshot struct {
	BookingID      int64          `json:"bookingId"`
	PropertyID     int64          `json:"propertyId"`
	UserID         int64          `json:"userId"`
	VersionID      *int64         `json:"versionId,omitempty"`
	CheckIn        Timestamp      `json:"checkIn"`
	CheckOut       Timestamp      `json:"checkOut"`
	TotalNights    int            `json:"totalNights"`
	NumGuests      int            `json:"numGuests"`
	TotalPrice     float64        `json:"totalPrice"`
	PriceBreakdown PriceBreakdown `json:"priceBreakdown"`
	Status         BookingStatus  `json:"status"`
	CreatedAt      Timestamp      `json:"createdAt"`

	PropertySnapshot PropertySnapshot `json:"propertySnapshot"`
	SnapshotStatus   SnapshotStatus   `json:"snapshotStatus"`
	DegradedReason   DegradeReason    `json:"degradedReason,omitempty"`
}
