package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"booking_snapshots/internal/domain"
)

/********** wire schema **********/

// generalDoc mirrors generalJson. Only title and pricePerNight are required;
// the rest is type-checked by encoding/json and copied when present.
type generalDoc struct {
	Title                   string   `json:"title" validate:"required"`
	Description             string   `json:"description"`
	PropertyType            string   `json:"propertyType"`
	PlaceType               string   `json:"placeType"`
	AddressLine             string   `json:"adresseLine"`
	City                    string   `json:"city"`
	Country                 string   `json:"country"`
	PostalCode              string   `json:"postalCode"`
	Latitude                *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude               *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	NeighborhoodDescription string   `json:"neighborhoodDescription"`
	FloorNumber             *int     `json:"floorNumber"`
	SurfaceArea             *float64 `json:"surfaceArea" validate:"omitempty,gte=0"`
	MaxGuests               int      `json:"maxGuests" validate:"gte=0"`
	Bedrooms                int      `json:"bedrooms" validate:"gte=0"`
	Beds                    int      `json:"beds" validate:"gte=0"`
	Bathrooms               int      `json:"bathrooms" validate:"gte=0"`
	WeekendPricePerNight    *float64 `json:"weekendPricePerNight" validate:"omitempty,gte=0"`
	PricePerNight           *float64 `json:"pricePerNight" validate:"required,gte=0"`
	CleaningFee             *float64 `json:"cleaningFee" validate:"omitempty,gte=0"`
	PetFee                  *float64 `json:"petFee" validate:"omitempty,gte=0"`
	PlatformFeePercentage   *float64 `json:"platformFeePercentage" validate:"omitempty,gte=0"`
	MinStayNights           *int     `json:"minStayNights" validate:"omitempty,gte=0"`
	MaxStayNights           *int     `json:"maxStayNights" validate:"omitempty,gte=0"`
	BookingAdvanceDays      *int     `json:"bookingAdvanceDays" validate:"omitempty,gte=0"`
	CheckInTimeStart        string   `json:"checkInTimeStart"`
	CheckInTimeEnd          string   `json:"checkInTimeEnd"`
	CheckOutTime            string   `json:"checkOutTime"`
	InstantBooking          *bool    `json:"instantBooking"`
	CancellationPolicy      string   `json:"cancellationPolicy"`
}

type photoDoc struct {
	PhotoURL     *string `json:"photoUrl" validate:"required"`
	IsCover      *bool   `json:"isCover" validate:"required"`
	DisplayOrder *int    `json:"displayOrder" validate:"required"`
}

type amenityDoc struct {
	AmenityID *int64 `json:"amenityId" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Category  string `json:"category"`
	Icon      string `json:"icone"`
}

// list wrappers so validator dives into each element; required rejects a
// JSON null but accepts an empty array.
type photoList struct {
	Items []photoDoc `validate:"required,dive"`
}

type amenityList struct {
	Items []amenityDoc `validate:"required,dive"`
}

/********** decoder **********/

type SnapshotDecoder struct {
	validate     *validator.Validate
	verifyHashes bool
}

type DecoderOption func(*SnapshotDecoder)

// WithHashVerification makes the decoder compare each sub-document against
// its stored sha256. Stored hashes that are empty are not checked.
func WithHashVerification(on bool) DecoderOption {
	return func(d *SnapshotDecoder) { d.verifyHashes = on }
}

func NewSnapshotDecoder(opts ...DecoderOption) *SnapshotDecoder {
	v := validator.New()
	// report json names in validation errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	d := &SnapshotDecoder{validate: v}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode turns the four sub-documents of v into one snapshot. It is all or
// nothing: the first failing part yields a *domain.DecodeError and no snapshot.
func (d *SnapshotDecoder) Decode(v domain.PropertyVersion) (domain.PropertySnapshot, error) {
	if err := requireParts(v); err != nil {
		return domain.PropertySnapshot{}, err
	}

	var g generalDoc
	if err := d.decodePart("general", v.General.GeneralJSON, v.General.SnapshotHash, &g); err != nil {
		return domain.PropertySnapshot{}, err
	}
	if err := d.validate.Struct(g); err != nil {
		return domain.PropertySnapshot{}, &domain.DecodeError{Part: "general", Err: err}
	}

	var photos photoList
	if err := d.decodePart("photos", v.Photos.PhotosJSON, v.Photos.SnapshotHash, &photos.Items); err != nil {
		return domain.PropertySnapshot{}, err
	}
	if err := d.validate.Struct(photos); err != nil {
		return domain.PropertySnapshot{}, &domain.DecodeError{Part: "photos", Err: err}
	}

	var amenities amenityList
	if err := d.decodePart("amenities", v.Amenities.AmenitiesJSON, v.Amenities.SnapshotHash, &amenities.Items); err != nil {
		return domain.PropertySnapshot{}, err
	}
	if err := d.validate.Struct(amenities); err != nil {
		return domain.PropertySnapshot{}, &domain.DecodeError{Part: "amenities", Err: err}
	}

	if d.verifyHashes {
		if err := verifyRulesHash(v.Rules); err != nil {
			return domain.PropertySnapshot{}, &domain.DecodeError{Part: "rules", Err: err}
		}
	}

	s := mapGeneral(g)
	s.VersionID = v.VersionID
	s.NumVersion = v.NumVersion
	s.CapturedAt = v.CreatedAt
	s.Photos = mapPhotos(photos.Items)
	s.Amenities = mapAmenities(amenities.Items)
	s.Rules = mapRules(v.Rules)
	return s, nil
}

func requireParts(v domain.PropertyVersion) error {
	missing := func(part string) error {
		return &domain.DecodeError{Part: part, Err: errors.New("sub-document missing")}
	}
	switch {
	case v.General == nil || strings.TrimSpace(v.General.GeneralJSON) == "":
		return missing("general")
	case v.Photos == nil || strings.TrimSpace(v.Photos.PhotosJSON) == "":
		return missing("photos")
	case v.Amenities == nil || strings.TrimSpace(v.Amenities.AmenitiesJSON) == "":
		return missing("amenities")
	case v.Rules == nil:
		return missing("rules")
	}
	return nil
}

func (d *SnapshotDecoder) decodePart(part, payload, hash string, dst any) error {
	if d.verifyHashes && hash != "" {
		if err := verifyHash(payload, hash); err != nil {
			return &domain.DecodeError{Part: part, Err: err}
		}
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return &domain.DecodeError{Part: part, Err: err}
	}
	return nil
}

/********** integrity **********/

func verifyHash(payload, want string) error {
	sum := sha256.Sum256([]byte(payload))
	if got := hex.EncodeToString(sum[:]); !strings.EqualFold(got, want) {
		return fmt.Errorf("hash mismatch: stored %s, computed %s", want, got)
	}
	return nil
}

// rulesHashInput reproduces how the listing service hashes rules: the five
// flags then customRules, absent values rendered as "".
func rulesHashInput(r *domain.RulesSubDocument) string {
	flag := func(b *bool) string {
		if b == nil {
			return ""
		}
		return strconv.FormatBool(*b)
	}
	custom := ""
	if r.CustomRules != nil {
		custom = *r.CustomRules
	}
	return flag(r.ChildrenAllowed) + flag(r.BabiesAllowed) + flag(r.PetsAllowed) +
		flag(r.SmokingAllowed) + flag(r.EventsAllowed) + custom
}

func verifyRulesHash(r *domain.RulesSubDocument) error {
	if r.SnapshotHash == "" {
		return nil
	}
	return verifyHash(rulesHashInput(r), r.SnapshotHash)
}

/********** mappers **********/

func mapGeneral(g generalDoc) domain.PropertySnapshot {
	return domain.PropertySnapshot{
		Title:                   g.Title,
		Description:             g.Description,
		PropertyType:            g.PropertyType,
		PlaceType:               g.PlaceType,
		Address:                 g.AddressLine,
		City:                    g.City,
		Country:                 g.Country,
		PostalCode:              g.PostalCode,
		Latitude:                g.Latitude,
		Longitude:               g.Longitude,
		NeighborhoodDescription: g.NeighborhoodDescription,
		FloorNumber:             g.FloorNumber,
		SurfaceArea:             g.SurfaceArea,
		MaxGuests:               g.MaxGuests,
		Bedrooms:                g.Bedrooms,
		Beds:                    g.Beds,
		Bathrooms:               g.Bathrooms,
		PricePerNight:           *g.PricePerNight,
		WeekendPricePerNight:    g.WeekendPricePerNight,
		CleaningFee:             g.CleaningFee,
		PetFee:                  g.PetFee,
		PlatformFeePercentage:   g.PlatformFeePercentage,
		MinStayNights:           g.MinStayNights,
		MaxStayNights:           g.MaxStayNights,
		BookingAdvanceDays:      g.BookingAdvanceDays,
		CheckInTimeStart:        g.CheckInTimeStart,
		CheckInTimeEnd:          g.CheckInTimeEnd,
		CheckOutTime:            g.CheckOutTime,
		InstantBooking:          g.InstantBooking != nil && *g.InstantBooking,
		CancellationPolicy:      g.CancellationPolicy,
	}
}

// mapPhotos orders by displayOrder; ties keep capture order.
func mapPhotos(in []photoDoc) []domain.Photo {
	out := make([]domain.Photo, 0, len(in))
	for _, p := range in {
		out = append(out, domain.Photo{URL: *p.PhotoURL, IsCover: *p.IsCover, DisplayOrder: *p.DisplayOrder})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out
}

func mapAmenities(in []amenityDoc) []domain.Amenity {
	out := make([]domain.Amenity, 0, len(in))
	for _, a := range in {
		out = append(out, domain.Amenity{ID: *a.AmenityID, Name: a.Name, Category: a.Category, Icon: a.Icon})
	}
	return out
}

func mapRules(r *domain.RulesSubDocument) domain.Rules {
	flag := func(b *bool) bool { return b != nil && *b }
	out := domain.Rules{
		ChildrenAllowed: flag(r.ChildrenAllowed),
		BabiesAllowed:   flag(r.BabiesAllowed),
		PetsAllowed:     flag(r.PetsAllowed),
		SmokingAllowed:  flag(r.SmokingAllowed),
		EventsAllowed:   flag(r.EventsAllowed),
	}
	if r.CustomRules != nil {
		out.CustomRules = *r.CustomRules
	}
	return out
}
