package app_test

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"booking_snapshots/internal/app"
	"booking_snapshots/internal/domain"
)

func sha(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestDecode_FullVersion(t *testing.T) {
	v := loftVersion(10)
	v.General.GeneralJSON = `{
		"title":"Loft","description":"Bright","propertyType":"APARTMENT","placeType":"ENTIRE",
		"adresseLine":"1 rue X","city":"Lyon","country":"FR","latitude":45.7,"longitude":4.8,
		"maxGuests":4,"bedrooms":2,"beds":2,"bathrooms":1,
		"pricePerNight":55,"cleaningFee":20,"minStayNights":2,"instantBooking":true,
		"cancellationPolicy":"FLEXIBLE"}`
	v.Photos.PhotosJSON = `[
		{"photoUrl":"c.jpg","isCover":false,"displayOrder":3},
		{"photoUrl":"a.jpg","isCover":true,"displayOrder":1},
		{"photoUrl":"b.jpg","isCover":false,"displayOrder":2}]`
	v.Amenities.AmenitiesJSON = `[{"amenityId":3,"name":"WiFi","category":"BASIC","icone":"wifi"}]`
	v.Rules = &domain.RulesSubDocument{ChildrenAllowed: ptr(true), CustomRules: ptr("No parties")}

	s, err := app.NewSnapshotDecoder().Decode(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Title != "Loft" || s.City != "Lyon" || s.Address != "1 rue X" || s.PricePerNight != 55 {
		t.Fatalf("general not mapped: %+v", s)
	}
	if s.CleaningFee == nil || *s.CleaningFee != 20 || !s.InstantBooking {
		t.Fatalf("optional general fields not mapped: %+v", s)
	}
	if s.VersionID != 10 || s.NumVersion != 3 {
		t.Fatalf("provenance: got version %d num %d", s.VersionID, s.NumVersion)
	}
	if len(s.Photos) != 3 || s.Photos[0].URL != "a.jpg" || s.Photos[2].URL != "c.jpg" {
		t.Fatalf("photos not ordered by displayOrder: %+v", s.Photos)
	}
	if len(s.Amenities) != 1 || s.Amenities[0].Icon != "wifi" || s.Amenities[0].Category != "BASIC" {
		t.Fatalf("amenities: %+v", s.Amenities)
	}
	if !s.Rules.ChildrenAllowed || s.Rules.PetsAllowed || s.Rules.CustomRules != "No parties" {
		t.Fatalf("rules: %+v", s.Rules)
	}
}

func TestDecode_EmptyListsAreValid(t *testing.T) {
	v := loftVersion(10)
	v.Photos.PhotosJSON = `[]`
	v.Amenities.AmenitiesJSON = `[]`

	s, err := app.NewSnapshotDecoder().Decode(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Photos == nil || len(s.Photos) != 0 || s.Amenities == nil || len(s.Amenities) != 0 {
		t.Fatalf("want empty non-nil lists, got %#v %#v", s.Photos, s.Amenities)
	}
}

func TestDecode_Rejects(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*domain.PropertyVersion)
		part string
	}{
		{"general missing", func(v *domain.PropertyVersion) { v.General = nil }, "general"},
		{"general not json", func(v *domain.PropertyVersion) { v.General.GeneralJSON = `{title:` }, "general"},
		{"general no title", func(v *domain.PropertyVersion) { v.General.GeneralJSON = `{"pricePerNight":55}` }, "general"},
		{"general no price", func(v *domain.PropertyVersion) { v.General.GeneralJSON = `{"title":"Loft"}` }, "general"},
		{"general negative price", func(v *domain.PropertyVersion) { v.General.GeneralJSON = `{"title":"Loft","pricePerNight":-1}` }, "general"},
		{"general wrong type", func(v *domain.PropertyVersion) { v.General.GeneralJSON = `{"title":"Loft","pricePerNight":"55"}` }, "general"},
		{"photos null", func(v *domain.PropertyVersion) { v.Photos.PhotosJSON = `null` }, "photos"},
		{"photos object", func(v *domain.PropertyVersion) { v.Photos.PhotosJSON = `{}` }, "photos"},
		{"photo without url", func(v *domain.PropertyVersion) { v.Photos.PhotosJSON = `[{"isCover":true,"displayOrder":1}]` }, "photos"},
		{"photo without order", func(v *domain.PropertyVersion) { v.Photos.PhotosJSON = `[{"photoUrl":"a.jpg","isCover":true}]` }, "photos"},
		{"amenities missing", func(v *domain.PropertyVersion) { v.Amenities = nil }, "amenities"},
		{"amenity without name", func(v *domain.PropertyVersion) { v.Amenities.AmenitiesJSON = `[{"amenityId":3}]` }, "amenities"},
		{"rules missing", func(v *domain.PropertyVersion) { v.Rules = nil }, "rules"},
	}
	dec := app.NewSnapshotDecoder()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := loftVersion(10)
			tc.mut(&v)
			s, err := dec.Decode(v)
			var de *domain.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("want *DecodeError, got %v", err)
			}
			if de.Part != tc.part {
				t.Fatalf("part: want %q, got %q", tc.part, de.Part)
			}
			if s.Title != "" || s.Photos != nil {
				t.Fatalf("partial snapshot leaked: %+v", s)
			}
		})
	}
}

func TestDecode_HashVerification(t *testing.T) {
	good := loftVersion(10)
	good.General.SnapshotHash = sha(good.General.GeneralJSON)
	good.Photos.SnapshotHash = sha(good.Photos.PhotosJSON)
	good.Rules.SnapshotHash = sha("" + "" + "false" + "" + "" + "")

	dec := app.NewSnapshotDecoder(app.WithHashVerification(true))
	if _, err := dec.Decode(good); err != nil {
		t.Fatalf("matching hashes rejected: %v", err)
	}

	tampered := loftVersion(10)
	tampered.General.SnapshotHash = sha(`{"title":"Loft","pricePerNight":45}`)
	_, err := dec.Decode(tampered)
	var de *domain.DecodeError
	if !errors.As(err, &de) || de.Part != "general" {
		t.Fatalf("want general DecodeError, got %v", err)
	}

	badRules := loftVersion(10)
	badRules.Rules.SnapshotHash = sha("truetruetruetruetrue")
	if _, err := dec.Decode(badRules); !errors.As(err, &de) || de.Part != "rules" {
		t.Fatalf("want rules DecodeError, got %v", err)
	}

	// verification off: stored hashes are informational only
	if _, err := app.NewSnapshotDecoder().Decode(tampered); err != nil {
		t.Fatalf("unverified decode failed: %v", err)
	}
}
