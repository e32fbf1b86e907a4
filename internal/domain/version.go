package domain

// PropertyVersion is an append-only capture of a property's terms. The
// general, photos and amenities parts carry their payload as serialized JSON;
// rules arrive already structured.
type PropertyVersion struct {
	VersionID  int64     `json:"versionId"`
	PropertyID int64     `json:"propertyId"`
	NumVersion int       `json:"numVersion"`
	CreatedAt  Timestamp `json:"createdAt"`

	General   *GeneralSubDocument   `json:"generalSnapshot"`
	Amenities *AmenitiesSubDocument `json:"amenitiesSnapshot"`
	Photos    *PhotosSubDocument    `json:"photosSnapshot"`
	Rules     *RulesSubDocument     `json:"rulesSnapshot"`
}

type SubDocumentMeta struct {
	SnapshotID   int64     `json:"snapshotId"`
	SnapshotHash string    `json:"snapshotHash"` // sha256 hex
	CreatedAt    Timestamp `json:"createdAt"`
}

type GeneralSubDocument struct {
	SubDocumentMeta
	GeneralJSON string `json:"generalJson"`
}

type PhotosSubDocument struct {
	SubDocumentMeta
	PhotosJSON string `json:"photosJson"`
}

type AmenitiesSubDocument struct {
	SubDocumentMeta
	AmenitiesJSON string `json:"amenitiesJson"`
}

type RulesSubDocument struct {
	SubDocumentMeta
	ChildrenAllowed *bool   `json:"childrenAllowed"`
	BabiesAllowed   *bool   `json:"babiesAllowed"`
	PetsAllowed     *bool   `json:"petsAllowed"`
	SmokingAllowed  *bool   `json:"smokingAllowed"`
	EventsAllowed   *bool   `json:"eventsAllowed"`
	CustomRules     *string `json:"customRules"`
}
