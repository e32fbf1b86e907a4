package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"booking_snapshots/internal/domain"
)

// VersionStore reads property versions straight from the listing database.
// It never writes.
type VersionStore struct{ db *sql.DB }

func New(db *sql.DB) *VersionStore { return &VersionStore{db: db} }

func (s *VersionStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *VersionStore) FetchVersion(ctx context.Context, versionID int64) (domain.PropertyVersion, error) {
	var (
		v       domain.PropertyVersion
		created sql.NullTime
		g, p, a subRow
		r       rulesRow
	)
	err := s.db.QueryRowContext(ctx, selectVersionSQL, versionID).Scan(
		&v.VersionID, &v.PropertyID, &v.NumVersion, &created,
		&g.id, &g.hash, &g.payload, &g.created,
		&p.id, &p.hash, &p.payload, &p.created,
		&a.id, &a.hash, &a.payload, &a.created,
		&r.id, &r.hash,
		&r.children, &r.babies, &r.pets, &r.smoking, &r.events,
		&r.custom, &r.created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PropertyVersion{}, fmt.Errorf("version %d: %w", versionID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.PropertyVersion{}, err
	}

	v.CreatedAt = ts(created)
	if g.id.Valid {
		v.General = &domain.GeneralSubDocument{SubDocumentMeta: g.meta(), GeneralJSON: g.payload.String}
	}
	if p.id.Valid {
		v.Photos = &domain.PhotosSubDocument{SubDocumentMeta: p.meta(), PhotosJSON: p.payload.String}
	}
	if a.id.Valid {
		v.Amenities = &domain.AmenitiesSubDocument{SubDocumentMeta: a.meta(), AmenitiesJSON: a.payload.String}
	}
	if r.id.Valid {
		v.Rules = &domain.RulesSubDocument{
			SubDocumentMeta: domain.SubDocumentMeta{SnapshotID: r.id.Int64, SnapshotHash: r.hash.String, CreatedAt: ts(r.created)},
			ChildrenAllowed: boolPtr(r.children),
			BabiesAllowed:   boolPtr(r.babies),
			PetsAllowed:     boolPtr(r.pets),
			SmokingAllowed:  boolPtr(r.smoking),
			EventsAllowed:   boolPtr(r.events),
			CustomRules:     strPtr(r.custom),
		}
	}
	return v, nil
}

type subRow struct {
	id      sql.NullInt64
	hash    sql.NullString
	payload sql.NullString
	created sql.NullTime
}

func (s subRow) meta() domain.SubDocumentMeta {
	return domain.SubDocumentMeta{SnapshotID: s.id.Int64, SnapshotHash: s.hash.String, CreatedAt: ts(s.created)}
}

type rulesRow struct {
	id                                      sql.NullInt64
	hash                                    sql.NullString
	children, babies, pets, smoking, events sql.NullBool
	custom                                  sql.NullString
	created                                 sql.NullTime
}

func ts(t sql.NullTime) domain.Timestamp {
	if !t.Valid {
		return domain.Timestamp{}
	}
	return domain.NewTimestamp(t.Time)
}

func boolPtr(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	return &b.Bool
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
