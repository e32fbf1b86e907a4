package mysql

// One row per version. Sub-documents are LEFT JOINed so a dangling reference
// comes back as NULLs and is reported by the decoder, not hidden here.
const selectVersionSQL = `
SELECT
  v.version_id, v.property_id, v.num_version, v.created_at,
  g.snapshot_id, g.snapshot_hash, g.general_json, g.created_at,
  p.snapshot_id, p.snapshot_hash, p.photos_json, p.created_at,
  a.snapshot_id, a.snapshot_hash, a.amenities_json, a.created_at,
  r.snapshot_id, r.snapshot_hash,
  r.children_allowed, r.babies_allowed, r.pets_allowed, r.smoking_allowed, r.events_allowed,
  r.custom_rules, r.created_at
FROM property_version v
LEFT JOIN property_general_snapshot    g ON g.snapshot_id = v.general_snapshot_id
LEFT JOIN property_photos_snapshots    p ON p.snapshot_id = v.photos_snapshot_id
LEFT JOIN property_amenities_snapshots a ON a.snapshot_id = v.amenities_snapshot_id
LEFT JOIN property_rules_snapshots     r ON r.snapshot_id = v.rules_snapshot_id
WHERE v.version_id = ?
`
