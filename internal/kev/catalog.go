package kev

import "time"

// SourceSystem tags every stored record with the feed it came from.
const SourceSystem = "cisa_kev_catalog"

// RawRecord is a single vulnerability entry as served by the catalog feed.
// No schema is enforced beyond the optional date fields the enhancer knows
// about.
type RawRecord map[string]any

// Catalog is the raw KEV API response.
type Catalog struct {
	Title           string      `json:"title,omitempty"`
	CatalogVersion  string      `json:"catalogVersion"`
	DateReleased    string      `json:"dateReleased"`
	Count           int         `json:"count"`
	Vulnerabilities []RawRecord `json:"vulnerabilities"`
}

// Metadata is derived once per pipeline run and embedded in every record of
// the batch. It is never modified after creation.
type Metadata struct {
	SourceCatalogVersion string    `bson:"source_catalog_version" json:"source_catalog_version"`
	CatalogReleaseDate   string    `bson:"catalog_release_date" json:"catalog_release_date"`
	TotalVulnerabilities int       `bson:"total_vulnerabilities" json:"total_vulnerabilities"`
	DataExtractionTime   time.Time `bson:"data_extraction_time" json:"data_extraction_time"`
}

// EnhancedRecord is a RawRecord plus processing metadata. It is the document
// shape persisted to the store.
type EnhancedRecord map[string]any

// Batch is an ordered sequence of enhanced records. Order follows the source
// sequence; record positions may have gaps where enhancement failed.
type Batch []EnhancedRecord
