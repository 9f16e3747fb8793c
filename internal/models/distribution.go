package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Report batch statuses. The ingestion pipeline runs synchronously within one
// request, so Completed is the only status it ever persists.
const (
	BatchStatusPending   = "Pending"
	BatchStatusCompleted = "Completed"
)

// Uploader is the identity snapshot stamped on rows and groups at upload
// time. It is a captured copy, not a live reference.
type Uploader struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Value implements driver.Valuer.
func (u Uploader) Value() (driver.Value, error) {
	return json.Marshal(u)
}

// Scan implements sql.Scanner.
func (u *Uploader) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		*u = Uploader{}
		return nil
	case []byte:
		return json.Unmarshal(data, u)
	case string:
		return json.Unmarshal([]byte(data), u)
	default:
		return fmt.Errorf("unsupported uploader source: %T", src)
	}
}

// Distribution is one report row belonging to a batch. The batch identifier
// is a foreign key by value; nothing enforces it.
type Distribution struct {
	ID             string    `db:"id" json:"id"`
	GridID         string    `db:"grid_id" json:"grid_id"`
	ExchangeSymbol string    `db:"exchange_symbol" json:"exchange_symbol"`
	Recipient      string    `db:"recipient" json:"recipient"`
	URL            string    `db:"url" json:"url"`
	PotentialReach int64     `db:"potential_reach" json:"potential_reach"`
	About          string    `db:"about" json:"about"`
	Value          string    `db:"value" json:"value"`
	ReportTitle    string    `db:"report_title" json:"report_title"`
	UploadedBy     Uploader  `db:"uploaded_by" json:"uploaded_by"`
	SoftDelete     bool      `db:"soft_delete" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DistributionRows is the embedded full row copy carried by a group record.
// It is an independent copy of the per-row store; the two can drift.
type DistributionRows []Distribution

// Value implements driver.Valuer.
func (r DistributionRows) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner.
func (r *DistributionRows) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		return json.Unmarshal(data, r)
	case string:
		return json.Unmarshal([]byte(data), r)
	default:
		return fmt.Errorf("unsupported distribution rows source: %T", src)
	}
}

// EmailList is the allow-list of emails permitted to view a private batch.
type EmailList []string

// Value implements driver.Valuer.
func (l EmailList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *EmailList) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(data, l)
	case string:
		return json.Unmarshal([]byte(data), l)
	default:
		return fmt.Errorf("unsupported email list source: %T", src)
	}
}

// DistributionGroup is the aggregate record for one uploaded batch: summary
// counts plus a full embedded copy of the row set. Private by default.
type DistributionGroup struct {
	ID                    string           `db:"id" json:"id"`
	GridID                string           `db:"grid_id" json:"grid_id"`
	ReportTitle           string           `db:"report_title" json:"report_title"`
	UploadedBy            Uploader         `db:"uploaded_by" json:"uploaded_by"`
	TotalRecords          int              `db:"total_records" json:"total_records"`
	OverallPotentialReach int64            `db:"overall_potential_reach" json:"overallPotentialReach"`
	DistributionData      DistributionRows `db:"distribution_data" json:"distribution_data"`
	Status                string           `db:"status" json:"status"`
	SoftDelete            bool             `db:"soft_delete" json:"-"`
	IsPrivate             bool             `db:"is_private" json:"is_private"`
	SharedEmails          EmailList        `db:"shared_emails" json:"sharedEmails"`
	CreatedAt             time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time        `db:"updated_at" json:"updated_at"`
}
