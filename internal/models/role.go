package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Capability describes what a role may do within one module.
type Capability struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
}

// Grants reports whether the capability allows anything at all.
func (c Capability) Grants() bool {
	return c.Read || c.Write || c.Delete
}

// PermissionSet maps module names to capabilities. Stored as JSONB.
type PermissionSet map[string]Capability

// Value implements driver.Valuer.
func (p PermissionSet) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *PermissionSet) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(data, p)
	case string:
		return json.Unmarshal([]byte(data), p)
	default:
		return fmt.Errorf("unsupported permission set source: %T", src)
	}
}

// Role represents a named permission set. The identifier is caller-supplied,
// not generated. Name uniqueness is enforced at write time by the service
// layer, not by a storage constraint.
type Role struct {
	ID         string        `db:"id" json:"id"`
	Name       string        `db:"name" json:"name"`
	Permission PermissionSet `db:"permission" json:"permission"`
	UserID     *string       `db:"user_id" json:"user_id,omitempty"`
	UserName   *string       `db:"user_name" json:"user_name,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// RoleFilter captures listing criteria for roles.
type RoleFilter struct {
	Search   string
	Page     int
	PageSize int
}

// PermissionUsage counts roles granting at least one capability for a module.
type PermissionUsage struct {
	Module string `db:"module" json:"module"`
	Count  int    `db:"count" json:"count"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	RowCount   int `json:"row_count"`
	TotalCount int `json:"total_count"`
}
