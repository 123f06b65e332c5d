package models

import (
	"time"
)

// Product is the canonical catalog row. The upstream reference code is the
// natural key; rows are created once per code and never deleted.
type Product struct {
	RefCode     string `gorm:"primaryKey;size:30" json:"ref_code"`
	Section     string `gorm:"size:100" json:"section"`
	GroupName   string `gorm:"size:100" json:"group_name"`
	Subgroup    string `gorm:"size:100" json:"subgroup"`
	Brand       string `gorm:"size:100" json:"brand"`
	Description string `gorm:"size:255" json:"description"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DescriptiveFieldsDiffer reports whether the upstream view of the product
// carries different description-bearing fields than the stored row.
func (p Product) DescriptiveFieldsDiffer(section, group, subgroup, brand, description string) bool {
	return p.Section != section ||
		p.GroupName != group ||
		p.Subgroup != subgroup ||
		p.Brand != brand ||
		p.Description != description
}
