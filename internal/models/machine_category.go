package models

import (
	"encoding/json"
	"strings"
	"time"
)

// MachineCategory is a node in the machine navigation tree shown on the
// public site. Leaf nodes link to product category keys.
type MachineCategory struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	NameSV    string    `json:"name_sv"`
	NameEN    string    `json:"name_en"`
	Position  int       `json:"position"`
	ParentID  *int64    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Virtual field populated by store methods.
	ProductCategories []MachineCategoryLink `json:"product_categories"`
}

// MachineCategoryLink connects a machine category to a product category,
// enriched with the linked category's display data.
type MachineCategoryLink struct {
	ID          int64    `json:"id"`
	Key         string   `json:"key"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Position    string   `json:"position"`
	LangName    LangMap  `json:"lang_name"`
	LangDesc    LangMap  `json:"lang_desc"`
	CatalogURL  string   `json:"product_catalog_image_url"`
	ShowForLang []string `json:"showForLang"`

	// CatalogImage is the raw stored file name; handlers turn it into
	// CatalogURL.
	CatalogImage string `json:"-"`
}

// MachineNode is one entry in the published machine hierarchy. Roots with
// children keep only the child list; leaves carry the product category
// links instead.
type MachineNode struct {
	ID                int64                 `json:"id"`
	Name              string                `json:"name"`
	LangName          LangMap               `json:"lang_name"`
	LangDesc          LangMap               `json:"lang_desc"`
	Key               string                `json:"key"`
	Slug              string                `json:"slug"`
	Count             int                   `json:"count"`
	Parent            int64                 `json:"parent"`
	Taxonomy          string                `json:"taxonomy"`
	MenuOrder         string                `json:"menu_order"`
	IsParentCategory  bool                  `json:"isParentCategory"`
	Children          []MachineNode         `json:"children,omitempty"`
	ProductCategories []MachineCategoryLink `json:"product_categories,omitempty"`
}

// ParseLangList decodes a stored language filter. Accepts a JSON array of
// strings or a comma-separated list; entries come back lowercased.
func ParseLangList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	if strings.HasPrefix(raw, "[") {
		var decoded []string
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			for _, entry := range decoded {
				entry = strings.ToLower(strings.TrimSpace(entry))
				if entry != "" {
					out = append(out, entry)
				}
			}
			return out
		}
	}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
