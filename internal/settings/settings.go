package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownKey is returned when an update names a setting that does not exist.
var ErrUnknownKey = errors.New("unknown site setting")

// HeroSlide is one storefront banner.
type HeroSlide struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
}

// SiteSettings is the resolved storefront configuration.
type SiteSettings struct {
	SiteName        string      `json:"site_name"`
	SiteLogo        string      `json:"site_logo"`
	SiteDescription string      `json:"site_description"`
	Currency        string      `json:"currency"`
	CurrencyCode    string      `json:"currency_code"`
	HeroImage       string      `json:"hero_image"`
	HeroTitle       string      `json:"hero_title"`
	HeroSubtitle    string      `json:"hero_subtitle"`
	HeroDescription string      `json:"hero_description"`
	StoreHours      string      `json:"store_hours"`
	ContactNumber   string      `json:"contact_number"`
	Address         string      `json:"address"`
	FacebookURL     string      `json:"facebook_url"`
	FacebookHandle  string      `json:"facebook_handle"`
	SiteTagline     string      `json:"site_tagline"`
	HeroSlides      []HeroSlide `json:"hero_slides,omitempty"`
}

// Row is one stored key/value pair.
type Row struct {
	ID    string
	Value string
}

const keyHeroSlides = "hero_slides"

// Defaults returns the settings used when nothing is stored.
func Defaults() SiteSettings {
	return SiteSettings{
		SiteName:        "Tea Max Coffee Manghinao 1 Branch",
		Currency:        "₱",
		CurrencyCode:    "PHP",
		HeroImage:       "https://images.unsplash.com/photo-1544787210-22dbdc1763f6?q=80&w=2070&auto=format&fit=crop",
		HeroTitle:       "Pure Milk Tea &",
		HeroSubtitle:    "Finest Coffee",
		HeroDescription: "Simple ingredients, exceptional taste. Discover our curated selection of handcrafted beverages at Tea Max Coffee Manghinao 1 Branch.",
		StoreHours:      "06:00 AM - 10:00 PM",
		ContactNumber:   "0945 210 6254",
		Address:         "Purok 3 Barangay Trenchera, Tayug Pangasinan",
		FacebookURL:     "https://www.facebook.com/61577909563825",
		FacebookHandle:  "61577909563825",
		SiteTagline:     "Milk Tea Hub",
	}
}

func (s *SiteSettings) fields() map[string]*string {
	return map[string]*string{
		"site_name":        &s.SiteName,
		"site_logo":        &s.SiteLogo,
		"site_description": &s.SiteDescription,
		"currency":         &s.Currency,
		"currency_code":    &s.CurrencyCode,
		"hero_image":       &s.HeroImage,
		"hero_title":       &s.HeroTitle,
		"hero_subtitle":    &s.HeroSubtitle,
		"hero_description": &s.HeroDescription,
		"store_hours":      &s.StoreHours,
		"contact_number":   &s.ContactNumber,
		"address":          &s.Address,
		"facebook_url":     &s.FacebookURL,
		"facebook_handle":  &s.FacebookHandle,
		"site_tagline":     &s.SiteTagline,
	}
}

// Keys lists every recognised setting id in sorted order.
func Keys() []string {
	var s SiteSettings
	keys := make([]string, 0, 16)
	for k := range s.fields() {
		keys = append(keys, k)
	}
	keys = append(keys, keyHeroSlides)
	sort.Strings(keys)
	return keys
}

// FromRows overlays stored rows on the defaults. Empty values and unknown ids
// are ignored, and malformed hero slides leave the slides unset.
func FromRows(rows []Row) SiteSettings {
	out := Defaults()
	fields := out.fields()
	for _, row := range rows {
		if row.ID == keyHeroSlides {
			var slides []HeroSlide
			if err := json.Unmarshal([]byte(row.Value), &slides); err == nil {
				out.HeroSlides = slides
			}
			continue
		}
		if dst, ok := fields[row.ID]; ok && row.Value != "" {
			*dst = row.Value
		}
	}
	return out
}

// RowsFromUpdate converts a partial update into rows. Strings are stored as
// is; hero_slides must be a slide list and is stored as JSON.
func RowsFromUpdate(update map[string]json.RawMessage) ([]Row, error) {
	var probe SiteSettings
	fields := probe.fields()
	rows := make([]Row, 0, len(update))
	for key, raw := range update {
		if key == keyHeroSlides {
			var slides []HeroSlide
			if err := json.Unmarshal(raw, &slides); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			encoded, err := json.Marshal(slides)
			if err != nil {
				return nil, err
			}
			rows = append(rows, Row{ID: key, Value: string(encoded)})
			continue
		}
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("%q: %w", key, ErrUnknownKey)
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("%s must be a string: %w", key, err)
		}
		rows = append(rows, Row{ID: key, Value: strings.TrimSpace(value)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}
