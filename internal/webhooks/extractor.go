package webhooks

import (
	"encoding/json"
	"strings"

	"medspa_crm_backend/platform/phone"
	"medspa_crm_backend/platform/sanitize"
)

// defaultSource is assumed when the payload does not carry one.
const defaultSource = "ghl"

// InboundTag accepts both tag encodings CRM webhooks produce: a bare string
// or an object with a name field.
type InboundTag struct {
	Name string
}

func (t *InboundTag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Name = s
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Name = obj.Name
	return nil
}

// LeadPayload is the inbound CRM contact payload. Only the fields listed
// here are ever read; everything else in the webhook body is dropped.
type LeadPayload struct {
	ContactID string       `json:"contactId"`
	ID        string       `json:"id"`
	FirstName string       `json:"firstName"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Source    string       `json:"source"`
	Tags      []InboundTag `json:"tags"`
}

// Extracted is the minimal lead data kept from a webhook. Tags hold only
// the procedure-related names that survived the keyword filter.
type Extracted struct {
	ExternalID string
	FirstName  string
	Email      string
	Phone      string
	Source     string
	Tags       []string
}

// procedureKeywords is the allowlist for inbound tag names. Anything a CRM
// tag carries beyond a procedure reference (diagnoses, visit notes, staff
// shorthand) must not be stored, so tags without one of these substrings
// are dropped.
var procedureKeywords = []string{
	"botox", "filler", "surgery", "laser", "rhino", "rhinoplasty",
	"btx", "dermal", "lip", "cheek", "chin", "nose", "breast",
	"tummy", "lipo", "facelift", "brow", "eye", "neck",
}

// tagPalette maps keyword families to display colors. First match wins.
var tagPalette = []struct {
	keyword string
	color   string
}{
	{"botox", "#FF6B6B"},
	{"filler", "#4ECDC4"},
	{"surgery", "#45B7D1"},
	{"laser", "#96CEB4"},
	{"rhino", "#FFEAA7"},
}

const defaultTagColor = "#DDA0DD"

// IsProcedureTag reports whether a tag name references a known procedure.
func IsProcedureTag(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range procedureKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// TagColor picks the display color for a procedure tag name.
func TagColor(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range tagPalette {
		if strings.Contains(lower, entry.keyword) {
			return entry.color
		}
	}
	return defaultTagColor
}

// Extract reduces an inbound payload to the fields this system stores.
// The first name keeps only its first whitespace-delimited token and the
// phone number is normalized to E.164 where it parses.
func Extract(p LeadPayload) Extracted {
	ex := Extracted{
		ExternalID: strings.TrimSpace(p.ContactID),
		FirstName:  sanitize.FirstName(firstNonEmpty(p.FirstName, p.Name)),
		Email:      strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:      strings.TrimSpace(p.Phone),
		Source:     strings.TrimSpace(p.Source),
	}
	if ex.ExternalID == "" {
		ex.ExternalID = strings.TrimSpace(p.ID)
	}
	if ex.Phone != "" {
		ex.Phone = phone.NormalizeE164(ex.Phone)
	}
	if ex.Source == "" {
		ex.Source = defaultSource
	}

	for _, tag := range p.Tags {
		name := strings.TrimSpace(tag.Name)
		if name == "" || !IsProcedureTag(name) {
			continue
		}
		ex.Tags = append(ex.Tags, name)
	}

	return ex
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
