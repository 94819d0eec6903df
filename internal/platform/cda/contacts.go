package cda

import (
	"strings"
)

// Address is one postal address from an addr element.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Use        string `json:"use,omitempty"`
}

// IsEmpty reports whether no address component was populated.
func (a Address) IsEmpty() bool {
	return a.Street == "" && a.City == "" && a.PostalCode == "" && a.Country == ""
}

// TelecomType classifies a telecom value by its scheme prefix.
type TelecomType string

const (
	TelecomPhone TelecomType = "phone"
	TelecomEmail TelecomType = "email"
	TelecomFax   TelecomType = "fax"
	TelecomURL   TelecomType = "url"
	TelecomOther TelecomType = "other"
)

// Telecom is one contact point from a telecom element. Type and DisplayValue
// are derived from the raw value's scheme prefix.
type Telecom struct {
	Value        string      `json:"value"`
	Use          string      `json:"use,omitempty"`
	Type         TelecomType `json:"type"`
	DisplayValue string      `json:"display_value"`
}

// ContactInfo groups the addresses and telecoms of one document actor, in
// document order.
type ContactInfo struct {
	Addresses []Address `json:"addresses"`
	Telecoms  []Telecom `json:"telecoms"`
}

// HasData reports whether any contact detail was extracted.
func (c ContactInfo) HasData() bool {
	return len(c.Addresses) > 0 || len(c.Telecoms) > 0
}

// primaryUse reports whether a use attribute marks an entry as primary.
func primaryUse(use string) bool {
	switch strings.ToLower(strings.TrimSpace(use)) {
	case "h", "home", "primary":
		return true
	}
	return false
}

// PrimaryAddress returns the first address whose use is h/home/primary
// (case-insensitive), falling back to the first address in document order.
// The tie-break drives what the summary view displays, so it must not change.
func (c ContactInfo) PrimaryAddress() *Address {
	if len(c.Addresses) == 0 {
		return nil
	}
	for i := range c.Addresses {
		if primaryUse(c.Addresses[i].Use) {
			return &c.Addresses[i]
		}
	}
	return &c.Addresses[0]
}

// PrimaryTelecom applies the same tie-break policy to telecoms.
func (c ContactInfo) PrimaryTelecom() *Telecom {
	if len(c.Telecoms) == 0 {
		return nil
	}
	for i := range c.Telecoms {
		if primaryUse(c.Telecoms[i].Use) {
			return &c.Telecoms[i]
		}
	}
	return &c.Telecoms[0]
}

// parseAddress maps one addr element to an Address.
func parseAddress(el *Element) Address {
	return Address{
		Street:     el.Child("streetAddressLine").OwnText(),
		City:       el.Child("city").OwnText(),
		PostalCode: el.Child("postalCode").OwnText(),
		Country:    el.Child("country").OwnText(),
		Use:        el.Attr("use"),
	}
}

// parseTelecom maps one telecom element to a Telecom, classifying the value
// by scheme prefix and stripping the prefix for display.
func parseTelecom(el *Element) Telecom {
	raw := strings.TrimSpace(el.Attr("value"))
	t := Telecom{Value: raw, Use: el.Attr("use")}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "tel:"):
		t.Type = TelecomPhone
		t.DisplayValue = raw[len("tel:"):]
	case strings.HasPrefix(lower, "mailto:"):
		t.Type = TelecomEmail
		t.DisplayValue = raw[len("mailto:"):]
	case strings.HasPrefix(lower, "fax:"):
		t.Type = TelecomFax
		t.DisplayValue = raw[len("fax:"):]
	case strings.HasPrefix(lower, "http"):
		t.Type = TelecomURL
		t.DisplayValue = raw
	case strings.Contains(raw, "@"):
		t.Type = TelecomEmail
		t.DisplayValue = raw
	case looksNumeric(raw):
		t.Type = TelecomPhone
		t.DisplayValue = raw
	default:
		t.Type = TelecomOther
		t.DisplayValue = raw
	}
	return t
}

// looksNumeric reports whether a raw telecom value is plausibly a bare phone
// number: digits plus common separators.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')' || r == '.' || r == '/':
		default:
			return false
		}
	}
	return digits > 0
}

// parseContactInfo collects all addr and telecom children of an anchor
// element, preserving document order.
func parseContactInfo(anchor *Element) ContactInfo {
	info := ContactInfo{Addresses: []Address{}, Telecoms: []Telecom{}}
	if anchor == nil {
		return info
	}
	for _, addr := range anchor.ChildAll("addr") {
		a := parseAddress(addr)
		if !a.IsEmpty() || a.Use != "" {
			info.Addresses = append(info.Addresses, a)
		}
	}
	for _, tel := range anchor.ChildAll("telecom") {
		if t := parseTelecom(tel); t.Value != "" {
			info.Telecoms = append(info.Telecoms, t)
		}
	}
	return info
}

// parsePersonName extracts given/family/prefix parts from a name element.
// Several member states emit the full name as bare character data instead of
// structured parts; that form lands in family.
func parsePersonName(name *Element) (given, family, prefix string) {
	if name == nil {
		return "", "", ""
	}
	given = joinTexts(name.ChildAll("given"))
	family = joinTexts(name.ChildAll("family"))
	prefix = joinTexts(name.ChildAll("prefix"))
	if given == "" && family == "" {
		family = name.OwnText()
	}
	return given, family, prefix
}

func joinTexts(els []*Element) string {
	var parts []string
	for _, el := range els {
		if t := el.OwnText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
