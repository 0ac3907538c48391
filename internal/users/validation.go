package users

import (
	"fmt"
	"strings"
)

// ValidationError is returned when an upstream record is missing required fields.
// Only absent (or null) keys count as missing; an empty string is a value.
type ValidationError struct {
	Entity string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: missing required fields: %s", e.Entity, strings.Join(e.Fields, ", "))
}

func missingFields(entity string, missing []string) error {
	if len(missing) > 0 {
		return &ValidationError{Entity: entity, Fields: missing}
	}
	return nil
}

// Validate checks that every address key, including both coordinates, was present.
func (r AddressRecord) Validate() error {
	var missing []string
	for i, name := range addressKeys {
		if !r.absent.has(i) {
			continue
		}
		if name == "geo" {
			missing = append(missing, "geo.lat", "geo.lng")
			continue
		}
		missing = append(missing, name)
	}
	if !r.absent.has(len(addressKeys) - 1) {
		for _, name := range r.Geo.absent.names(geoKeys) {
			missing = append(missing, "geo."+name)
		}
	}
	return missingFields("address", missing)
}

// Validate checks the company keys.
func (r CompanyRecord) Validate() error {
	return missingFields("company", r.absent.names(companyKeys))
}

// Validate checks the credit card keys.
func (r CreditCardRecord) Validate() error {
	return missingFields("credit card", r.absent.names(cardKeys))
}

// Validate checks the user profile. The upstream id must be positive.
func (p Profile) Validate() error {
	if p.ID <= 0 {
		return &ValidationError{Entity: "user", Fields: []string{"id"}}
	}
	return missingFields("user", p.absent.names(profileKeys))
}
