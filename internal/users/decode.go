package users

import "encoding/json"

// keySet marks, by position in a record's key list, the JSON keys that were
// absent or null when the record was decoded. The zero value means every key
// was present, so records built in code are complete.
type keySet uint16

var (
	geoKeys     = []string{"lat", "lng"}
	addressKeys = []string{"street", "suite", "city", "zipcode", "geo"}
	companyKeys = []string{"name", "catchPhrase", "bs"}
	cardKeys    = []string{"type", "number", "expiration", "owner"}
	profileKeys = []string{"name", "username", "email", "phone", "website"}
	nestedKeys  = []string{"address", "company"}
)

func allKeys(keys []string) keySet {
	return keySet(1)<<len(keys) - 1
}

func (k keySet) has(i int) bool {
	return k&(1<<i) != 0
}

// names returns the keys of the set, in key list order
func (k keySet) names(keys []string) []string {
	var result []string
	for i, name := range keys {
		if k.has(i) {
			result = append(result, name)
		}
	}
	return result
}

// absentKeys decodes data as an object and reports which of keys it lacks
func absentKeys(data []byte, keys []string) (keySet, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, err
	}
	var set keySet
	for i, key := range keys {
		value, ok := raw[key]
		if !ok || string(value) == "null" {
			set |= 1 << i
		}
	}
	return set, nil
}

func (r *GeoRecord) UnmarshalJSON(data []byte) error {
	type plain GeoRecord
	if string(data) == "null" {
		return nil
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	absent, err := absentKeys(data, geoKeys)
	if err != nil {
		return err
	}
	*r = GeoRecord(p)
	r.absent = absent
	return nil
}

func (r *AddressRecord) UnmarshalJSON(data []byte) error {
	type plain AddressRecord
	if string(data) == "null" {
		return nil
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	absent, err := absentKeys(data, addressKeys)
	if err != nil {
		return err
	}
	*r = AddressRecord(p)
	r.absent = absent
	return nil
}

func (r *CompanyRecord) UnmarshalJSON(data []byte) error {
	type plain CompanyRecord
	if string(data) == "null" {
		return nil
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	absent, err := absentKeys(data, companyKeys)
	if err != nil {
		return err
	}
	*r = CompanyRecord(p)
	r.absent = absent
	return nil
}

func (r *CreditCardRecord) UnmarshalJSON(data []byte) error {
	type plain CreditCardRecord
	if string(data) == "null" {
		return nil
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	absent, err := absentKeys(data, cardKeys)
	if err != nil {
		return err
	}
	*r = CreditCardRecord(p)
	r.absent = absent
	return nil
}

// UnmarshalJSON decodes a directory user. A missing address or company object
// leaves every one of its keys absent.
func (d *DirectoryUser) UnmarshalJSON(data []byte) error {
	type plain DirectoryUser
	if string(data) == "null" {
		return nil
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	absent, err := absentKeys(data, profileKeys)
	if err != nil {
		return err
	}
	nested, err := absentKeys(data, nestedKeys)
	if err != nil {
		return err
	}
	*d = DirectoryUser(p)
	d.absent = absent
	if nested.has(0) {
		d.Address.absent = allKeys(addressKeys)
	}
	if nested.has(1) {
		d.Company.absent = allKeys(companyKeys)
	}
	return nil
}
