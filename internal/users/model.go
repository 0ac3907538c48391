// Package users contains the domain types synchronized by the service: the
// records returned by the upstream APIs and the entities persisted from them.
package users

import "fmt"

// GeoRecord is the nested geolocation of a directory address.
type GeoRecord struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`

	absent keySet
}

// AddressRecord is the address payload nested in a directory user.
type AddressRecord struct {
	Street  string    `json:"street"`
	Suite   string    `json:"suite"`
	City    string    `json:"city"`
	Zipcode string    `json:"zipcode"`
	Geo     GeoRecord `json:"geo"`

	absent keySet
}

// CompanyRecord is the company payload nested in a directory user.
type CompanyRecord struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`

	absent keySet
}

// CreditCardRecord is a single card returned by the credit card generator.
type CreditCardRecord struct {
	Type       string `json:"type"`
	Number     string `json:"number"`
	Expiration string `json:"expiration"`
	Owner      string `json:"owner"`

	absent keySet
}

// Profile holds the flat, top-level fields of a directory user.
type Profile struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`

	absent keySet
}

// DirectoryUser is one record of the upstream user directory.
type DirectoryUser struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Phone    string        `json:"phone"`
	Website  string        `json:"website"`
	Address  AddressRecord `json:"address"`
	Company  CompanyRecord `json:"company"`

	absent keySet
}

// Profile returns the user payload with the nested address and company removed.
func (d DirectoryUser) Profile() Profile {
	return Profile{
		ID:       d.ID,
		Name:     d.Name,
		Username: d.Username,
		Email:    d.Email,
		Phone:    d.Phone,
		Website:  d.Website,
		absent:   d.absent,
	}
}

// Address is a persisted postal address.
type Address struct {
	ID      int64
	Street  string
	Suite   string
	City    string
	Zipcode string
	GeoLat  string
	GeoLng  string
}

func (a *Address) String() string {
	return fmt.Sprintf("Address(id=%d, street='%s', suite='%s', city='%s', zipcode='%s', geo_lat='%s', geo_lng='%s')",
		a.ID, a.Street, a.Suite, a.City, a.Zipcode, a.GeoLat, a.GeoLng)
}

// Company is a persisted employer record.
type Company struct {
	ID          int64
	Name        string
	CatchPhrase string
	BS          string
}

func (c *Company) String() string {
	return fmt.Sprintf("Company(id=%d, name='%s', catch_phrase='%s', bs='%s')",
		c.ID, c.Name, c.CatchPhrase, c.BS)
}

// CreditCard is a persisted card. Each card belongs to at most one user.
type CreditCard struct {
	ID         int64
	Type       string
	Number     string
	Expiration string
	Owner      string
}

func (c *CreditCard) String() string {
	return fmt.Sprintf("CreditCard(id=%d, type='%s', number='%s', expiration='%s', owner='%s')",
		c.ID, c.Type, c.Number, c.Expiration, c.Owner)
}

// User is a persisted directory user. The ID is assigned upstream.
type User struct {
	ID           int64
	Name         string
	Username     string
	Email        string
	Phone        string
	Website      string
	AddressID    int64
	CompanyID    int64
	CreditCardID *int64
}

func (u *User) String() string {
	card := "None"
	if u.CreditCardID != nil {
		card = fmt.Sprintf("%d", *u.CreditCardID)
	}
	return fmt.Sprintf("User(id=%d, name='%s', username='%s', email='%s', phone='%s', website='%s', "+
		"address_id=%d, company_id=%d, credit_card_id=%s)",
		u.ID, u.Name, u.Username, u.Email, u.Phone, u.Website, u.AddressID, u.CompanyID, card)
}

// UserDetails is a user joined with its related entities, used for reporting.
// CreditCard is nil when the user has no card linked.
type UserDetails struct {
	User       User
	Address    Address
	Company    Company
	CreditCard *CreditCard
}
