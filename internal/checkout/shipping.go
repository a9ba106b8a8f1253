package checkout

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	phonePattern   = regexp.MustCompile(`^[0-9]{10}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// ShippingDetails is what the customer enters on the shipping step. A non-nil
// SavedAddressID means the address was picked from the saved list.
type ShippingDetails struct {
	FullName string
	Email    string
	Phone    string
	Address  string
	City     string
	District string
	State    string
	Pincode  string

	SavedAddressID uuid.UUID
}

func (d ShippingDetails) trimmed() ShippingDetails {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = strings.TrimSpace(d.Address)
	d.City = strings.TrimSpace(d.City)
	d.District = strings.TrimSpace(d.District)
	d.State = strings.TrimSpace(d.State)
	d.Pincode = strings.TrimSpace(d.Pincode)
	return d
}

// Validate returns every problem with the details joined into one error.
func (d ShippingDetails) Validate() error {
	d = d.trimmed()

	var errs []error
	required := func(v, field string) {
		if v == "" {
			errs = append(errs, fmt.Errorf("%w: %s is required", ErrValidation, field))
		}
	}
	required(d.FullName, "name")
	required(d.Address, "address")
	required(d.City, "city")
	required(d.District, "district")

	if _, err := mail.ParseAddress(d.Email); d.Email == "" || err != nil {
		errs = append(errs, fmt.Errorf("%w: a valid email is required", ErrValidation))
	}
	if !phonePattern.MatchString(d.Phone) {
		errs = append(errs, fmt.Errorf("%w: phone must be 10 digits", ErrValidation))
	}
	if !pincodePattern.MatchString(d.Pincode) {
		errs = append(errs, fmt.Errorf("%w: pincode must be 6 digits", ErrValidation))
	}
	return errors.Join(errs...)
}
