package cqrs

import "time"

// ---------- User commands ----------

type RegisterUserCommand struct {
	Name            string
	Username        string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
	Captcha         string
	EmailOTP        string
	PhoneOTP        string
	Address         *AddressInput
}

// IssueOTPCommand asks for a fresh one-time code on a channel.
type IssueOTPCommand struct {
	Channel     string
	Destination string
}

type LoginCommand struct {
	Identifier string
	Password   string
	Captcha    string
	OTP        string
}

// ---------- Address commands ----------

type AddressInput struct {
	AddressLine string
	City        string
	State       string
	Pincode     string
	Latitude    *float64
	Longitude   *float64
	PlaceID     string
	CreatedBy   *uint
}

type AddAddressCommand struct {
	UserID  uint
	Address AddressInput
}

// AddressPatch lists the mutable address fields. Nil means "leave as is".
type AddressPatch struct {
	AddressLine *string
	City        *string
	State       *string
	Pincode     *string
	Latitude    *float64
	Longitude   *float64
	PlaceID     *string
	UpdatedBy   *uint
}

// Columns returns the column assignments for the fields present in the patch,
// stamped with updated_date.
func (p AddressPatch) Columns(now time.Time) map[string]any {
	cols := map[string]any{"updated_date": now}
	if p.AddressLine != nil {
		cols["address_line"] = *p.AddressLine
	}
	if p.City != nil {
		cols["city"] = *p.City
	}
	if p.State != nil {
		cols["state"] = *p.State
	}
	if p.Pincode != nil {
		cols["pincode"] = *p.Pincode
	}
	if p.Latitude != nil {
		cols["latitude"] = *p.Latitude
	}
	if p.Longitude != nil {
		cols["longitude"] = *p.Longitude
	}
	if p.PlaceID != nil {
		cols["place_id"] = *p.PlaceID
	}
	if p.UpdatedBy != nil {
		cols["updated_by"] = *p.UpdatedBy
	}
	return cols
}

type UpdateAddressCommand struct {
	AddressID uint
	Patch     AddressPatch
}

type DeleteAddressCommand struct {
	AddressID uint
}

// ---------- Product commands ----------

// ImageUpload is an uploaded image already read into memory.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ProductPatch lists the mutable product fields. Nil means "leave as is".
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Rating      *float64
}

// SaveProductCommand creates a product when ProductID is 0 and updates the
// existing one otherwise.
type SaveProductCommand struct {
	ProductID     uint
	Patch         ProductPatch
	CurrentUserID uint
	Image         *ImageUpload
}

type DeleteProductCommand struct {
	ProductID     uint
	CurrentUserID uint
}
