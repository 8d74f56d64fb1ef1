package models

import "time"

// Role is a member of the deployment-defined role set.
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleDeliveryBoy Role = "delivery_boy"
	RoleSeller      Role = "seller"
	RoleAdmin       Role = "admin"
)

// RoleSet is the closed set of roles a deployment accepts.
type RoleSet map[Role]struct{}

func NewRoleSet(roles []string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[Role(r)] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Audit holds the who/when columns every entity carries.
type Audit struct {
	CreatedBy   *uint      `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedDate time.Time  `gorm:"column:created_date;not null;autoCreateTime" json:"created_date"`
	UpdatedBy   *uint      `gorm:"column:updated_by" json:"updated_by,omitempty"`
	UpdatedDate *time.Time `gorm:"column:updated_date" json:"updated_date,omitempty"`
}

type User struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null"`
	Username    string `gorm:"size:50;not null;uniqueIndex"`
	Email       string `gorm:"size:255;not null;uniqueIndex"`
	PhoneNumber string `gorm:"size:32;not null;uniqueIndex"`
	Password    string `gorm:"not null"`
	Role        Role   `gorm:"size:32;not null"`
	IsActive    bool   `gorm:"not null;default:true"`
	Audit

	CaptchaToken    string `gorm:"column:captcha_token"`
	CaptchaVerified bool   `gorm:"column:captcha_verified;not null;default:false"`
	EmailOTP        string `gorm:"column:email_otp;size:16"`
	PhoneOTP        string `gorm:"column:phone_otp;size:16"`
	OTPVerified     bool   `gorm:"column:otp_verified;not null;default:false"`

	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type Address struct {
	ID          uint     `gorm:"primaryKey"`
	UserID      uint     `gorm:"not null;index"`
	AddressLine string   `gorm:"column:address_line;not null"`
	City        string   `gorm:"size:100"`
	State       string   `gorm:"size:100"`
	Pincode     string   `gorm:"size:16"`
	Latitude    *float64 `gorm:"column:latitude"`
	Longitude   *float64 `gorm:"column:longitude"`
	PlaceID     string   `gorm:"column:place_id"`
	IsActive    bool     `gorm:"not null;default:true"`
	Audit
}

// Product is soft deleted: IsActive drops to 0 and the row stays.
type Product struct {
	ID            uint    `gorm:"primaryKey"`
	Name          string  `gorm:"size:255;not null"`
	Description   string  `gorm:"type:text;not null"`
	Price         float64 `gorm:"not null"`
	Rating        float64 `gorm:"not null;default:0"`
	ImageFilename string  `gorm:"column:image_filename;not null"`
	ImageBlob     []byte  `gorm:"column:image_blob;not null"`
	IsActive      int     `gorm:"not null;default:1"`
	Audit
}
