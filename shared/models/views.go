package models

import (
	"encoding/base64"
	"time"
)

// UserView is the API shape of a user. It never exposes the password hash,
// the captcha token or the stored OTPs.
type UserView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Role        Role   `json:"role"`
	IsActive    bool   `json:"is_active"`
}

type AddressView struct {
	ID          uint       `json:"id"`
	UserID      uint       `json:"user_id"`
	AddressLine string     `json:"address_line"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Pincode     string     `json:"pincode"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	PlaceID     string     `json:"place_id"`
	IsActive    bool       `json:"is_active"`
	CreatedDate time.Time  `json:"created_date"`
	UpdatedDate *time.Time `json:"updated_date"`
}

// ProductView carries the image as base64 next to its filename; raw bytes
// never leave the service.
type ProductView struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	IsActive      int     `json:"is_active"`
	Rating        float64 `json:"rating"`
	ImageFilename string  `json:"image_filename"`
	ImageBase64   *string `json:"image_base64"`
}

type ProductPage struct {
	Items    []ProductView `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Pages    int           `json:"pages"`
}

// LoginView is the login response body.
type LoginView struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      uint   `json:"user_id"`
	Role        Role   `json:"role"`
}

func (u *User) View() *UserView {
	return &UserView{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IsActive:    u.IsActive,
	}
}

func (a *Address) View() *AddressView {
	return &AddressView{
		ID:          a.ID,
		UserID:      a.UserID,
		AddressLine: a.AddressLine,
		City:        a.City,
		State:       a.State,
		Pincode:     a.Pincode,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		PlaceID:     a.PlaceID,
		IsActive:    a.IsActive,
		CreatedDate: a.CreatedDate,
		UpdatedDate: a.UpdatedDate,
	}
}

func (p *Product) View() ProductView {
	v := ProductView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		IsActive:      p.IsActive,
		Rating:        p.Rating,
		ImageFilename: p.ImageFilename,
	}
	if len(p.ImageBlob) > 0 {
		enc := base64.StdEncoding.EncodeToString(p.ImageBlob)
		v.ImageBase64 = &enc
	}
	return v
}
