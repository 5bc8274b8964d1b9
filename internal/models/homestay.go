package models

import "time"

type Homestay struct {
	ID            int64          `json:"id"`
	HostID        int64          `json:"host_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Address       string         `json:"address"`
	City          string         `json:"city"`
	State         string         `json:"state"`
	Country       string         `json:"country"`
	PostalCode    string         `json:"postal_code"`
	PricePerNight float64        `json:"price_per_night"`
	MaxGuests     int            `json:"max_guests"`
	Amenities     map[string]any `json:"amenities"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type HomestayImage struct {
	ID         int64     `json:"id"`
	HomestayID int64     `json:"homestay_id"`
	ImageURL   string    `json:"image_url"`
	Caption    *string   `json:"caption"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

type HomestayReview struct {
	ID         int64     `json:"id"`
	HomestayID int64     `json:"homestay_id"`
	StudentID  int64     `json:"student_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

type HomestayDetail struct {
	Homestay
	Images        []HomestayImage `json:"images"`
	AverageRating *float64        `json:"average_rating,omitempty"`
	ReviewCount   int             `json:"review_count"`
}
