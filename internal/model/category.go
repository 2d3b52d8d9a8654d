package model

import "time"

type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ColorHex  string    `json:"color_hex"`
	IconName  string    `json:"icon_name"`
	CreatedAt time.Time `json:"created_at"`
}
