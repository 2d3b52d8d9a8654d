package model

import "time"

// Point is a WGS-84 coordinate. Storage order is (Longitude, Latitude).
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type NearbyParams struct {
	Center     Point
	Radius     float64
	CategoryID *int
	Status     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

type BubbleParams struct {
	Center     Point
	Radius     float64
	CategoryID *int
}

type SearchParams struct {
	Query      string
	CategoryID *int
	Page       int
	PageSize   int
}
