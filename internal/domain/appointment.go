package domain

import "time"

// Appointment is one reserved slot. A phone number holds at most one
// active appointment system-wide.
type Appointment struct {
	ID         string
	Phone      string
	Department string
	Date       string // YYYY-MM-DD
	CreatedAt  time.Time
}

type Department struct {
	Name          string
	DailyCapacity int
}

// DateAvailability is the per-date slot count for one department.
type DateAvailability struct {
	Date      string `json:"date"`
	Available int    `json:"available"`
	Booked    int    `json:"booked"`
}
