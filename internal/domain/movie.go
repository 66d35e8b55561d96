package domain

import "time"

// Genre describes a movie genre embedded in each movie document.
type Genre struct {
	Name        string
	Description string
}

// Director describes a movie's director embedded in each movie document.
type Director struct {
	Name  string
	Bio   string
	Birth string
	Death string
}

// Movie represents a catalog entry.
type Movie struct {
	ID          string
	Title       string
	Description string
	Genre       Genre
	Director    Director
	ImagePath   string
	Actors      []string
	Featured    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
