package domain

// Service is a bookable offering such as a consultation type.
type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"` // minutes
	Consultant  string  `json:"consultant,omitempty"`
}
