package model

// Medicine is a medicines catalog entry
type Medicine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Strength string `json:"strength,omitempty"`
	Form     string `json:"form,omitempty"`
}
