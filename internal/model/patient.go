package model

// Patient is derived from appointment history and never persisted
type Patient struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       string `json:"age"`
	Gender    string `json:"gender"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	LastVisit string `json:"lastVisit"`
}
