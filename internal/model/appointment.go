package model

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is an appointments document. It is the only source of patient
// identity in the system.
type Appointment struct {
	ID              string            `json:"id"`
	PatientName     string            `json:"patientName"`
	PatientAge      string            `json:"patientAge"`
	PatientGender   string            `json:"patientGender"`
	PatientPhone    string            `json:"patientPhone"`
	PatientEmail    string            `json:"patientEmail"`
	AppointmentDate string            `json:"appointmentDate"`
	AppointmentTime string            `json:"appointmentTime,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	Status          AppointmentStatus `json:"status,omitempty"`
	CreatedBy       string            `json:"createdBy,omitempty"`
	CreatedAt       Timestamp         `json:"createdAt"`
}

type CreateAppointmentRequest struct {
	PatientName     string `json:"patientName" binding:"required"`
	PatientAge      string `json:"patientAge"`
	PatientGender   string `json:"patientGender" binding:"omitempty,oneof=Male Female Other"`
	PatientPhone    string `json:"patientPhone" binding:"required"`
	PatientEmail    string `json:"patientEmail" binding:"omitempty,email"`
	AppointmentDate string `json:"appointmentDate" binding:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointmentTime"`
	Reason          string `json:"reason" binding:"max=1000"`
}

// QueueEntry is one numbered token on the queue display
type QueueEntry struct {
	Token           int               `json:"token"`
	AppointmentID   string            `json:"appointmentId"`
	PatientName     string            `json:"patientName"`
	AppointmentTime string            `json:"appointmentTime,omitempty"`
	Status          AppointmentStatus `json:"status,omitempty"`
}
