package domain

import "time"

// Patient is the customer a POS session sells to.
type Patient struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Phone string `db:"phone" json:"phone,omitempty"`
}

// Prescription lists free-text medicine names written for a patient.
type Prescription struct {
	ID        int64     `db:"id" json:"id"`
	PatientID int64     `db:"patient_id" json:"patient_id"`
	Doctor    string    `db:"doctor" json:"doctor,omitempty"`
	Medicines []string  `json:"medicines"`
	IssuedAt  time.Time `db:"issued_at" json:"issued_at"`
}
