package patients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"medeasy/pos/domain"
)

var ErrNotFound = errors.New("patient not found")

// Repository reads patients and their prescriptions.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]domain.Patient, error) {
	patients := []domain.Patient{}
	if err := r.db.SelectContext(ctx, &patients, `SELECT id, name, phone FROM patients ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Patient, error) {
	var p domain.Patient
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT id, name, phone FROM patients WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return p, fmt.Errorf("get patient %d: %w", id, err)
	}
	return p, nil
}

type prescriptionRow struct {
	ID        int64  `db:"id"`
	PatientID int64  `db:"patient_id"`
	Doctor    string `db:"doctor"`
	IssuedAt  string `db:"issued_at"`
}

type medicineRow struct {
	PrescriptionID int64  `db:"prescription_id"`
	Name           string `db:"name"`
}

// Prescriptions returns a patient's prescriptions, newest first, each with its
// medicine names in written order.
func (r *Repository) Prescriptions(ctx context.Context, patientID int64) ([]domain.Prescription, error) {
	var rows []prescriptionRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`SELECT id, patient_id, doctor, issued_at FROM prescriptions WHERE patient_id = ? ORDER BY issued_at DESC, id DESC`), patientID); err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	if len(rows) == 0 {
		return []domain.Prescription{}, nil
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	query, args, err := sqlx.In(`SELECT prescription_id, name FROM prescription_medicines WHERE prescription_id IN (?) ORDER BY prescription_id, position, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("prepare prescription medicines query: %w", err)
	}
	var medicines []medicineRow
	if err := r.db.SelectContext(ctx, &medicines, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list prescription medicines: %w", err)
	}
	byPrescription := make(map[int64][]string)
	for _, m := range medicines {
		byPrescription[m.PrescriptionID] = append(byPrescription[m.PrescriptionID], m.Name)
	}

	out := make([]domain.Prescription, len(rows))
	for i, row := range rows {
		out[i] = domain.Prescription{
			ID:        row.ID,
			PatientID: row.PatientID,
			Doctor:    row.Doctor,
			Medicines: byPrescription[row.ID],
			IssuedAt:  parseTimestamp(row.IssuedAt),
		}
	}
	return out, nil
}

// Prescription returns one of patientID's prescriptions.
func (r *Repository) Prescription(ctx context.Context, patientID, prescriptionID int64) (domain.Prescription, error) {
	all, err := r.Prescriptions(ctx, patientID)
	if err != nil {
		return domain.Prescription{}, err
	}
	for _, p := range all {
		if p.ID == prescriptionID {
			return p, nil
		}
	}
	return domain.Prescription{}, fmt.Errorf("%w: prescription %d", ErrNotFound, prescriptionID)
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// parseTimestamp accepts what sqlite and postgres hand back for timestamp
// columns. Unparseable values become the zero time.
func parseTimestamp(raw string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
