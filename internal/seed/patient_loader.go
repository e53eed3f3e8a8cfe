package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"medeasy/pos/internal/logging"
)

// LoadPatients ingests a CSV of name,phone,doctor,medicines where medicines is
// a ";" separated list. Each row creates a patient (reused by name and phone)
// with one prescription. It returns the number of prescriptions created.
func LoadPatients(db *sqlx.DB, csvPath string, logger *zap.Logger) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("unable to load patients %s: %w", csvPath, err)
	}
	defer file.Close()
	return loadPatients(db, file, logger)
}

func loadPatients(db *sqlx.DB, r io.Reader, logger *zap.Logger) (int, error) {
	logger = logging.OrNop(logger)
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("unable to read patient header: %w", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("unable to start patient transaction: %w", err)
	}
	defer tx.Rollback()

	created := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(record) < 4 {
			logger.Warn("unable to read patient row", zap.Error(err))
			continue
		}
		name, phone := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		if name == "" {
			continue
		}

		var patientID int64
		err = tx.Get(&patientID, tx.Rebind(`SELECT id FROM patients WHERE name = ? AND phone = ?`), name, phone)
		if err != nil {
			if err := tx.QueryRowx(tx.Rebind(`INSERT INTO patients (name, phone) VALUES (?, ?) RETURNING id`), name, phone).Scan(&patientID); err != nil {
				return 0, fmt.Errorf("insert patient %s: %w", name, err)
			}
		}

		var prescriptionID int64
		if err := tx.QueryRowx(tx.Rebind(`INSERT INTO prescriptions (patient_id, doctor) VALUES (?, ?) RETURNING id`),
			patientID, strings.TrimSpace(record[2])).Scan(&prescriptionID); err != nil {
			return 0, fmt.Errorf("insert prescription for %s: %w", name, err)
		}
		position := 0
		for _, medicine := range strings.Split(record[3], ";") {
			medicine = strings.TrimSpace(medicine)
			if medicine == "" {
				continue
			}
			if _, err := tx.Exec(tx.Rebind(`INSERT INTO prescription_medicines (prescription_id, name, position) VALUES (?, ?, ?)`),
				prescriptionID, medicine, position); err != nil {
				return 0, fmt.Errorf("insert prescribed medicine %s: %w", medicine, err)
			}
			position++
		}
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("unable to commit patient seed: %w", err)
	}
	logger.Info("seeded patients", zap.Int("prescriptions", created))
	return created, nil
}
