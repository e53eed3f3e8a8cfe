package resolver

import (
	"fmt"

	"medeasy/pos/domain"
	"medeasy/pos/internal/cart"
)

// ImportReport counts how much of a prescription made it into the cart.
type ImportReport struct {
	Prescribed int      `json:"prescribed"`
	Added      int      `json:"added"`
	Missing    []string `json:"missing,omitempty"`
}

func (r ImportReport) Summary() string {
	return fmt.Sprintf("%d of %d prescribed items added", r.Added, r.Prescribed)
}

// ImportPrescriptions adds every prescribed medicine it can resolve to the
// session's cart. Unknown or out-of-stock medicines are reported, not fatal.
// Only a missing customer aborts the import.
func (r *Resolver) ImportPrescriptions(sess *cart.Session, prescriptions ...domain.Prescription) (ImportReport, error) {
	var report ImportReport
	if sess.Customer == nil {
		return report, cart.ErrNoCustomerSelected
	}
	for _, p := range prescriptions {
		for _, name := range p.Medicines {
			report.Prescribed++
			item, err := r.ResolveName(name)
			if err != nil {
				report.Missing = append(report.Missing, name)
				continue
			}
			if _, err := sess.AddLine(item, 0); err != nil {
				report.Missing = append(report.Missing, name)
				continue
			}
			report.Added++
		}
	}
	return report, nil
}
