package inventory

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// IntegrityIssue tipo de inconsistencia detectada en la cadena de saldos.
type IntegrityIssue string

const (
	IssueBalanceMismatch  IntegrityIssue = "BALANCE_MISMATCH"  // before[i] != after[i-1]
	IssueCalculationError IntegrityIssue = "CALCULATION_ERROR" // after != before + change
)

// IntegrityError una fila que rompe la cadena.
type IntegrityError struct {
	MovementID string
	Issue      IntegrityIssue
	Expected   int64
	Actual     int64
}

// IntegrityReport resultado de auditar el libro de un producto.
type IntegrityReport struct {
	ProductID      string
	Valid          bool
	TotalMovements int
	FinalBalance   int64
	Errors         []IntegrityError
}

// VerifyChain recorre los movimientos en orden de creación y verifica la continuidad
// de saldos. No repara nada.
func VerifyChain(productID string, movements []*entity.StockMovement) IntegrityReport {
	ordered := make([]*entity.StockMovement, len(movements))
	copy(ordered, movements)
	SortLedger(ordered)

	report := IntegrityReport{ProductID: productID, TotalMovements: len(ordered)}
	for i, m := range ordered {
		if i > 0 && m.QuantityBefore != ordered[i-1].QuantityAfter {
			report.Errors = append(report.Errors, IntegrityError{
				MovementID: m.ID,
				Issue:      IssueBalanceMismatch,
				Expected:   ordered[i-1].QuantityAfter,
				Actual:     m.QuantityBefore,
			})
		}
		if m.QuantityAfter != m.QuantityBefore+m.QuantityChange {
			report.Errors = append(report.Errors, IntegrityError{
				MovementID: m.ID,
				Issue:      IssueCalculationError,
				Expected:   m.QuantityBefore + m.QuantityChange,
				Actual:     m.QuantityAfter,
			})
		}
	}
	if n := len(ordered); n > 0 {
		report.FinalBalance = ordered[n-1].QuantityAfter
	}
	report.Valid = len(report.Errors) == 0
	return report
}
