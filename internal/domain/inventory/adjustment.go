package inventory

// AdjustmentDirection sentido del ajuste sugerido.
type AdjustmentDirection string

const (
	AdjustmentIncrease AdjustmentDirection = "INCREASE"
	AdjustmentDecrease AdjustmentDirection = "DECREASE"
	AdjustmentNoChange AdjustmentDirection = "NO_CHANGE"
)

// AdjustmentPlan datos para precargar una transacción ADJUST tras un conteo físico.
type AdjustmentPlan struct {
	ProductID    string
	CurrentStock int64
	ActualStock  int64
	Difference   int64 // delta a registrar en el ADJUST
	Direction    AdjustmentDirection
	Quantity     int64 // |Difference|
}

// PlanAdjustment compara el stock del libro con el conteo físico.
func PlanAdjustment(productID string, current, actual int64) AdjustmentPlan {
	diff := actual - current
	dir := AdjustmentNoChange
	switch {
	case diff > 0:
		dir = AdjustmentIncrease
	case diff < 0:
		dir = AdjustmentDecrease
	}
	return AdjustmentPlan{
		ProductID:    productID,
		CurrentStock: current,
		ActualStock:  actual,
		Difference:   diff,
		Direction:    dir,
		Quantity:     abs(diff),
	}
}

// AdjustmentSummary agregados de un conteo por lote.
type AdjustmentSummary struct {
	Products      int
	Increases     int
	Decreases     int
	Unchanged     int
	TotalIncrease int64
	TotalDecrease int64
	NetDifference int64
}

// Summarize agrega conteos y sumas sobre varios planes.
func Summarize(plans []AdjustmentPlan) AdjustmentSummary {
	s := AdjustmentSummary{Products: len(plans)}
	for _, p := range plans {
		switch p.Direction {
		case AdjustmentIncrease:
			s.Increases++
			s.TotalIncrease += p.Quantity
		case AdjustmentDecrease:
			s.Decreases++
			s.TotalDecrease += p.Quantity
		default:
			s.Unchanged++
		}
		s.NetDifference += p.Difference
	}
	return s
}
