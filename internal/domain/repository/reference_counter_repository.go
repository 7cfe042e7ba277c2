package repository

import "context"

// ReferenceCounterRepository contador atómico por día para los números de referencia.
type ReferenceCounterRepository interface {
	// Allocate incrementa y devuelve el contador del día (YYYYMMDD). Si la fila no existe,
	// o su valor es menor que floor-1, el resultado es floor. Debe ejecutarse dentro de la
	// transacción que crea la cabecera: la fila queda bloqueada hasta el commit.
	Allocate(ctx context.Context, day string, floor int) (int, error)
}
