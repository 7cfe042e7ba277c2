package inventory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Formato del número de referencia: TXN-YYYYMMDD-NNNN.
const (
	ReferencePrefix      = "TXN"
	referenceDateLayout  = "20060102"
	MaxReferenceSequence = 9999
)

// ErrMalformedReference el texto no sigue el formato TXN-YYYYMMDD-NNNN.
var ErrMalformedReference = errors.New("número de referencia mal formado")

// ErrReferenceSequenceExhausted se superaron las 9999 transacciones del día.
var ErrReferenceSequenceExhausted = errors.New("secuencia diaria de referencias agotada")

// ReferenceDay clave de día (YYYYMMDD) del instante dado en loc.
func ReferenceDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(referenceDateLayout)
}

// ReferenceDayPrefix prefijo común a todas las referencias de un día: "TXN-YYYYMMDD-".
func ReferenceDayPrefix(day string) string {
	return ReferencePrefix + "-" + day + "-"
}

// FormatReference arma la referencia con la secuencia rellenada a 4 dígitos.
func FormatReference(day string, seq int) (string, error) {
	if seq < 1 || seq > MaxReferenceSequence {
		return "", fmt.Errorf("%w: %d", ErrReferenceSequenceExhausted, seq)
	}
	return fmt.Sprintf("%s%04d", ReferenceDayPrefix(day), seq), nil
}

// ParseReference separa día y secuencia.
func ParseReference(ref string) (day string, seq int, err error) {
	parts := strings.Split(ref, "-")
	if len(parts) != 3 || parts[0] != ReferencePrefix || len(parts[1]) != len(referenceDateLayout) || len(parts[2]) != 4 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	if _, err := time.Parse(referenceDateLayout, parts[1]); err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	return parts[1], n, nil
}

// NextReferenceSequence a partir de la mayor referencia existente del día (vacía si no hay)
// devuelve la siguiente secuencia; 1 si no existe ninguna.
func NextReferenceSequence(latest string) (int, error) {
	if latest == "" {
		return 1, nil
	}
	_, seq, err := ParseReference(latest)
	if err != nil {
		return 0, err
	}
	return seq + 1, nil
}
