package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func TestNewWithWriter_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "production", Level: "warn", Service: "stock-ledger"}, &buf)

	l.Info().Msg("descartado")
	assert.Zero(t, buf.Len(), "info por debajo de warn no se escribe")

	ledger := l.Component("ledger")
	ledger.Warn().Str("reference", "TXN-20240115-0001").Msg("transacción rechazada")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "warn", ev["level"])
	assert.Equal(t, "stock-ledger", ev["service"])
	assert.Equal(t, "ledger", ev["component"])
	assert.Equal(t, "TXN-20240115-0001", ev["reference"])
}
