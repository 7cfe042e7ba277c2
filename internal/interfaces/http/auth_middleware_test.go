package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "stock-ledger-test"
	testExpMin    = 60
)

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// callWithHeader lanza la petición contra la API completa con un Authorization arbitrario.
func (f *apiFixture) callWithHeader(t *testing.T, method, path, authHeader string) (int, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body dto.ErrorResponse
	if len(raw) > 0 && raw[0] == '{' {
		body = decode[dto.ErrorResponse](t, raw)
	}
	return resp.StatusCode, body
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole sobre las rutas del libro
// ──────────────────────────────────────────────────────────────────────────────

// Un rol permitido pasa el filtro y llega al handler (404 por id inexistente);
// uno no permitido se corta con 403 antes de tocar el libro.
func TestRequireRole_TransactionRoutes(t *testing.T) {
	reverse := "/api/transactions/no-existe/reverse"
	notes := "/api/transactions/no-existe/notes"
	cases := []struct {
		name   string
		method string
		path   string
		role   string
		body   any
		want   int
	}{
		{"admin revierte", http.MethodPost, reverse, pkgjwt.RoleAdmin, nil, http.StatusNotFound},
		{"bodeguero no revierte", http.MethodPost, reverse, pkgjwt.RoleBodeguero, nil, http.StatusForbidden},
		{"vendedor no revierte", http.MethodPost, reverse, pkgjwt.RoleVendedor, nil, http.StatusForbidden},
		{"admin corrige notas", http.MethodPatch, notes, pkgjwt.RoleAdmin, dto.AmendNotesRequest{Notes: "x"}, http.StatusNotFound},
		{"bodeguero corrige notas", http.MethodPatch, notes, pkgjwt.RoleBodeguero, dto.AmendNotesRequest{Notes: "x"}, http.StatusNotFound},
		{"vendedor no corrige notas", http.MethodPatch, notes, pkgjwt.RoleVendedor, dto.AmendNotesRequest{Notes: "x"}, http.StatusForbidden},
	}
	f := newAPI(t, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, raw := f.call(t, tc.method, tc.path, tc.role, tc.body)
			require.Equal(t, tc.want, status, string(raw))
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, raw).Code)
			}
		})
	}
}

// Un 403 no deja rastro: la reversión nunca se registra.
func TestRequireRole_ForbiddenReverseWritesNothing(t *testing.T) {
	f := newAPI(t, nil)
	status, raw := f.call(t, http.MethodPost, "/api/transactions", pkgjwt.RoleBodeguero, receiptBody(4))
	require.Equal(t, http.StatusCreated, status, string(raw))
	orig := decode[dto.TransactionResponse](t, raw)

	status, _ = f.call(t, http.MethodPost, "/api/transactions/"+orig.ID+"/reverse", pkgjwt.RoleBodeguero, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var n int
	require.NoError(t, f.store.DB().QueryRow("SELECT COUNT(*) FROM transactions").Scan(&n))
	assert.Equal(t, 1, n)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware: token ausente, malformado, sin rol o expirado
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_RejectsOnLedgerRoutes(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, pkgjwt.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	noRole, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, testExpMin)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secret-completamente-distinto", testUserID, pkgjwt.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto", "Basic abc", "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"firmado con otro secret", "Bearer " + foreign, "INVALID_TOKEN"},
		{"token sin rol", "Bearer " + noRole, "MISSING_ROLE"},
	}
	f := newAPI(t, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := f.callWithHeader(t, http.MethodPost, "/api/transactions/no-existe/reverse", tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

// El usuario del token queda registrado como autor de la transacción.
func TestAuthMiddleware_UserIDReachesLedger(t *testing.T) {
	f := newAPI(t, nil)
	status, raw := f.call(t, http.MethodPost, "/api/transactions", pkgjwt.RoleVendedor, receiptBody(1))
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, testUserID, decode[dto.TransactionResponse](t, raw).UserID)
}
