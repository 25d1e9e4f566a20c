package metricsx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rksoft/eshop/pkg/jwtx"
	"github.com/rksoft/eshop/pkg/metricsx"
	"github.com/stretchr/testify/require"
)

type fixedVerifier struct{ err error }

func (f fixedVerifier) Verify(string) (jwtx.Claims, error) { return jwtx.Claims{}, f.err }

func TestInstrument(t *testing.T) {
	m := metricsx.New()

	h := m.Instrument("GET /livez")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/livez", nil))
	}

	body := scrape(t, m)
	require.Contains(t, body, `auth_http_requests_total{route="GET /livez",status="202"} 2`)
	require.Contains(t, body, `auth_http_in_flight_requests 0`)
}

func scrape(t *testing.T, m *metricsx.Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCounters(t *testing.T) {
	m := metricsx.New()

	m.ObserveLogin("success")
	m.ObserveLogin("invalid_credentials")
	m.ObserveLogin("invalid_credentials")
	m.ObserveRegistration("success")

	_, _ = m.InstrumentVerifier(fixedVerifier{}).Verify("a")
	_, _ = m.InstrumentVerifier(fixedVerifier{err: jwtx.ErrExpired}).Verify("b")
	_, _ = m.InstrumentVerifier(fixedVerifier{err: jwtx.ErrIssuer}).Verify("c")
	_, err := m.InstrumentVerifier(fixedVerifier{err: jwtx.ErrInvalidSig}).Verify("d")
	require.ErrorIs(t, err, jwtx.ErrInvalidSig, "errors pass through unchanged")

	body := scrape(t, m)
	for _, line := range []string{
		`auth_logins_total{result="invalid_credentials"} 2`,
		`auth_logins_total{result="success"} 1`,
		`auth_registrations_total{result="success"} 1`,
		`auth_token_verifications_total{result="ok"} 1`,
		`auth_token_verifications_total{result="expired"} 1`,
		`auth_token_verifications_total{result="issuer_mismatch"} 1`,
		`auth_token_verifications_total{result="bad_signature"} 1`,
	} {
		require.Contains(t, body, line)
	}
}
