package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func clientIPHandler(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = ClientIP(r)
	})
}

func requestFrom(remoteAddr string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/greetings?category=Birthday_Mom", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestProxyHeaders_UntrustedPeerKeepsRemoteAddr(t *testing.T) {
	var got string
	h := ProxyHeaders(nil, zerolog.Nop())(clientIPHandler(&got))

	h.ServeHTTP(httptest.NewRecorder(), requestFrom("203.0.113.7:5555", map[string]string{
		"X-Forwarded-For": "198.51.100.1",
		"X-Real-IP":       "198.51.100.2",
	}))
	require.Equal(t, "203.0.113.7", got)
}

func TestProxyHeaders_TrustedPeer(t *testing.T) {
	var got string
	h := ProxyHeaders([]string{"10.0.0.0/8", "192.0.2.1"}, zerolog.Nop())(clientIPHandler(&got))

	cases := []struct {
		name    string
		peer    string
		headers map[string]string
		want    string
	}{
		{"single hop", "10.0.0.5:80", map[string]string{"X-Forwarded-For": "198.51.100.7"}, "198.51.100.7"},
		{"nearest untrusted hop wins", "10.0.0.5:80", map[string]string{"X-Forwarded-For": "1.1.1.1, 198.51.100.7, 10.0.0.9"}, "198.51.100.7"},
		{"single trusted IP", "192.0.2.1:80", map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"garbage header ignored", "10.0.0.5:80", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.5"},
		{"no headers", "10.0.0.5:80", nil, "10.0.0.5"},
		{"peer outside trusted range", "192.0.2.2:80", map[string]string{"X-Forwarded-For": "198.51.100.7"}, "192.0.2.2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h.ServeHTTP(httptest.NewRecorder(), requestFrom(tc.peer, tc.headers))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestLimit_RotatingForwardedForSharesOneWindow(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{Requests: 5, Window: time.Minute})
	h := ProxyHeaders(nil, zerolog.Nop())(rl.Limit("list")(okHandler))

	codes := map[int]int{}
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("203.0.113.7:5555", map[string]string{
			"X-Forwarded-For": fmt.Sprintf("198.51.%d.%d", i/250, i%250+1),
		}))
		codes[rec.Code]++
	}
	require.Equal(t, map[int]int{http.StatusOK: 5, http.StatusTooManyRequests: 45}, codes)
}

func TestLimit_ForwardedHeaderCannotClaimWhitelist(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{
		Requests:  1,
		Window:    time.Minute,
		Whitelist: []string{"10.9.9.9"},
	})
	h := ProxyHeaders(nil, zerolog.Nop())(rl.Limit("list")(okHandler))

	spoofed := map[string]string{"X-Forwarded-For": "10.9.9.9", "X-Real-IP": "10.9.9.9"}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("203.0.113.7:5555", spoofed))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("203.0.113.7:5555", spoofed))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLimit_TrustedProxyClientsGetOwnWindows(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{Requests: 1, Window: time.Minute})
	h := ProxyHeaders([]string{"10.0.0.1"}, zerolog.Nop())(rl.Limit("list")(okHandler))

	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1:443", map[string]string{"X-Forwarded-For": client}))
		require.Equal(t, http.StatusOK, rec.Code, client)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("10.0.0.1:443", map[string]string{"X-Forwarded-For": "198.51.100.1"}))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:443"
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	require.Equal(t, "203.0.113.9", ClientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	require.Equal(t, "2001:db8::1", ClientIP(req))

	req.RemoteAddr = "198.51.100.4"
	require.Equal(t, "198.51.100.4", ClientIP(req))
}
