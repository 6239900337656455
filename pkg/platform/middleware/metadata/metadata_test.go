package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIPFromRequest(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		trusted TrustedProxies
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "untrusted peer ignores forwarded for", headers: map[string]string{"X-Forwarded-For": "203.0.113.7"}, remote: "198.51.100.20:1234", want: "198.51.100.20"},
		{name: "untrusted peer ignores real ip", headers: map[string]string{"X-Real-IP": "203.0.113.7"}, remote: "198.51.100.20:1234", want: "198.51.100.20"},
		{name: "no trusted list ignores headers", headers: map[string]string{"X-Forwarded-For": "203.0.113.7"}, remote: "10.0.0.2:1234", want: "10.0.0.2"},
		{name: "trusted peer uses right-most untrusted hop", trusted: trusted, headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.7, 10.0.0.1"}, remote: "10.0.0.2:1234", want: "203.0.113.7"},
		{name: "trusted peer single hop", trusted: trusted, headers: map[string]string{"X-Forwarded-For": "203.0.113.7"}, remote: "192.0.2.1:1234", want: "203.0.113.7"},
		{name: "all hops trusted yields left-most", trusted: trusted, headers: map[string]string{"X-Forwarded-For": "10.1.1.1, 10.0.0.1"}, remote: "10.0.0.2:1234", want: "10.1.1.1"},
		{name: "garbage hop stops the walk", trusted: trusted, headers: map[string]string{"X-Forwarded-For": "not-an-ip, 10.0.0.1"}, remote: "10.0.0.2:1234", want: "10.0.0.1"},
		{name: "trusted peer real ip header", trusted: trusted, headers: map[string]string{"X-Real-IP": " 198.51.100.4 "}, remote: "10.0.0.2:1234", want: "198.51.100.4"},
		{name: "ipv4 remote addr", remote: "127.0.0.1:5555", want: "127.0.0.1"},
		{name: "ipv6 remote addr", remote: "[::1]:5555", want: "::1"},
		{name: "empty remote addr", remote: "", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r, tt.trusted))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "", "::1", "192.0.2.7"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.True(t, got.contains("10.200.0.1"))
	assert.True(t, got.contains("::1"))
	assert.True(t, got.contains("::ffff:192.0.2.7"))
	assert.False(t, got.contains("192.0.2.8"))

	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestClientMetadataMiddleware(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata(nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotIP = GetClientIP(r.Context())
		gotUA = GetUserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:443"
	r.Header.Set("User-Agent", "board-test/1.0")
	r.Header.Set("X-Forwarded-For", "203.0.113.99")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.10", gotIP)
	assert.Equal(t, "board-test/1.0", gotUA)
}

func TestDeviceFromUserAgent(t *testing.T) {
	d := DeviceFromUserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Equal(t, "Chrome", d.Browser)
	assert.Contains(t, d.OS, "Linux")
	assert.False(t, d.Mobile)

	assert.Equal(t, Device{}, DeviceFromUserAgent(""))
}
