package packet

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDNSQuery constructs a minimal single-question DNS query packet for
// "example.com" type A class IN, by hand, the same shape
// original_source/network/src/capture/mod.rs's pnet-based test fixtures
// build up field by field.
func buildDNSQuery(id uint16) []byte {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint16(buf[0:], id)
	binary.BigEndian.PutUint16(buf[2:], 0x0100) // RD=1
	binary.BigEndian.PutUint16(buf[4:], 1)      // qdcount
	binary.BigEndian.PutUint16(buf[6:], 0)
	binary.BigEndian.PutUint16(buf[8:], 0)
	binary.BigEndian.PutUint16(buf[10:], 0)

	for _, label := range []string{"example", "com"} {
		buf = append(buf, byte(len(label)))
		buf = append(buf, []byte(label)...)
	}
	buf = append(buf, 0x00)

	qtype := make([]byte, 2)
	binary.BigEndian.PutUint16(qtype, 1) // A
	buf = append(buf, qtype...)
	qclass := make([]byte, 2)
	binary.BigEndian.PutUint16(qclass, 1) // IN
	buf = append(buf, qclass...)

	return buf
}

func TestParseDNSQuery(t *testing.T) {
	payload := buildDNSQuery(0x1234)
	dns, err := parseDNS(payload)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x1234), dns.Header.ID)
	assert.False(t, dns.Header.IsResponse)
	assert.True(t, dns.Header.IsRecursionDesirable)
	assert.Equal(t, uint16(1), dns.Header.QueryCount)
	require.NotNil(t, dns.Question)
	assert.Equal(t, "A", dns.Question.QType)
	assert.Equal(t, "IN", dns.Question.QClass)
	assert.Equal(t, []byte("\x07example\x03com\x00"), dns.Question.QName)
	assert.Empty(t, dns.Records)
}

func TestParseDNSTruncatedHeaderErrors(t *testing.T) {
	_, err := parseDNS([]byte{0x12, 0x34})
	assert.Error(t, err)
}

func TestParseTLSClientHelloHeader(t *testing.T) {
	payload := []byte{0x16, 0x03, 0x01, 0x00, 0x2a, 0xff, 0xff}
	tls, err := parseTLS(payload)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x16), tls.ContentType)
	assert.Equal(t, uint16(0x0301), tls.Version)
	assert.Equal(t, uint16(0x002a), tls.Length)
}

func TestParseTLSShortHeaderErrors(t *testing.T) {
	_, err := parseTLS([]byte{0x16, 0x03})
	assert.Error(t, err)
}

func TestParseHTTPRequest(t *testing.T) {
	raw := "GET /index.html HTTP/1.1\r\nHost: example.com\r\nUser-Agent: curl\r\n\r\nbody-bytes"
	h, err := parseHTTP([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "GET", h.Method)
	assert.Equal(t, "/index.html", h.URI)
	assert.Equal(t, "HTTP/1.1", h.Version)
	assert.Equal(t, "example.com", h.Headers["Host"])
	assert.Equal(t, "body-bytes", string(h.Body))
}

func TestParseHTTPResponse(t *testing.T) {
	raw := "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"
	h, err := parseHTTP([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, uint16(404), h.StatusCode)
	assert.Equal(t, "Not Found", h.StatusText)
}

func TestParseHTTPMissingBlankLineErrors(t *testing.T) {
	raw := "GET /index.html HTTP/1.1\r\nHost: example.com\r\n"
	_, err := parseHTTP([]byte(raw))
	assert.Error(t, err)
}

func TestLooksLikeHTTPRecognizesVerbsAndStatusLine(t *testing.T) {
	assert.True(t, looksLikeHTTP([]byte("POST /a HTTP/1.0\r\n\r\n")))
	assert.True(t, looksLikeHTTP([]byte("HTTP/1.1 200 OK\r\n\r\n")))
	assert.False(t, looksLikeHTTP([]byte{0x16, 0x03, 0x01}))
}
