package netinfo

import (
	"net"
	"strings"
	"testing"
)

func TestLocalIP_ReturnsParsableAddress(t *testing.T) {
	ip := LocalIP()
	if net.ParseIP(ip) == nil {
		t.Fatalf("LocalIP() = %q, not a valid IP", ip)
	}
}

func TestAdvertiseURL(t *testing.T) {
	tests := []struct {
		name   string
		listen string
	}{
		{"wildcard", ":56321"},
		{"ipv4 any", "0.0.0.0:56321"},
		{"explicit host", "192.168.1.7:56321"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := AdvertiseURL(tt.listen)
			if !strings.HasPrefix(url, "http://") || !strings.HasSuffix(url, ":56321") {
				t.Errorf("AdvertiseURL(%q) = %q", tt.listen, url)
			}
			if strings.Contains(url, "0.0.0.0") || strings.Contains(url, "http://:") {
				t.Errorf("wildcard host leaked into %q", url)
			}
		})
	}
}

func TestAdvertiseURL_ExplicitHostPreserved(t *testing.T) {
	if got := AdvertiseURL("192.168.1.7:9000"); got != "http://192.168.1.7:9000" {
		t.Errorf("AdvertiseURL = %q", got)
	}
}
