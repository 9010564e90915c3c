package discovery

import (
	"net"
	"reflect"
	"testing"

	"github.com/grandcat/zeroconf"
)

func entry(instance, host string, port int, v4, v6 []net.IP, txt ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.AddrIPv4 = v4
	e.AddrIPv6 = v6
	e.Text = txt
	return e
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name:     "IPv4 server",
			entry:    entry("kisan on farmhouse", "farmhouse.local.", 8080, []net.IP{net.ParseIP("192.168.1.20")}, nil, "provider=stub"),
			wantIP:   "192.168.1.20",
			wantPort: 8080,
		},
		{
			name:     "prefers IPv4",
			entry:    entry("kisan", "a.local.", 9000, []net.IP{net.ParseIP("10.0.0.5")}, []net.IP{net.ParseIP("fe80::1")}),
			wantIP:   "10.0.0.5",
			wantPort: 9000,
		},
		{
			name:     "IPv6 only",
			entry:    entry("kisan", "b.local.", 8080, nil, []net.IP{net.ParseIP("fe80::2")}),
			wantIP:   "fe80::2",
			wantPort: 8080,
		},
		{
			name:     "missing port uses default",
			entry:    entry("kisan", "c.local.", 0, []net.IP{net.ParseIP("172.16.0.1")}, nil),
			wantIP:   "172.16.0.1",
			wantPort: DefaultPort,
		},
		{
			name:    "no address",
			entry:   entry("kisan", "d.local.", 8080, nil, nil),
			wantNil: true,
		},
		{
			name:    "no instance",
			entry:   entry("", "e.local.", 8080, []net.IP{net.ParseIP("10.0.0.9")}, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if svc != nil {
					t.Fatalf("parseServiceEntry() = %v, want nil", svc)
				}
				return
			}
			if svc == nil {
				t.Fatal("parseServiceEntry() = nil")
			}
			if svc.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", svc.IP, tt.wantIP)
			}
			if svc.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", svc.Port, tt.wantPort)
			}
			if svc.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt not set")
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"version=1.2.0", "provider=gemini", "flag", "=orphan", "path=/api/ask=x"})
	want := map[string]string{
		"version":  "1.2.0",
		"provider": "gemini",
		"flag":     "",
		"path":     "/api/ask=x",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseTXT() = %v, want %v", got, want)
	}
}

func TestTXTRecords(t *testing.T) {
	got := TXTRecords(map[string]string{TXTVersion: "dev", TXTProvider: "stub", TXTPath: "/api/ask"})
	want := []string{"path=/api/ask", "provider=stub", "version=dev"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TXTRecords() = %v, want %v", got, want)
	}

	// Round trip through the parser.
	parsed := parseTXT(got)
	if parsed[TXTProvider] != "stub" {
		t.Errorf("provider = %q, want stub", parsed[TXTProvider])
	}
}

func TestService(t *testing.T) {
	svc := &Service{
		Instance: "kisan on farmhouse",
		Hostname: "farmhouse.local.",
		IP:       "192.168.1.20",
		Port:     8080,
		Metadata: map[string]string{TXTProvider: "gemini", TXTVersion: "1.0.0"},
	}

	if got, want := svc.BaseURL(), "http://192.168.1.20:8080"; got != want {
		t.Errorf("BaseURL() = %q, want %q", got, want)
	}
	if got, want := svc.String(), "kisan on farmhouse (farmhouse.local.) at 192.168.1.20:8080"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if svc.Provider() != "gemini" || svc.Version() != "1.0.0" {
		t.Errorf("Provider/Version = %q/%q", svc.Provider(), svc.Version())
	}

	v6 := &Service{IP: "fe80::2", Port: 8080}
	if got, want := v6.BaseURL(), "http://[fe80::2]:8080"; got != want {
		t.Errorf("BaseURL() = %q, want %q", got, want)
	}

	var empty Service
	if empty.GetMetadata("x") != "" {
		t.Error("GetMetadata on nil map should be empty")
	}
}

func TestNewScannerDefaults(t *testing.T) {
	if s := NewScanner(); s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
}

func TestAdvertisementShutdownNil(t *testing.T) {
	var a *Advertisement
	a.Shutdown()
	(&Advertisement{}).Shutdown()
}
