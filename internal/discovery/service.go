package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// TXT record keys
const (
	TXTVersion  = "version"
	TXTProvider = "provider"
	TXTPath     = "path"
)

// Service is an assistant server found on the network.
type Service struct {
	// Instance is the advertised instance name (e.g., "kisan on farmhouse")
	Instance string

	// Hostname is the mDNS hostname (e.g., "farmhouse.local.")
	Hostname string

	// IP is the address to connect to, IPv4 when available
	IP string

	Port int

	// Metadata holds the TXT record fields
	Metadata map[string]string

	DiscoveredAt time.Time
}

// String returns a human-readable description
func (s *Service) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Instance, s.Hostname, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)))
}

// BaseURL returns the HTTP base URL of the server
func (s *Service) BaseURL() string {
	return "http://" + net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// GetMetadata returns a TXT field, or "" when absent
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}

// Provider is the assistant provider advertised by the server.
func (s *Service) Provider() string {
	return s.GetMetadata(TXTProvider)
}

// Version is the advertised server version.
func (s *Service) Version() string {
	return s.GetMetadata(TXTVersion)
}
