// Package discovery finds kisan assistant servers on the local network and
// advertises them.
//
// A kisan-server registers itself as a "_kisan._tcp" service over multicast
// DNS. The TXT record carries the server version and the assistant provider
// it fronts, so "kisan scan" can show which backend each server uses without
// connecting to it.
//
// # Usage Example
//
//	services, err := discovery.Scan(ctx, 3*time.Second)
//	if err != nil {
//	    return err
//	}
//	for _, s := range services {
//	    fmt.Printf("%s at %s (%s)\n", s.Instance, s.BaseURL(), s.Provider())
//	}
//
// # Network Requirements
//
//   - Multicast must be supported on the network interface
//   - Servers must be on the same network segment
//   - Firewalls must allow mDNS (UDP port 5353)
package discovery
