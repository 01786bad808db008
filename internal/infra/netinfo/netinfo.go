// Package netinfo reports the address peers on the LAN should use to
// reach this host.
package netinfo

import "net"

// LocalIP returns the host's outbound IPv4 address. It opens a UDP
// socket toward a public address, which selects the default route's
// interface without ever sending a packet. Falls back to loopback on
// hosts with no route.
func LocalIP() string {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return "127.0.0.1"
	}
	return addr.IP.String()
}

// AdvertiseURL builds the http base URL shown to peers for a given
// listen address. A listen host of "", "0.0.0.0", or "::" is replaced
// with the outbound LAN address.
func AdvertiseURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		host, port = "", "56321"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = LocalIP()
	}
	return "http://" + net.JoinHostPort(host, port)
}
