package license

import (
	"fmt"
	"net"
	"strings"
)

// virtualPrefixes match interface names created by container runtimes,
// hypervisors, and tunnels. Those MACs are not stable device identity.
var virtualPrefixes = []string{
	"docker", "veth", "br-", "virbr", "vmnet", "vboxnet",
	"utun", "tun", "tap", "awdl", "llw", "bridge",
}

// DeviceID returns the MAC address of the primary network interface,
// uppercase and colon-separated.
func DeviceID() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("enumerate network interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		if isVirtualInterface(iface.Name) {
			continue
		}
		return FormatMAC(iface.HardwareAddr.String()), nil
	}
	return "", fmt.Errorf("no usable network interface found")
}

func isVirtualInterface(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// FormatMAC canonicalizes a MAC address to uppercase colon-separated form.
func FormatMAC(mac string) string {
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
}

// SameDevice compares two MAC addresses ignoring case and separator style.
func SameDevice(a, b string) bool {
	return FormatMAC(a) == FormatMAC(b)
}
