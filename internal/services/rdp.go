package services

import "strings"

// RDPMime is the content type of a remote desktop connection profile.
const RDPMime = "application/x-rdp"

const rdpPort = "3389"

// RDPProfile renders the connection profile for ip. Username and domain
// are left blank so the client prompts for them.
func RDPProfile(ip string) string {
	lines := []string{
		"full address:s:" + ip + ":" + rdpPort,
		"audiocapturemode:i:0",
		"session bpp:i:32",
		"compression:i:1",
		"keyboardhook:i:2",
		"audiomode:i:0",
		"displayconnectionbar:i:1",
		"username:s:",
		"domain:s:",
	}
	return strings.Join(lines, "\n")
}

// RDPFileName is the download name for ip's profile.
func RDPFileName(ip string) string {
	// Colons in IPv6 literals are not valid in Windows file names.
	return "remote-" + strings.ReplaceAll(ip, ":", "-") + ".rdp"
}
