package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// Open opens the specified URL in the user's default browser.
func Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

// BookingURL returns the web page of a booking, or "" when webURL is unset.
func BookingURL(webURL, bookingID string) string {
	if webURL == "" || bookingID == "" {
		return ""
	}
	return strings.TrimRight(webURL, "/") + "/bookings/" + url.PathEscape(bookingID)
}
