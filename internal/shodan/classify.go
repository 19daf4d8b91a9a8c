package shodan

import (
	"fmt"
	"strings"
)

// mjpegPaths are endpoint paths commonly served by MJPEG camera
// firmware, in preference order. Scanning the banner for one of these
// is a best-effort guess, not a guarantee of a working endpoint.
var mjpegPaths = []string{
	"/mjpeg",
	"/video.mjpg",
	"/video.cgi",
	"/snapshot.jpg",
	"/image.jpg",
	"/cam.jpg",
}

// classifyMatches converts raw search matches into typed webcam records.
func classifyMatches(resp *SearchResponse) []RemoteWebcam {
	webcams := make([]RemoteWebcam, 0, len(resp.Matches))
	for i := range resp.Matches {
		match := &resp.Matches[i]
		access := classifyAccess(match)
		webcams = append(webcams, RemoteWebcam{
			IP:         match.IP,
			Port:       match.Port,
			URL:        webcamURL(match, access),
			Hostname:   match.Hostname,
			Location:   match.Location,
			Org:        match.Org,
			Product:    match.Product,
			LastSeen:   match.Timestamp,
			AccessType: access,
		})
	}
	return webcams
}

// classifyAccess infers the likely access protocol from banner text and
// port. MJPEG markers win over RTSP markers, which win over the
// well-known HTTP ports.
func classifyAccess(match *Result) AccessType {
	banner := strings.ToLower(match.Data)
	switch {
	case strings.Contains(banner, "mjpeg") || strings.Contains(banner, "multipart/x-mixed-replace"):
		return AccessMJPEG
	case match.Port == 554 || strings.Contains(banner, "rtsp"):
		return AccessRTSP
	case match.Port == 80 || match.Port == 8080 || match.Port == 8081:
		return AccessHTTP
	default:
		return AccessUnknown
	}
}

// webcamURL builds the canonical access URL for a classified match. For
// MJPEG devices the banner is scanned for a known endpoint path, with
// /mjpeg as the fallback guess.
func webcamURL(match *Result, access AccessType) string {
	switch access {
	case AccessMJPEG:
		for _, path := range mjpegPaths {
			if strings.Contains(match.Data, path) {
				return fmt.Sprintf("http://%s:%d%s", match.IP, match.Port, path)
			}
		}
		return fmt.Sprintf("http://%s:%d/mjpeg", match.IP, match.Port)
	case AccessRTSP:
		return fmt.Sprintf("rtsp://%s:%d/", match.IP, match.Port)
	default:
		return fmt.Sprintf("http://%s:%d/", match.IP, match.Port)
	}
}
