package shodan

// AccessType classifies how a discovered webcam is most likely
// reachable, inferred from banner text and port heuristics.
type AccessType string

const (
	AccessMJPEG   AccessType = "mjpeg"
	AccessRTSP    AccessType = "rtsp"
	AccessHTTP    AccessType = "http"
	AccessUnknown AccessType = "unknown"
)

// Location is the geographic metadata the provider attaches to a match.
type Location struct {
	CountryName string  `json:"country_name,omitempty"`
	City        string  `json:"city,omitempty"`
	RegionCode  string  `json:"region_code,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

// Result is one raw search match as returned by the provider. It is
// read-only input to classification.
type Result struct {
	IP        string    `json:"ip"`
	Port      int       `json:"port"`
	Hostname  string    `json:"hostname,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Org       string    `json:"org,omitempty"`
	Data      string    `json:"data"`
	Timestamp string    `json:"timestamp"`
	Transport string    `json:"transport"`
	Product   string    `json:"product,omitempty"`
}

// SearchResponse is the provider's paginated search envelope.
type SearchResponse struct {
	Matches []Result           `json:"matches"`
	Total   int64              `json:"total"`
	Facets  map[string][]Facet `json:"facets,omitempty"`
}

// Facet is one aggregation bucket in a search response.
type Facet struct {
	Count int64  `json:"count"`
	Value string `json:"value"`
}

// RemoteWebcam is a classified discovery hit with a canonical access
// URL. Instances live only for the duration of one search response and
// are never persisted.
type RemoteWebcam struct {
	IP         string     `json:"ip"`
	Port       int        `json:"port"`
	URL        string     `json:"url"`
	Hostname   string     `json:"hostname,omitempty"`
	Location   *Location  `json:"location,omitempty"`
	Org        string     `json:"org,omitempty"`
	Product    string     `json:"product,omitempty"`
	LastSeen   string     `json:"last_seen"`
	AccessType AccessType `json:"access_type"`
}
