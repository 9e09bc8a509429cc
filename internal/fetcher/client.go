package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/campwatch/campwatch/internal"
)

const DefaultBaseURL = "https://www.recreation.gov"

// Rotated per request so sustained runs look like ordinary browser traffic.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// FetchError is a transport-level failure for one facility.
type FetchError struct {
	FacilityID string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("facility %s: HTTP %d", e.FacilityID, e.StatusCode)
	}
	return fmt.Sprintf("facility %s: %v", e.FacilityID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client retrieves monthly availability documents. Redirects are followed
// transparently (the default http.Client behavior) and every request
// carries the configured timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// MonthlyAvailability GETs one facility's availability document for one
// month and returns the raw JSON body. A non-2xx status or a body that is
// not valid JSON is a *FetchError.
func (c *Client) MonthlyAvailability(ctx context.Context, facilityID string, month internal.Month) ([]byte, error) {
	u := fmt.Sprintf(
		"%s/api/camps/availability/campground/%s/month?start_date=%s",
		c.baseURL,
		facilityID,
		url.QueryEscape(month.Start()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{FacilityID: facilityID, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{FacilityID: facilityID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{FacilityID: facilityID, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{FacilityID: facilityID, Err: err}
	}

	if len(body) == 0 || !json.Valid(body) {
		return nil, &FetchError{
			FacilityID: facilityID,
			Err:        fmt.Errorf("response is not valid JSON (%d bytes)", len(body)),
		}
	}

	return body, nil
}
