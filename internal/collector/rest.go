package collector

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"FuyouSentinel/internal/model"
)

// RESTSource implements Source against the dashboard's REST backend.
type RESTSource struct {
	BaseURL string
	APIKey  string
	UserID  string
	Client  *http.Client
}

// NewRESTSource creates a new source with optional proxy support.
func NewRESTSource(baseURL, apiKey, userID, proxyURL string) *RESTSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTSource{
		BaseURL: baseURL,
		APIKey:  apiKey,
		UserID:  userID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *RESTSource) Name() string { return "rest" }

// restShift is the JSON shape returned by the shifts endpoint. Older
// backends send the date as start_time.
type restShift struct {
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	WorkplaceID string  `json:"workplaceId"`
	Earnings    float64 `json:"earnings"`
	Hours       float64 `json:"hours"`
}

func (f *RESTSource) FetchShifts(from, to time.Time) ([]model.Shift, error) {
	q := url.Values{}
	q.Set("user_id", f.UserID)
	q.Set("from", from.Format(model.DateLayout))
	q.Set("to", to.Format(model.DateLayout))
	endpoint := fmt.Sprintf("%s/api/shifts?%s", f.BaseURL, q.Encode())

	var raw []restShift
	if err := f.getJSON(endpoint, &raw); err != nil {
		return nil, fmt.Errorf("fetch shifts: %w", err)
	}

	shifts := make([]model.Shift, 0, len(raw))
	for _, r := range raw {
		date := r.Date
		if date == "" {
			date = r.StartTime
		}
		shifts = append(shifts, model.Shift{
			Date:        date,
			WorkplaceID: r.WorkplaceID,
			Earnings:    r.Earnings,
			Hours:       r.Hours,
		})
	}
	// Ensure chronological order
	sort.SliceStable(shifts, func(i, j int) bool { return shifts[i].Date < shifts[j].Date })
	return filterByDate(shifts, from, to), nil
}

func (f *RESTSource) FetchWorkplaces() ([]model.Workplace, error) {
	q := url.Values{}
	q.Set("user_id", f.UserID)
	endpoint := fmt.Sprintf("%s/api/workplaces?%s", f.BaseURL, q.Encode())

	var workplaces []model.Workplace
	if err := f.getJSON(endpoint, &workplaces); err != nil {
		return nil, fmt.Errorf("fetch workplaces: %w", err)
	}
	return workplaces, nil
}

func (f *RESTSource) getJSON(endpoint string, out interface{}) error {
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
