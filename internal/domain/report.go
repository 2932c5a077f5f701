package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Report is a review item as served by the external reports API.
// The server never inspects it; the explorer decodes the fields it renders.
type Report struct {
	ID       ReportID `json:"id"`
	Title    string   `json:"title,omitempty"`
	Score    string   `json:"score,omitempty"`
	URL      string   `json:"url,omitempty"`
	VideoURL string   `json:"video_url,omitempty"`
}

// Link returns the report's url, falling back to its video url.
func (r Report) Link() string {
	if r.URL != "" {
		return r.URL
	}
	return r.VideoURL
}

// ReportID holds an upstream id, which may arrive as a JSON string or number.
type ReportID string

func (id *ReportID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ReportID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("report id: %w", err)
	}
	*id = ReportID(n.String())
	return nil
}

func (id ReportID) String() string {
	return string(id)
}
