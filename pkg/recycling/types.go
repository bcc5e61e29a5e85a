package recycling

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Limits applied by the match engine
const (
	MaxSuggestions            = 8
	KeywordExpansionThreshold = 5
)

// Well-known locations
const (
	DefaultDetectEndpoint = "http://localhost:5000/predict"
	DatasetPath           = "/recycling-data.json"
)

// Route sources
const (
	SourceSuggestion = "suggestion"
	SourceFallback   = "fallback"
	SourceNone       = "none"
)

// Item is a known recyclable item and the category page it belongs to
type Item struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// KeywordGroup is one category's keyword expansion list
type KeywordGroup struct {
	Category string
	Keywords []string
}

// Dataset is the static recycling data document.
// It is loaded once and must not be mutated afterwards.
type Dataset struct {
	Items    []Item              `json:"items"`
	Keywords map[string][]string `json:"keywords"`

	// order holds keyword categories in document order
	order []string
}

// NewDataset builds a dataset with an explicit keyword category order
func NewDataset(items []Item, groups []KeywordGroup) *Dataset {
	ds := &Dataset{
		Items:    items,
		Keywords: make(map[string][]string, len(groups)),
	}
	for _, g := range groups {
		if _, seen := ds.Keywords[g.Category]; !seen {
			ds.order = append(ds.order, g.Category)
		}
		ds.Keywords[g.Category] = g.Keywords
	}
	return ds
}

// Categories returns the keyword categories in iteration order.
// Datasets decoded from JSON keep the document order; literal datasets
// without a recorded order fall back to sorted keys.
func (d *Dataset) Categories() []string {
	if len(d.order) == len(d.Keywords) {
		return d.order
	}
	keys := make([]string, 0, len(d.Keywords))
	for k := range d.Keywords {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON decodes the dataset and records the keyword object's key order
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var raw struct {
		Items    []Item          `json:"items"`
		Keywords json.RawMessage `json:"keywords"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Items = raw.Items
	d.Keywords = make(map[string][]string)
	d.order = nil

	if len(raw.Keywords) == 0 || string(raw.Keywords) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Keywords))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read keywords: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("keywords must be an object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read keyword category: %w", err)
		}
		category, ok := tok.(string)
		if !ok {
			return fmt.Errorf("invalid keyword category %v", tok)
		}

		var keywords []string
		if err := dec.Decode(&keywords); err != nil {
			return fmt.Errorf("invalid keywords for category %q: %w", category, err)
		}

		if _, seen := d.Keywords[category]; !seen {
			d.order = append(d.order, category)
		}
		d.Keywords[category] = keywords
	}

	return nil
}

// MarshalJSON encodes the dataset with keyword categories in iteration order
func (d Dataset) MarshalJSON() ([]byte, error) {
	items := d.Items
	if items == nil {
		items = []Item{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"items":`)
	buf.Write(itemsJSON)
	buf.WriteString(`,"keywords":{`)
	for i, category := range d.Categories() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(category)
		if err != nil {
			return nil, err
		}
		keywords := d.Keywords[category]
		if keywords == nil {
			keywords = []string{}
		}
		val, err := json.Marshal(keywords)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// Suggestion is one entry of the search dropdown
type Suggestion struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	IsKeywordMatch bool   `json:"isKeywordMatch"`
}

// DetectionResult is the prediction service's answer for one image
type DetectionResult struct {
	Object       string `json:"object"`
	MainCategory string `json:"mainCategory"`
	SubCategory  string `json:"subCategory"`
}

// Route returns the recycling tips page for the detection.
// The material (sub category) wins over the bin type.
func (r DetectionResult) Route() string {
	if r.SubCategory != "" {
		return "/" + r.SubCategory
	}
	return "/" + r.MainCategory
}

// UploadedImage is an image selected for detection
type UploadedImage struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	StorageKey  string `json:"storage_key"`
	Preview     string `json:"preview"`
}

// Route is a navigation decision for a submitted query
type Route struct {
	Path     string `json:"path,omitempty"`
	Category string `json:"category,omitempty"`
	Query    string `json:"query"`
	NotFound bool   `json:"not_found"`
	Source   string `json:"source"`
}

// ImageState is an uploaded image together with its detection state
type ImageState struct {
	UploadedImage
	PreviewURL string           `json:"preview_url"`
	Detecting  bool             `json:"detecting"`
	CanDetect  bool             `json:"can_detect"`
	Result     *DetectionResult `json:"result,omitempty"`
	Route      string           `json:"route,omitempty"`
}

// SessionView is a render-ready snapshot of an upload session
type SessionView struct {
	SessionID string       `json:"session_id"`
	Images    []ImageState `json:"images"`
	Selected  string       `json:"selected,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// SearchResponse is returned by the search endpoint
type SearchResponse struct {
	Query       string       `json:"query"`
	Suggestions []Suggestion `json:"suggestions"`
}

// SubmitRequest is the body of the submit endpoint
type SubmitRequest struct {
	Query string `json:"query"`
}

// DetectResponse is returned after a successful detection
type DetectResponse struct {
	ImageID string          `json:"image_id"`
	Result  DetectionResult `json:"result"`
	Route   string          `json:"route"`
}
