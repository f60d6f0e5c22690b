package pipeline

import (
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/habitable/pkg/models"
)

// Result is the outcome of one run. Matches keeps arrival order.
type Result struct {
	Matches      []*models.Record
	RecordsRead  int
	DecodeErrors int
}

// Names projects kepler_name from every match, in order. The slice is never
// nil so that an empty result renders as [].
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		names = append(names, m.String(models.FieldKeplerName))
	}
	return names
}

// WriteTo writes the names as a single JSON array followed by a newline.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	data, err := gojson.Marshal(r.Names())
	if err != nil {
		return 0, fmt.Errorf("failed to encode listing: %w", err)
	}
	data = append(data, '\n')
	n, err := w.Write(data)
	return int64(n), err
}
