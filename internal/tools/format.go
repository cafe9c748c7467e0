package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/resource"
)

// formatPower renders watts as "1,500 W (1.50 kW)".
func formatPower(watts float64) string {
	return fmt.Sprintf("%s W (%.2f kW)", humanize.Comma(int64(math.Round(watts))), watts/1000)
}

// formatHVAC renders a heat load as "5,115 BTU/hr (0.43 tons)".
func formatHVAC(agg *resource.Aggregator, btu float64) string {
	return fmt.Sprintf("%s BTU/hr (%.2f tons)", humanize.Comma(int64(math.Round(btu))), agg.Tons(btu))
}

// formatSpace renders rack space as "2U / 42U (4.8%)".
func formatSpace(used, total int) string {
	return fmt.Sprintf("%dU / %dU (%.1f%%)", used, total, resource.Percent(float64(used), float64(total)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// errorText turns a handler error into the message returned to the caller.
func errorText(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		return appErr.Error()
	}
	return "Error: " + err.Error()
}
