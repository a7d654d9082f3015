package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Baseline and target periods.
const (
	BaselineStartYear = 1990
	BaselineEndYear   = 2020 // inclusive
	TargetYear        = 2022
)

// Bounds is a closed numeric range whose ends may be infinite.
// Infinite ends encode as the JSON strings "inf" and "-inf".
type Bounds [2]float64

func (b Bounds) MarshalJSON() ([]byte, error) {
	return []byte("[" + boundString(b[0]) + "," + boundString(b[1]) + "]"), nil
}

func (b *Bounds) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode bounds: %w", err)
	}
	for i, r := range raw {
		v, err := parseBound(r)
		if err != nil {
			return err
		}
		b[i] = v
	}
	return nil
}

func boundString(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return `"inf"`
	case math.IsInf(v, -1):
		return `"-inf"`
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

func parseBound(r json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(r, &s); err == nil {
		switch s {
		case "inf":
			return math.Inf(1), nil
		case "-inf":
			return math.Inf(-1), nil
		}
		return 0, fmt.Errorf("decode bounds: unknown bound %q", s)
	}
	var v float64
	if err := json.Unmarshal(r, &v); err != nil {
		return 0, fmt.Errorf("decode bounds: %w", err)
	}
	return v, nil
}

// BaselineFilter selects baseline years by MDR sea surface temperature.
type BaselineFilter struct {
	MDRSSTRange        Bounds `json:"mdr_sst_range"`
	MDRSSTClimatoYears [2]int `json:"mdr_sst_climato_yrs"`
}

// TargetFilter selects the MDRSSTN warmest target years when MDRSSTRange is "top".
type TargetFilter struct {
	MDRSSTRange string `json:"mdr_sst_range"`
	MDRSSTN     int    `json:"mdr_sst_n"`
}

// ColumnMapping names the YLT CSV columns the adjustment routine reads.
type ColumnMapping struct {
	Lat       string `json:"ylt_lat_col"`
	Lon       string `json:"ylt_lon_col"`
	EventID   string `json:"ylt_event_id_col"`
	Intensity string `json:"ylt_intensity_col"`
	TotalLoss string `json:"ylt_total_loss_col"`
	Sample    string `json:"ylt_sample_col"`
}

// Names lists the mapped column names in a stable order.
func (m ColumnMapping) Names() []string {
	return []string{m.EventID, m.Sample, m.Lat, m.Lon, m.Intensity, m.TotalLoss}
}

// AdjustmentParams is the parameter set forwarded to the adjustment routine.
// JSON field names match the routine's keyword arguments.
type AdjustmentParams struct {
	Scenario                     string         `json:"scenario"`
	BaselineYears                []int          `json:"baseline_yrs"`
	TargetYears                  int            `json:"target_yrs"`
	ForecastTiming               string         `json:"fct_timing"`
	SampleRange                  [2]int         `json:"ylt_sample_range"`
	BaselineFilter               BaselineFilter `json:"baseline_filter_kwargs"`
	TargetFilter                 TargetFilter   `json:"target_filter_kwargs"`
	Columns                      ColumnMapping  `json:"columns"`
	IntensityStyle               string         `json:"ylt_intensity_style"`
	TargetEnsembleAdjustmentMode string         `json:"target_ensemble_adjustment_var"`
}

// DefaultParams returns the fixed parameter set used for every request.
func DefaultParams() AdjustmentParams {
	years := make([]int, 0, BaselineEndYear-BaselineStartYear+1)
	for y := BaselineStartYear; y <= BaselineEndYear; y++ {
		years = append(years, y)
	}

	return AdjustmentParams{
		Scenario:       "FCT",
		BaselineYears:  years,
		TargetYears:    TargetYear,
		ForecastTiming: "may",
		SampleRange:    [2]int{1, 10000},
		BaselineFilter: BaselineFilter{
			MDRSSTRange:        Bounds{0, math.Inf(1)},
			MDRSSTClimatoYears: [2]int{BaselineStartYear, BaselineEndYear},
		},
		TargetFilter: TargetFilter{
			MDRSSTRange: "top",
			MDRSSTN:     10,
		},
		Columns: ColumnMapping{
			Lat:       "latitude",
			Lon:       "longitude",
			EventID:   "event_id",
			Intensity: "intensity",
			TotalLoss: "loss",
			Sample:    "year",
		},
		IntensityStyle:               "m/s",
		TargetEnsembleAdjustmentMode: "empirical",
	}
}
