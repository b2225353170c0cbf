package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/curvsim/internal/sim"
)

// Row is the flat per-cycle record written to cycles.csv.
type Row struct {
	Time             float64 `json:"t"`
	DesiredCurvature float64 `json:"desired"`
	Curvature        float64 `json:"curvature"`
	Output           float64 `json:"output"`
	Error            float64 `json:"error"`
	Integral         float64 `json:"integral"`
	SteeringAngleDeg float64 `json:"steer_deg"`
	YawRate          float64 `json:"yaw_rate"`
	LateralOffset    float64 `json:"lateral_offset"`
	Speed            float64 `json:"speed"`
	Active           bool    `json:"active"`
	Saturated        bool    `json:"saturated"`
	Frozen           bool    `json:"frozen"`
}

var header = []string{
	"time", "desired", "curvature", "output", "error", "integral",
	"steer_deg", "yaw_rate", "lateral_offset", "speed",
	"active", "saturated", "frozen",
}

func RowFromCycle(c sim.Cycle) Row {
	return Row{
		Time:             c.Time,
		DesiredCurvature: c.Setpoint.DesiredCurvature,
		Curvature:        c.Curvature,
		Output:           c.Output.Curvature,
		Error:            c.Output.State.Error,
		Integral:         c.Integral,
		SteeringAngleDeg: c.SteeringAngleDeg,
		YawRate:          c.YawRate,
		LateralOffset:    c.LateralOffset,
		Speed:            c.Setpoint.Speed,
		Active:           c.Output.State.Active,
		Saturated:        c.Output.Saturated,
		Frozen:           c.Frozen,
	}
}

func RowsFromCycles(cycles []sim.Cycle) []Row {
	rows := make([]Row, len(cycles))
	for i, c := range cycles {
		rows[i] = RowFromCycle(c)
	}
	return rows
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func WriteCSV(w io.Writer, cycles []sim.Cycle) error {
	return WriteRows(w, RowsFromCycles(cycles))
}

func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			fmtFloat(r.Time), fmtFloat(r.DesiredCurvature), fmtFloat(r.Curvature),
			fmtFloat(r.Output), fmtFloat(r.Error), fmtFloat(r.Integral),
			fmtFloat(r.SteeringAngleDeg), fmtFloat(r.YawRate), fmtFloat(r.LateralOffset),
			fmtFloat(r.Speed),
			strconv.FormatBool(r.Active), strconv.FormatBool(r.Saturated), strconv.FormatBool(r.Frozen),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: cycles: %w", err)
	}
	if len(records) < 2 {
		return []Row{}, nil
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		var f [10]float64
		for j := range f {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: cycles line %d col %s: %w", i+2, header[j], err)
			}
			f[j] = v
		}
		var b [3]bool
		for j := range b {
			v, err := strconv.ParseBool(rec[10+j])
			if err != nil {
				return nil, fmt.Errorf("storage: cycles line %d col %s: %w", i+2, header[10+j], err)
			}
			b[j] = v
		}
		rows = append(rows, Row{
			Time: f[0], DesiredCurvature: f[1], Curvature: f[2], Output: f[3],
			Error: f[4], Integral: f[5], SteeringAngleDeg: f[6], YawRate: f[7],
			LateralOffset: f[8], Speed: f[9],
			Active: b[0], Saturated: b[1], Frozen: b[2],
		})
	}
	return rows, nil
}
