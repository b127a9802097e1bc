package batch

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/delivery-cli/internal/delivery"
	"github.com/sells-group/delivery-cli/internal/geo"
)

// Row is a checked point.
type Row struct {
	Point
	Result delivery.Result
	Err    error
}

// Summary counts the outcomes of a run.
type Summary struct {
	Total       int `json:"total"`
	Deliverable int `json:"deliverable"`
	InCity      int `json:"in_city"`
	Failed      int `json:"failed"`
}

// Check evaluates every point with the evaluator's batch checker.
func Check(ctx context.Context, ev *delivery.Evaluator, points []Point, concurrency int) ([]Row, Summary, error) {
	coords := make([]geo.Coordinate, len(points))
	for i, p := range points {
		coords[i] = p.Point
	}
	outcomes, err := ev.CheckMany(ctx, coords, concurrency)
	if err != nil {
		return nil, Summary{}, err
	}

	rows := make([]Row, len(points))
	sum := Summary{Total: len(points)}
	for i, o := range outcomes {
		rows[i] = Row{Point: points[i], Result: o.Result, Err: o.Err}
		switch {
		case o.Err != nil:
			sum.Failed++
		case o.Result.InDeliveryRange:
			sum.Deliverable++
			sum.InCity++
		case o.Result.InCityArea:
			sum.InCity++
		}
	}
	zap.L().Info("batch checked",
		zap.Int("total", sum.Total),
		zap.Int("deliverable", sum.Deliverable),
		zap.Int("failed", sum.Failed),
	)
	return rows, sum, nil
}

// Header is the column layout of written results.
var Header = []string{
	"id", "lat", "lng", "in_city_area", "in_delivery_range",
	"nearest_branch", "distance_km", "distance_to_city_km", "reason", "error",
}

func record(r Row) []string {
	out := []string{
		r.ID,
		strconv.FormatFloat(r.Point.Point.Lat, 'f', 6, 64),
		strconv.FormatFloat(r.Point.Point.Lng, 'f', 6, 64),
		"", "", "", "", "", "", "",
	}
	if r.Err != nil {
		out[9] = r.Err.Error()
		return out
	}
	out[3] = strconv.FormatBool(r.Result.InCityArea)
	out[4] = strconv.FormatBool(r.Result.InDeliveryRange)
	if nb := r.Result.NearestBranch; nb != nil {
		out[5] = nb.Key
		out[6] = delivery.FormatKm(nb.DistanceKm)
	}
	out[7] = delivery.FormatKm(r.Result.DistanceToCityKm)
	out[8] = r.Result.Reason
	return out
}

// WriteResults writes rows to an .xlsx or .csv file.
func WriteResults(path string, rows []Row) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeXLSX(path, rows)
	case ".csv":
		return writeCSV(path, rows)
	default:
		return eris.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
}

func writeXLSX(path string, rows []Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "batch: add sheet")
	}
	addRow(sheet, Header)
	for _, r := range rows {
		addRow(sheet, record(r))
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "batch: save xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func writeCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "batch: create csv")
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "batch: write csv header")
	}
	for _, r := range rows {
		if err := w.Write(record(r)); err != nil {
			f.Close() //nolint:errcheck
			return eris.Wrap(err, "batch: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "batch: flush csv")
	}
	return eris.Wrap(f.Close(), "batch: close csv")
}
