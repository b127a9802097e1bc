// Package batch reads delivery points from spreadsheets and writes
// eligibility results back out.
package batch

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/delivery-cli/internal/geo"
)

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = eris.New("batch: unsupported file format")

// Point is one row to check. Line is the 1-based row number in the source.
type Point struct {
	Line  int            `json:"line"`
	ID    string         `json:"id"`
	Point geo.Coordinate `json:"point"`
}

// RowError describes a row that could not be parsed.
type RowError struct {
	Line int    `json:"line"`
	Msg  string `json:"error"`
}

func (e RowError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Msg
}

// columns holds the indexes of the id, lat and lng columns.
type columns struct {
	id, lat, lng int
}

var defaultColumns = columns{id: 0, lat: 1, lng: 2}

// ReadPoints reads id/lat/lng rows from an .xlsx or .csv file. A header row
// is detected and used to locate columns; without one the order is id, lat,
// lng. Unparseable rows are returned as RowErrors and do not fail the read.
func ReadPoints(path string) ([]Point, []RowError, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSVFile(path)
	default:
		return nil, nil, eris.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
	if err != nil {
		return nil, nil, err
	}
	points, rowErrs := parseRows(rows)
	return points, rowErrs, nil
}

func parseRows(rows [][]string) ([]Point, []RowError) {
	cols := defaultColumns
	start := 0
	if len(rows) > 0 {
		if c, ok := headerColumns(rows[0]); ok {
			cols = c
			start = 1
		}
	}

	var points []Point
	var rowErrs []RowError
	for i := start; i < len(rows); i++ {
		row := rows[i]
		line := i + 1
		if blank(row) {
			continue
		}
		lat, err := parseCell(row, cols.lat)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Msg: "latitude: " + err.Error()})
			continue
		}
		lng, err := parseCell(row, cols.lng)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Msg: "longitude: " + err.Error()})
			continue
		}
		c := geo.Coordinate{Lat: lat, Lng: lng}
		if err := c.Validate(); err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Msg: err.Error()})
			continue
		}
		id := cell(row, cols.id)
		if id == "" {
			id = strconv.Itoa(line)
		}
		points = append(points, Point{Line: line, ID: id, Point: c})
	}
	return points, rowErrs
}

// headerColumns recognises a header row by name. A row whose latitude
// column parses as a number is data, not a header.
func headerColumns(row []string) (columns, bool) {
	c := columns{id: -1, lat: -1, lng: -1}
	for i, name := range row {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id", "ref", "name":
			if c.id < 0 {
				c.id = i
			}
		case "lat", "latitude":
			c.lat = i
		case "lng", "lon", "long", "longitude":
			c.lng = i
		}
	}
	if c.lat < 0 || c.lng < 0 {
		if _, err := parseCell(row, defaultColumns.lat); err != nil && len(row) > defaultColumns.lng {
			return defaultColumns, true
		}
		return columns{}, false
	}
	return c, true
}

// ParseDecimal accepts "24.65", "-24,65" and surrounding spaces.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, eris.New("empty value")
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("not a number: %q", s)
	}
	return v, nil
}

func parseCell(row []string, idx int) (float64, error) {
	if idx < 0 || idx >= len(row) {
		return 0, eris.New("missing column")
	}
	return ParseDecimal(row[idx])
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("batch: xlsx has no sheets")
	}
	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = c.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open csv")
	}
	defer f.Close() //nolint:errcheck
	return readCSV(f)
}

// readCSV reads comma- or semicolon-separated rows; the delimiter is taken
// from the first line.
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, eris.Wrap(err, "batch: read csv")
	}
	line := string(first)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if strings.Count(line, ";") > strings.Count(line, ",") {
		reader.Comma = ';'
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "batch: parse csv")
	}
	return rows, nil
}
