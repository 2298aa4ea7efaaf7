// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package varsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// LoadCSVToTimeSeries loads a headered CSV file into a TimeSeries struct.
func LoadCSVToTimeSeries(path string) (*TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ts, err := ReadTimeSeries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// ReadTimeSeries parses CSV data: one header row of variable names, then
// one row of floats per time point.
func ReadTimeSeries(rd io.Reader) (*TimeSeries, error) {
	r := csv.NewReader(rd)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("empty header")
	}
	K := len(header) // number of variables

	var (
		data  []float64 // flat data for mat.Dense
		times []float64 // time index
		row   int       // row counter
	)

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+2, err) // +2 for header + 1-based
		}

		// Skip completely empty lines
		if len(record) == 1 && record[0] == "" {
			continue
		}
		if len(record) != K {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", row+2, K, len(record))
		}

		for j, s := range record {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parse float at row %d col %d (%q): %w", row+2, j+1, s, err)
			}
			data = append(data, v)
		}
		times = append(times, float64(row))
		row++
	}

	if row == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	return &TimeSeries{
		Y:        mat.NewDense(row, K, data),
		Time:     times,
		VarNames: header,
	}, nil
}

// WriteMatrixCSV writes m to path with an optional header row.
func WriteMatrixCSV(path string, m mat.Matrix, header []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := writeMatrix(file, m, header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func writeMatrix(w io.Writer, m mat.Matrix, header []string) error {
	writer := csv.NewWriter(w)
	rows, cols := m.Dims()
	if header != nil {
		if len(header) != cols {
			return fmt.Errorf("header has %d names for %d columns", len(header), cols)
		}
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRecords writes every trace of rec as <dir>/<name>.csv and returns the
// paths written, in Keys order.
func WriteRecords(dir string, rec *Records) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	traces := rec.Map()
	var paths []string
	for _, key := range rec.Keys() {
		path := filepath.Join(dir, key+".csv")
		if err := WriteMatrixCSV(path, traces[key], nil); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// OutputForecastsToCSV writes forecasts with the variable names as header.
func OutputForecastsToCSV(path string, fc *mat.Dense, varNames []string) error {
	_, cols := fc.Dims()
	header := make([]string, cols)
	for j := 0; j < cols; j++ {
		if len(varNames) == cols {
			header[j] = varNames[j]
		} else {
			header[j] = fmt.Sprintf("Var%d", j+1)
		}
	}
	return WriteMatrixCSV(path, fc, header)
}

// OutputIRFAnalysisToCSV writes an IRFAnalysis result with one row per
// horizon and one Shock_<name> column per shocked variable.
func OutputIRFAnalysisToCSV(path string, analysis map[int][]float64, varNames []string) error {
	K := len(analysis)
	if K == 0 {
		return fmt.Errorf("empty IRF analysis")
	}
	first, ok := analysis[0]
	if !ok || len(first) == 0 {
		return fmt.Errorf("IRF analysis has no responses for shock 0")
	}
	horizon := len(first)
	header := []string{"Horizon"}
	out := mat.NewDense(horizon, K+1, nil)
	for h := 0; h < horizon; h++ {
		out.Set(h, 0, float64(h))
	}
	for shockIdx := 0; shockIdx < K; shockIdx++ {
		series, ok := analysis[shockIdx]
		if !ok || len(series) != horizon {
			return fmt.Errorf("IRF analysis is missing shock %d", shockIdx)
		}
		varName := fmt.Sprintf("Var%d", shockIdx+1)
		if len(varNames) == K {
			varName = varNames[shockIdx]
		}
		header = append(header, "Shock_"+varName)
		out.SetCol(shockIdx+1, series)
	}
	return WriteMatrixCSV(path, out, header)
}
