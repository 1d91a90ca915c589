package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ueba-service/internal/config"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

// Writer exports derived tables as CSV files for offline inspection.
type Writer struct {
	dir string
}

func NewWriter(cfg *config.Config) *Writer {
	return &Writer{dir: cfg.Data.OutputDir}
}

// WriteFeatures exports the behavioral feature table as features.csv.
func (w *Writer) WriteFeatures(rows []model.FeatureRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.User,
			ftoa(r.MeanLoginHour),
			ftoa(r.MeanLogoutHour),
			ftoa(r.FilesPerDay),
			ftoa(r.UsbPerDay),
			ftoa(r.EmailsPerDay),
			ftoa(r.OutOfSessionAccess),
		})
	}
	header := []string{"user", "mean_login_hour", "mean_logout_hour", "files_per_day",
		"usb_per_day", "emails_per_day", "out_of_session_access"}
	return w.writeFile("features.csv", header, records)
}

// WriteMergedFeatures exports the joined feature matrix as
// merged_features.csv, one numeric column per detector input plus the
// red-team label.
func (w *Writer) WriteMergedFeatures(rows []model.MergedFeatureRow) error {
	header := append([]string{"user"}, model.MergedFeatureColumns...)
	header = append(header, "is_red_team")

	records := make([][]string, 0, len(rows))
	for i := range rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, rows[i].User)
		for _, v := range rows[i].Vector() {
			rec = append(rec, ftoa(v))
		}
		rec = append(rec, strconv.FormatBool(rows[i].IsRedTeam))
		records = append(records, rec)
	}
	return w.writeFile("merged_features.csv", header, records)
}

// WriteScores exports per-detector anomaly scores as anomaly_scores.csv.
func (w *Writer) WriteScores(rows []model.ScoreRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.User,
			strconv.FormatBool(r.IsRedTeam),
			ftoa(r.IsolationScore),
			ftoa(r.BoundaryScore),
			ftoa(r.ReconstructionScore),
		})
	}
	header := []string{"user", "is_red_team", "isolation_score", "boundary_score", "reconstruction_score"}
	return w.writeFile("anomaly_scores.csv", header, records)
}

func (w *Writer) writeFile(name string, header []string, records [][]string) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write %s header: %w", name, err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write %s rows: %w", name, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}

	util.Info("csv export written",
		util.String("path", path),
		util.Int("rows", len(records)),
	)
	return nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
