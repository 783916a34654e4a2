package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/fitstreak/ingest"
	"github.com/fitstreak/models"
	"github.com/fitstreak/stats"
	"github.com/fitstreak/streak"
	"github.com/fitstreak/templates"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/number"
)

const displayTimeLayout = "02/01/2006 15:04"

type datasetResponse struct {
	FileName    string       `json:"fileName"`
	LoadedAt    time.Time    `json:"loadedAt"`
	Days        int          `json:"days"`
	Headers     []string     `json:"headers"`
	InvalidRows []int        `json:"invalidRows"`
	Series      stats.Series `json:"series"`
}

type countdownResponse struct {
	Remaining string `json:"remaining"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, http.StatusOK, "")
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())

	file, header, err := r.FormFile("file")
	if err != nil {
		s.uploadFailed(w, r, "", err)
		return
	}
	defer file.Close()

	table, err := ingest.Read(header.Filename, file)
	if err != nil {
		s.uploadFailed(w, r, header.Filename, err)
		return
	}

	ds := s.dataStore.Replace(header.Filename, *table, s.clock.Now())
	s.renderCache.Clear()
	s.metrics.CounterUploads.WithLabelValues("ok").Inc()
	log.Infof("loaded %s: %d days, %d invalid rows", ds.FileName, len(ds.Records), len(ds.InvalidRows()))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// uploadFailed keeps the previous dataset and shows the reason on the page
func (s *Server) uploadFailed(w http.ResponseWriter, r *http.Request, fileName string, err error) {
	log.Errorf("upload [%s] failed: %s", fileName, err)
	s.metrics.CounterUploads.WithLabelValues("failed").Inc()
	s.renderDashboard(w, r, http.StatusUnprocessableEntity, s.uploadErrorMessage(err))
}

func (s *Server) uploadErrorMessage(err error) string {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return fmt.Sprintf("Arquivo maior que o limite de %d MB.", s.config.MaxUploadMB)
	case errors.Is(err, http.ErrMissingFile):
		return "Nenhum arquivo enviado."
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return "Formato não suportado, use uma planilha .xlsx, .xls ou .csv."
	case errors.Is(err, ingest.ErrNoSheet), errors.Is(err, ingest.ErrNoHeader):
		return "A planilha está vazia."
	default:
		return fmt.Sprintf("Não foi possível ler a planilha: %s", err)
	}
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, status int, uploadError string) {
	data, err := s.dashboard(r, uploadError)
	if err != nil {
		log.Errorf("build dashboard: %s", err)
		component := templates.Error("Falha ao montar o painel: " + err.Error())
		templ.Handler(component, templ.WithStatus(http.StatusInternalServerError)).ServeHTTP(w, r)
		return
	}

	templ.Handler(templates.Index(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (s *Server) dashboard(r *http.Request, uploadError string) (templates.Dashboard, error) {
	status, err := s.machine.Evaluate(r.Context())
	if err != nil {
		return templates.Dashboard{}, err
	}

	loc := s.machine.Location()
	data := templates.Dashboard{
		UploadError: uploadError,
		MaxUploadMB: s.config.MaxUploadMB,
		Streak: templates.Streak{
			Count:        status.Count,
			CanIncrement: status.CanIncrement,
			Countdown:    status.Countdown,
		},
	}
	if status.LastAction != nil {
		data.Streak.LastAction = status.LastAction.In(loc).Format(displayTimeLayout)
	}

	ds := s.dataStore.Current()
	if ds == nil {
		return data, nil
	}

	charts, err := renderCharts(ds, stats.Derive(ds.Records), s.renderCache)
	if err != nil {
		return templates.Dashboard{}, err
	}

	data.FileName = ds.FileName
	data.LoadedAt = ds.LoadedAt.In(loc).Format(displayTimeLayout)
	data.Headers = ds.Table.Headers
	data.Charts = charts
	data.Rows = s.tableRows(ds)
	data.InvalidRows = len(ds.InvalidRows())

	return data, nil
}

// tableRows lays the raw rows out in header order, numbers in the
// recognized columns are localized and unparsable ones flagged
func (s *Server) tableRows(ds *models.Dataset) []templates.TableRow {
	rows := make([]templates.TableRow, len(ds.Table.Rows))
	for i, row := range ds.Table.Rows {
		record := ds.Records[i]
		invalid := make(map[string]bool)
		for _, col := range record.InvalidFields() {
			invalid[col] = true
		}

		cells := make([]templates.Cell, len(ds.Table.Headers))
		for j, header := range ds.Table.Headers {
			cells[j] = templates.Cell{Text: row[header], Invalid: invalid[header]}
			if v, ok := recordValue(record, header); ok && !invalid[header] {
				cells[j].Text = s.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
			}
		}

		rows[i] = templates.TableRow{
			Day:     i + 1,
			Cells:   cells,
			Invalid: len(invalid) > 0,
		}
	}
	return rows
}

func recordValue(record models.SessionRecord, column string) (float64, bool) {
	switch column {
	case models.ColTotalCalories:
		return record.TotalCalories, true
	case models.ColRunningCalories:
		return record.RunningCalories, true
	case models.ColCyclingCalories:
		return record.CyclingCalories, true
	case models.ColRunningDistance:
		return record.RunningDistance, true
	case models.ColCyclingDistance:
		return record.CyclingDistance, true
	}
	return 0, false
}

func (s *Server) handleDataset(w http.ResponseWriter, _ *http.Request) {
	ds := s.dataStore.Current()
	if ds == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no spreadsheet uploaded yet"})
		return
	}

	invalidRows := ds.InvalidRows()
	if invalidRows == nil {
		invalidRows = []int{}
	}

	writeJSON(w, http.StatusOK, datasetResponse{
		FileName:    ds.FileName,
		LoadedAt:    ds.LoadedAt,
		Days:        len(ds.Records),
		Headers:     ds.Table.Headers,
		InvalidRows: invalidRows,
		Series:      stats.Derive(ds.Records),
	})
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	status, err := s.machine.Evaluate(r.Context())
	if err != nil {
		log.Errorf("evaluate streak: %s", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streak unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleStreakIncrement(w http.ResponseWriter, r *http.Request) {
	status, err := s.machine.Increment(r.Context())
	switch {
	case errors.Is(err, streak.ErrAlreadyDone):
		writeJSON(w, http.StatusConflict, status)
	case err != nil:
		log.Errorf("increment streak: %s", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streak unavailable"})
	default:
		writeJSON(w, http.StatusOK, status)
	}
}

func (s *Server) handleCountdown(w http.ResponseWriter, r *http.Request) {
	status, err := s.machine.Evaluate(r.Context())
	if err != nil {
		log.Errorf("evaluate streak: %s", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streak unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, countdownResponse{Remaining: status.Countdown})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Errorf("failed to write response: %s", err)
	}
}
