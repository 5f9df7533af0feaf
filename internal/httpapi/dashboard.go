package httpapi

import (
	"html/template"
	"log"
	"net/http"

	"github.com/arogyaline/arogyaline/internal/store"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!doctype html>
<html>
<head><title>Consultation History</title></head>
<body>
<h2>Consultation History</h2>
<table border="1">
  <tr><th>ID</th><th>Caller</th><th>Time (UTC)</th><th>Transcript</th><th>Condition</th><th>Advice</th><th>Clinic</th></tr>
  {{range .Rows}}
  <tr>
    <td>{{.ID}}</td>
    <td>{{.Caller}}</td>
    <td>{{.Timestamp.Format "2006-01-02 15:04:05"}}</td>
    <td>{{.Transcript}}</td>
    <td>{{.Condition}}</td>
    <td>{{.Advice}}</td>
    <td>{{.ClinicName}}</td>
  </tr>
  {{end}}
</table>
</body>
</html>
`))

type dashboardData struct {
	Rows []store.Consultation
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.records.Recent(r.Context(), s.cfg.DashboardLimit)
	if err != nil {
		log.Printf("dashboard: list consultations: %v", err)
		http.Error(w, "failed to load consultations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, dashboardData{Rows: rows}); err != nil {
		log.Printf("dashboard: render: %v", err)
	}
}
