package report

import (
	"strconv"
	"strings"

	"github.com/sells-group/rfscore-cli/internal/config"
	"github.com/sells-group/rfscore-cli/internal/model"
	"github.com/sells-group/rfscore-cli/internal/scorer"
)

// Row is a record paired with its score. Score is only meaningful when
// Scored is true (OK records).
type Row struct {
	Record model.Record
	Score  float64
	Scored bool
}

// Rows scores every record under table, preserving order.
func Rows(records []model.Record, table config.ScoringTable) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{Record: rec}
		if rec.OK() {
			rows[i].Score = scorer.Total(rec, table)
			rows[i].Scored = true
		}
	}
	return rows
}

// column is one exported field. value returns a string, an int, a float64
// or nil for an empty cell.
type column struct {
	header string
	value  func(Row) any
}

// columns is the stable export layout shared by the spreadsheet and CSV.
var columns = []column{
	{"Nome_Arquivo", func(r Row) any { return r.Record.FileID }},
	{"Status", func(r Row) any { return string(r.Record.Status) }},
	{"Erro", func(r Row) any { return r.Record.Error }},
	{"RF", func(r Row) any { return r.Record.ReportNumber }},
	{"Situacao", func(r Row) any { return r.Record.StatusLabel }},
	{"Protocolo", func(r Row) any { return r.Record.ProtocolNumber }},
	{"Fiscal", func(r Row) any { return r.Record.InspectorRaw }},
	{"Fiscal_Nome_Completo", func(r Row) any { return r.Record.InspectorFullName }},
	{"Data", func(r Row) any { return r.Record.ReportDate }},
	{"Fato_Gerador", func(r Row) any { return r.Record.TriggeringFactText }},
	{"RF_Principal", func(r Row) any { return r.Record.PrimaryReportNumber }},
	{"Acoes", func(r Row) any { return r.Record.ActionCount }},
	{"Oficio", func(r Row) any { return r.Record.HasOfficialNotice }},
	{"Resposta_Oficio", func(r Row) any { return r.Record.HasNoticeReply }},
	{"Tem_Protocolo", func(r Row) any { return boolInt(scorer.HasProtocol(r.Record.ProtocolNumber)) }},
	{"Data_ART", func(r Row) any { return r.Record.ARTDate }},
	{"Data_Relatorio_Anterior", func(r Row) any { return r.Record.PreviousReportDate }},
	{"Regularizacao", func(r Row) any { return string(r.Record.Regularized) }},
	{"Informacoes_Complementares", func(r Row) any { return r.Record.ExtraNotes }},
	{"Fotos_Extraidas", func(r Row) any { return r.Record.PhotoCount }},
	{"Status_Fotos", func(r Row) any { return string(r.Record.PhotoStatus) }},
	{"Fotos", func(r Row) any { return r.Record.PhotoSummary() }},
	{"Arquivos_Fotos", func(r Row) any { return strings.Join(r.Record.PhotoFiles, ";") }},
	{"Pontuacao", func(r Row) any {
		if !r.Scored {
			return nil
		}
		return r.Score
	}},
}

// Headers returns the export column names in order.
func Headers() []string {
	h := make([]string, len(columns))
	for i, c := range columns {
		h[i] = c.header
	}
	return h
}

// text renders a column value for text exports.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	default:
		return ""
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
