package record

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rfscore-cli/internal/model"
	"github.com/sells-group/rfscore-cli/internal/photo"
	"github.com/sells-group/rfscore-cli/internal/scorer"
)

func reportText(artLine string) string {
	return `CREA-RJ Relatório de Fiscalização
Número : 123456
Situação : Ativo
Agente de Fiscalização : 4521 - MARIA DA SILVA
Data Relatório : 01/03/2024
Fato Gerador : Denúncia PROCESSO 200012
Protocolo : 999
RF Principal : 654321
04 - Identificação dos Contratados, Responsáveis Técnicos e/ou Fiscalizados
Empresa A Ramo Atividade : Obras
Empresa B Ramo Atividade : Elétrica
Empresa C Ramo Atividade : Hidráulica
05 - Documentos Solicitados / Expedidos
Ofício 12/2024 enviado
Ramo Atividade : citado depois da seção 04
06 - Documentos Recebidos
` + artLine + `
Cópia ART
07 - Outras Informações
Data do Relatório Anterior : 10/02/2024
Informações Complementares : ver (obra embargada)
08 - Fotos
`
}

func TestBuildFromText_Regularized(t *testing.T) {
	rec := BuildFromText("rf.pdf", reportText("OUTROS - 15/02/2024"))

	assert.Equal(t, model.StatusOK, rec.Status)
	assert.Equal(t, "rf.pdf", rec.FileID)
	assert.Equal(t, "123456", rec.ReportNumber)
	assert.Equal(t, "Ativo", rec.StatusLabel)
	assert.Equal(t, "01/03/2024", rec.ReportDate)
	assert.Equal(t, "4521 - MARIA DA SILVA", rec.InspectorRaw)
	assert.Equal(t, "MARIA DA SILVA", rec.InspectorFullName)
	assert.Equal(t, "654321", rec.PrimaryReportNumber)
	assert.Equal(t, 3, rec.ActionCount)
	assert.Equal(t, 1, rec.HasOfficialNotice)
	assert.Equal(t, 1, rec.HasNoticeReply)
	assert.Equal(t, "15/02/2024", rec.ARTDate)
	assert.Equal(t, "10/02/2024", rec.PreviousReportDate)
	assert.Equal(t, model.Yes, rec.Regularized)
	assert.Equal(t, "obra embargada", rec.ExtraNotes)
	assert.Equal(t, 0, rec.PhotoCount)
	assert.Equal(t, model.No, rec.PhotoStatus)
}

func TestBuildFromText_NotRegularized(t *testing.T) {
	rec := BuildFromText("rf.pdf", reportText("OUTROS - 05/02/2024"))

	assert.Equal(t, "05/02/2024", rec.ARTDate)
	assert.Equal(t, "10/02/2024", rec.PreviousReportDate)
	assert.Equal(t, model.No, rec.Regularized)
}

func TestBuildFromText_ProtocolFromTriggeringFactWins(t *testing.T) {
	rec := BuildFromText("rf.pdf", reportText("OUTROS - 15/02/2024"))
	assert.Equal(t, "200012", rec.ProtocolNumber)
	assert.Equal(t, "Denúncia PROCESSO 200012", rec.TriggeringFactText)
}

func TestBuildFromText_LabelProtocolKeptWhenFactHasNone(t *testing.T) {
	text := "Fato Gerador : Fiscalização de rotina\nProtocolo : 7788\n"
	rec := BuildFromText("rf.pdf", text)
	assert.Equal(t, "7788", rec.ProtocolNumber)
}

func TestBuildFromText_HasProtocolTracksProtocolNumber(t *testing.T) {
	texts := []string{
		"",
		"Protocolo : 7788\n",
		"Fato Gerador : PROTOCOLO 55\n",
		"Fato Gerador : nada\nProtocolo :   \n",
	}
	for _, text := range texts {
		rec := BuildFromText("rf.pdf", text)
		b, err := scorer.Score(rec, scorer.DefaultTable())
		require.NoError(t, err)
		assert.Equal(t, scorer.HasProtocol(rec.ProtocolNumber), b.Protocol > 0, "text %q", text)
	}
}

func TestBuildFromText_Empty(t *testing.T) {
	rec := BuildFromText("empty.pdf", "")
	want := model.NewRecord("empty.pdf")
	assert.Equal(t, want, rec)
}

func TestBuildFromText_NoDatesMeansNotRegularized(t *testing.T) {
	text := "06 - Documentos Recebidos\nCópia ART\n07 - Outras Informações\nnada aqui\n"
	rec := BuildFromText("rf.pdf", text)
	assert.Empty(t, rec.ARTDate)
	assert.Empty(t, rec.PreviousReportDate)
	assert.Equal(t, model.No, rec.Regularized)
}

func TestBuildFromText_PlaceholderSections(t *testing.T) {
	text := `04 - Identificação dos Contratados, Responsáveis Técnicos e/ou Fiscalizados
SEM
05 - Documentos Solicitados / Expedidos
NÃO INFORMADO
06 - Documentos Recebidos
SEM INFORMAÇÃO
`
	rec := BuildFromText("rf.pdf", text)
	assert.Zero(t, rec.ActionCount)
	assert.Zero(t, rec.HasOfficialNotice)
	assert.Zero(t, rec.HasNoticeReply)
}

func TestBuildFromText_Idempotent(t *testing.T) {
	text := reportText("OUTROS - 15/02/2024")
	assert.Equal(t, BuildFromText("rf.pdf", text), BuildFromText("rf.pdf", text))
}

type fakeText struct {
	pages []string
	err   error
	panic bool
	block bool
}

func (f *fakeText) Pages(ctx context.Context, _ string) ([]string, error) {
	if f.panic {
		panic("corrupt xref table")
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.pages, f.err
}

type fakePhotos struct {
	res photo.Result
	err error
	dir string
}

func (f *fakePhotos) Locate(_ context.Context, _ string, _ []string, dir string) (photo.Result, error) {
	f.dir = dir
	return f.res, f.err
}

func TestBuild_OK(t *testing.T) {
	text := &fakeText{pages: []string{reportText("OUTROS - 15/02/2024")}}
	photos := &fakePhotos{res: photo.Result{Count: 2, Files: []string{"a.png", "b.png"}}}
	b := NewBuilder(text, photos, func(doc model.Document) string { return "/scratch/" + doc.FileID })

	out := b.Build(context.Background(), model.Document{FileID: "rf.pdf", Path: "/in/rf.pdf"})
	require.NoError(t, out.Err)

	rec := out.Final()
	assert.Equal(t, model.StatusOK, rec.Status)
	assert.Equal(t, 2, rec.PhotoCount)
	assert.Equal(t, model.Yes, rec.PhotoStatus)
	assert.Equal(t, []string{"a.png", "b.png"}, rec.PhotoFiles)
	assert.Equal(t, "/scratch/rf.pdf", photos.dir)
}

func TestBuild_NoPhotoLocator(t *testing.T) {
	b := NewBuilder(&fakeText{pages: []string{"Número : 1"}}, nil, nil)
	out := b.Build(context.Background(), model.Document{FileID: "rf.pdf"})
	require.NoError(t, out.Err)
	assert.Equal(t, model.No, out.Record.PhotoStatus)
}

func TestBuild_PhotoErrorKeepsDocument(t *testing.T) {
	photos := &fakePhotos{err: errors.New("pdfimages missing")}
	b := NewBuilder(&fakeText{pages: []string{"Número : 1"}}, photos, nil)

	out := b.Build(context.Background(), model.Document{FileID: "rf.pdf"})
	require.NoError(t, out.Err)
	assert.Equal(t, "1", out.Record.ReportNumber)
	assert.Equal(t, 0, out.Record.PhotoCount)
	assert.Equal(t, model.No, out.Record.PhotoStatus)
}

func TestBuild_TextError(t *testing.T) {
	b := NewBuilder(&fakeText{err: errors.New("not a PDF")}, nil, nil)

	out := b.Build(context.Background(), model.Document{FileID: "bad.pdf"})
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "record: read bad.pdf")

	rec := out.Final()
	assert.Equal(t, model.StatusError, rec.Status)
	assert.Equal(t, "bad.pdf", rec.FileID)
	assert.Equal(t, "Erro no processamento", rec.Error)
	assert.Equal(t, model.No, rec.Regularized)
	assert.Equal(t, model.No, rec.PhotoStatus)
	assert.Zero(t, rec.ActionCount)
}

func TestBuild_PanicBecomesFailure(t *testing.T) {
	b := NewBuilder(&fakeText{panic: true}, nil, nil)

	out := b.Build(context.Background(), model.Document{FileID: "panic.pdf"})
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "corrupt xref table")
	assert.Equal(t, model.StatusError, out.Final().Status)
}

func TestBuild_Timeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewBuilder(&fakeText{block: true}, nil, nil)

	out := b.Build(ctx, model.Document{FileID: "slow.pdf"})
	require.Error(t, out.Err)
	assert.True(t, errors.Is(out.Err, ErrTimeout))
	assert.Equal(t, "Timeout ou erro", out.Final().Error)
}

func TestOutcomeFinal(t *testing.T) {
	rec := model.NewRecord("ok.pdf")
	rec.ActionCount = 2
	assert.Equal(t, rec, Outcome{FileID: "ok.pdf", Record: rec}.Final())

	failed := Failed("x.pdf", errors.New("boom")).Final()
	assert.Equal(t, model.ErrorRecord("x.pdf", "Erro no processamento"), failed)
}
