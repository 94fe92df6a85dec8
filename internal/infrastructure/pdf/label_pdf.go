// Package pdf implementa la hoja imprimible de etiquetas de envío.
//
// Layout por etiqueta (una página A6 por etiqueta):
//
//	┌──────────────────────────────────────┐
//	│  CARRIER            Tipo | Peso      │
//	│  ──────────────────────────────────  │
//	│  FROM: remitente + dirección         │
//	│  TO:   destinatario + dirección      │
//	│  ──────────────────────────────────  │
//	│  ║║│║║║│║│║║  (código de barras)     │
//	│  TRACKING NUMBER                     │
//	└──────────────────────────────────────┘
package pdf

import (
	"encoding/base64"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/labelhub/labelhub-api/internal/domain/entity"
)

var (
	colorBlack = &props.Color{Red: 0, Green: 0, Blue: 0}
	colorGray  = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// LabelPDFGenerator genera la hoja de etiquetas de un evento bulk con Maroto v2.
type LabelPDFGenerator struct{}

// NewLabelPDFGenerator construye el generador.
func NewLabelPDFGenerator() *LabelPDFGenerator { return &LabelPDFGenerator{} }

// GenerateLabelsPDF genera una página A6 por etiqueta y devuelve los bytes
// del documento.
func (g *LabelPDFGenerator) GenerateLabelsPDF(labels []*entity.Label) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("pdf: sin etiquetas que imprimir")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A6).
		WithLeftMargin(5).WithRightMargin(5).
		WithTopMargin(5).WithBottomMargin(5).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Shipping Labels", true).
		Build()

	m := maroto.New(cfg)

	for _, l := range labels {
		p := page.New()
		p.Add(labelRows(l)...)
		m.AddPages(p)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// labelRows arma las filas de una etiqueta.
func labelRows(l *entity.Label) []core.Row {
	rows := []core.Row{
		// Carrier + tipo/peso
		row.New(12).Add(
			col.New(7).Add(
				text.New(strings.ToUpper(l.Carrier), props.Text{
					Style: fontstyle.Bold, Size: 14, Top: 1,
				}),
			),
			col.New(5).Add(
				text.New(l.LabelType, props.Text{
					Size: 8, Align: align.Right, Top: 2, Color: colorGray,
				}),
				text.New(weightLine(l.Weight), props.Text{
					Size: 8, Align: align.Right, Top: 7, Color: colorGray,
				}),
			),
		),
		line.NewRow(1, props.Line{Color: colorBlack, Thickness: 0.5}),
		// Remitente
		row.New(16).Add(col.New(12).Add(
			text.New("FROM:", props.Text{Style: fontstyle.Bold, Size: 7, Top: 1, Color: colorGray}),
			text.New(l.SenderName, props.Text{Size: 8, Top: 5}),
			text.New(l.SenderAddress, props.Text{Size: 8, Top: 9}),
			text.New(cityLine(l.SenderCity, l.SenderState, l.SenderZip), props.Text{Size: 8, Top: 13}),
		)),
		// Destinatario, más grande: es lo que lee el repartidor
		row.New(20).Add(col.New(12).Add(
			text.New("TO:", props.Text{Style: fontstyle.Bold, Size: 7, Top: 1, Color: colorGray}),
			text.New(l.RecipientName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
			text.New(l.RecipientAddress, props.Text{Size: 9, Top: 11}),
			text.New(cityLine(l.RecipientCity, l.RecipientState, l.RecipientZip), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 16,
			}),
		)),
		line.NewRow(1, props.Line{Color: colorBlack, Thickness: 0.5}),
	}

	rows = append(rows, barcodeRow(l))
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New(l.TrackingNumber, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 1,
		}),
	)))
	return rows
}

// barcodeRow embebe la imagen del proveedor si viene como data URL PNG;
// si no, dibuja un code 128 a partir del tracking.
func barcodeRow(l *entity.Label) core.Row {
	if raw, ok := decodeDataURL(l.Barcode); ok {
		return row.New(28).Add(col.New(12).Add(
			image.NewFromBytes(raw, extension.Png, props.Rect{Percent: 90, Center: true}),
		))
	}
	return row.New(28).Add(col.New(12).Add(
		code.NewBar(l.TrackingNumber, props.Barcode{Percent: 90, Center: true}),
	))
}

func cityLine(city, state, zip string) string {
	return fmt.Sprintf("%s, %s %s", city, state, zip)
}

func weightLine(w string) string {
	if w == "" {
		return ""
	}
	return "Peso: " + w
}

// decodeDataURL extrae los bytes PNG de un data URL del proveedor.
// Solo se acepta base64; cualquier otra cosa cae al barcode local.
func decodeDataURL(s string) ([]byte, bool) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(s, prefix) {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(s[len(prefix):])
	if err != nil {
		return nil, false
	}
	return raw, true
}
