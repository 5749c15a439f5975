// Package pdf renders printable recipe sheets.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/models"
	"go.uber.org/zap"
)

const (
	pageWidth     = 210.0
	margin        = 15.0
	imageWidth    = 90.0
	imageTimeout  = 5 * time.Second
	maxImageBytes = 5 << 20
)

// Renderer lays out a recipe as an A4 PDF.
type Renderer struct {
	httpClient *http.Client
}

// NewRenderer creates a Renderer. Recipe images are fetched with a 5s timeout.
func NewRenderer() *Renderer {
	return &Renderer{httpClient: &http.Client{Timeout: imageTimeout}}
}

// Render returns the PDF bytes for r. A recipe image that cannot be fetched
// or decoded is left out.
func (rd *Renderer) Render(ctx context.Context, r *models.Recipe) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin+5)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Helvetica", "I", 8)
		doc.SetTextColor(150, 150, 150)
		doc.CellFormat(0, 10, fmt.Sprintf("Halaman %d", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	title := StripHTML(r.Title)
	if title == "" {
		title = "Tanpa Judul"
	}
	doc.SetFont("Helvetica", "B", 24)
	doc.SetTextColor(0, 0, 0)
	doc.MultiCell(0, 10, tr(title), "", "C", false)
	doc.Ln(5)

	if r.Image != "" {
		rd.drawImage(ctx, doc, r.Image)
	}

	doc.SetX(margin)
	doc.SetFont("Helvetica", "I", 12)
	doc.CellFormat(0, 10, fmt.Sprintf("Waktu Masak: %s Menit  |  Porsi: %s Orang",
		orDash(r.ReadyInMinutes), orDash(r.Servings)), "", 0, "C", false, 0, "")
	doc.Ln(15)

	section(doc, "Bahan-Bahan:")
	if lines := r.IngredientLines(); len(lines) > 0 {
		for _, line := range lines {
			doc.SetX(margin)
			doc.MultiCell(0, 7, tr("- "+StripHTML(line)), "", "L", false)
		}
	} else {
		doc.CellFormat(0, 10, "Data bahan tidak tersedia.", "", 1, "L", false, 0, "")
	}
	doc.Ln(10)

	section(doc, "Cara Membuat:")
	if instructions := StripHTML(r.Instructions); instructions != "" {
		doc.SetX(margin)
		doc.MultiCell(0, 7, tr(instructions), "", "L", false)
	} else {
		doc.MultiCell(0, 7, "Instruksi tidak tersedia untuk resep ini.", "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render recipe pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(doc *fpdf.Fpdf, heading string) {
	doc.SetX(margin)
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, heading, "", 0, "L", false, 0, "")
	doc.Ln(8)
	doc.SetFont("Helvetica", "", 12)
}

func (rd *Renderer) drawImage(ctx context.Context, doc *fpdf.Fpdf, url string) {
	data, imageType, err := rd.fetchImage(ctx, url)
	if err != nil {
		logger.Get().Debug("skipping recipe image", zap.String("url", url), zap.Error(err))
		return
	}

	opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	doc.RegisterImageOptionsReader(url, opts, bytes.NewReader(data))
	if doc.Err() {
		logger.Get().Debug("skipping undecodable recipe image", zap.String("url", url), zap.Error(doc.Error()))
		doc.ClearError()
		return
	}
	doc.ImageOptions(url, (pageWidth-imageWidth)/2, -1, imageWidth, 0, true, opts, 0, "")
	doc.Ln(10)
}

func (rd *Renderer) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, imageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := rd.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", err
	}
	imageType := imageTypeOf(http.DetectContentType(data))
	if imageType == "" {
		return nil, "", fmt.Errorf("unsupported image type")
	}
	return data, imageType, nil
}

func imageTypeOf(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/jpeg"):
		return "JPG"
	case strings.HasPrefix(contentType, "image/png"):
		return "PNG"
	case strings.HasPrefix(contentType, "image/gif"):
		return "GIF"
	default:
		return ""
	}
}

func orDash(n int) string {
	if n <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}
