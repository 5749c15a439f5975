package pdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/windoze95/dapur-api/internal/models"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Nasi Goreng ", "Nasi Goreng"},
		{"inline tags", "Masak <b>nasi</b> hingga <i>matang</i>.", "Masak nasi hingga matang."},
		{"list", "<ol><li>Cuci beras.</li><li>Masak.</li></ol>", "- Cuci beras.\n- Masak."},
		{"paragraphs and breaks", "<p>Satu</p><p>Dua<br>Tiga</p>", "Satu\nDua\nTiga"},
		{"entities", "Garam &amp; merica", "Garam & merica"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.in); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func testRecipe() *models.Recipe {
	return &models.Recipe{
		ID:             1,
		Title:          "Ayam Bakar Kecap",
		ReadyInMinutes: 45,
		Servings:       4,
		Instructions:   "<ol><li>Lumuri ayam.</li><li>Bakar hingga matang.</li></ol>",
		Ingredients: []models.Ingredient{
			{Original: "1 ekor ayam"},
			{Original: "5 sdm kecap manis"},
		},
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	out, err := NewRenderer().Render(context.Background(), testRecipe())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", out[:8])
	}
}

func TestRender_WithImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{200, 100, 50, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	withImage := testRecipe()
	withImage.Image = server.URL + "/ayam.png"

	plain, err := NewRenderer().Render(context.Background(), testRecipe())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out, err := NewRenderer().Render(context.Background(), withImage)
	if err != nil {
		t.Fatalf("Render with image: %v", err)
	}
	if len(out) <= len(plain) {
		t.Errorf("pdf with image (%d bytes) should be larger than without (%d bytes)", len(out), len(plain))
	}
}

func TestRender_BrokenImageIsSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	r := testRecipe()
	r.Image = server.URL + "/missing.jpg"
	if _, err := NewRenderer().Render(context.Background(), r); err != nil {
		t.Fatalf("Render should ignore a missing image: %v", err)
	}
}

func TestRender_EmptyRecipe(t *testing.T) {
	if _, err := NewRenderer().Render(context.Background(), &models.Recipe{}); err != nil {
		t.Fatalf("Render empty recipe: %v", err)
	}
}
