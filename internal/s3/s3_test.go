package s3

import (
	"context"
	"regexp"
	"testing"

	"github.com/windoze95/dapur-api/internal/config"
)

func TestGeneratePDFKey(t *testing.T) {
	key := GeneratePDFKey("Budi", 716429)
	pattern := regexp.MustCompile(`^exports/budi/recipe_716429_[0-9a-f-]{36}\.pdf$`)
	if !pattern.MatchString(key) {
		t.Errorf("key %q does not match %s", key, pattern)
	}
	if GeneratePDFKey("budi", 1) == GeneratePDFKey("budi", 1) {
		t.Error("keys for separate shares should differ")
	}
}

func TestFileName(t *testing.T) {
	if got := fileName("exports/budi/recipe_1_x.pdf"); got != "recipe_1_x.pdf" {
		t.Errorf("fileName = %q", got)
	}
	if got := fileName("plain.pdf"); got != "plain.pdf" {
		t.Errorf("fileName = %q", got)
	}
}

func TestUploadPDF_NotConfigured(t *testing.T) {
	u := NewPDFUploader(&config.Config{})
	if _, err := u.UploadPDF(context.Background(), []byte("%PDF-"), "k"); err == nil {
		t.Error("expected error when sharing is not configured")
	}
}
