package frame

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	return img
}

func TestEncoder_Encode(t *testing.T) {
	enc := NewEncoder(DefaultQuality)

	p, err := enc.Encode(testImage(64, 48))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if p.Width != 64 || p.Height != 48 {
		t.Errorf("Expected 64x48, got %dx%d", p.Width, p.Height)
	}
	if p.ContentType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", p.ContentType)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(p.Data))
	if err != nil {
		t.Fatalf("Payload is not a valid JPEG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("Expected native size preserved, got %v", b)
	}
}

func TestEncoder_OffsetBounds(t *testing.T) {
	enc := NewEncoder(90)

	src := image.NewRGBA(image.Rect(10, 10, 42, 34))
	p, err := enc.Encode(src)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if p.Width != 32 || p.Height != 24 {
		t.Errorf("Expected 32x24, got %dx%d", p.Width, p.Height)
	}
}

func TestEncoder_ReusesCanvasAcrossSizes(t *testing.T) {
	enc := NewEncoder(DefaultQuality)

	if _, err := enc.Encode(testImage(32, 32)); err != nil {
		t.Fatal(err)
	}
	p, err := enc.Encode(testImage(16, 8))
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 16 || p.Height != 8 {
		t.Errorf("Expected canvas to follow frame size, got %dx%d", p.Width, p.Height)
	}
}

func TestEncoder_Empty(t *testing.T) {
	enc := NewEncoder(DefaultQuality)

	if _, err := enc.Encode(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Expected ErrEmptyFrame for nil, got %v", err)
	}
	if _, err := enc.Encode(image.NewRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Expected ErrEmptyFrame for zero bounds, got %v", err)
	}
}

func TestNewEncoder_QualityFallback(t *testing.T) {
	for _, q := range []int{0, -5, 101} {
		if got := NewEncoder(q).Quality(); got != DefaultQuality {
			t.Errorf("NewEncoder(%d).Quality() = %d, expected %d", q, got, DefaultQuality)
		}
	}
}

func TestDataURI_RoundTrip(t *testing.T) {
	p, err := NewEncoder(DefaultQuality).Encode(testImage(8, 8))
	if err != nil {
		t.Fatal(err)
	}

	uri := p.DataURI()
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("Unexpected prefix: %.40s", uri)
	}

	ct, data, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("ParseDataURI failed: %v", err)
	}
	if ct != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", ct)
	}
	if !bytes.Equal(data, p.Data) {
		t.Error("Decoded bytes differ from payload")
	}
}

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantCT  string
		wantErr bool
	}{
		{"bare base64", "aGVsbG8=", "", false},
		{"png", "data:image/png;base64,aGVsbG8=", "image/png", false},
		{"not base64", "data:text/plain,hello", "", true},
		{"garbage", "data:image/jpeg;base64,***", "", true},
		{"empty", "data:image/jpeg;base64,", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, _, err := ParseDataURI(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDataURI) {
					t.Errorf("Expected ErrInvalidDataURI, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ct != tt.wantCT {
				t.Errorf("Expected content type %q, got %q", tt.wantCT, ct)
			}
		})
	}
}

func TestNewUpload_KeepsBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(4, 4), nil); err != nil {
		t.Fatal(err)
	}
	original := append([]byte(nil), buf.Bytes()...)

	u, err := NewUpload("/tmp/photos/face.jpg", &buf)
	if err != nil {
		t.Fatalf("NewUpload failed: %v", err)
	}
	if !bytes.Equal(u.Data, original) {
		t.Error("Upload bytes must be forwarded unmodified")
	}
	if u.Name != "face.jpg" {
		t.Errorf("Expected base name, got %s", u.Name)
	}
	if u.ContentType != "image/jpeg" || !u.IsImage() {
		t.Errorf("Expected sniffed image/jpeg, got %s", u.ContentType)
	}
}

func TestNewUpload_Errors(t *testing.T) {
	if _, err := NewUpload("empty.png", bytes.NewReader(nil)); !errors.Is(err, ErrEmptyUpload) {
		t.Errorf("Expected ErrEmptyUpload, got %v", err)
	}

	big := bytes.NewReader(make([]byte, MaxUploadBytes+1))
	if _, err := NewUpload("big.bin", big); !errors.Is(err, ErrUploadTooLarge) {
		t.Errorf("Expected ErrUploadTooLarge, got %v", err)
	}
}

func TestNewUpload_NonImageStillForwarded(t *testing.T) {
	u, err := NewUpload("notes.txt", strings.NewReader("not a picture"))
	if err != nil {
		t.Fatalf("NewUpload failed: %v", err)
	}
	if u.IsImage() {
		t.Error("Expected text content type")
	}
}
