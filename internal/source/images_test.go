package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageProberRemote(t *testing.T) {
	img := pngBytes(t, 64, 32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img/a.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	}))
	defer srv.Close()

	p := NewImageProber(Config{}, srv.URL+"/articles/page.html")

	t.Run("relative source resolved against page", func(t *testing.T) {
		w, h, err := p.Load(context.Background(), "../img/a.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w != 64 || h != 32 {
			t.Errorf("got %dx%d, want 64x32", w, h)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, _, err := p.Load(ctx, srv.URL+"/img/a.png"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("missing image", func(t *testing.T) {
		if _, _, err := p.Load(context.Background(), srv.URL+"/img/none.png"); err == nil {
			t.Error("expected error")
		}
	})
}

func TestImageProberLocal(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), pngBytes(t, 10, 20), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewImageProber(Config{}, filepath.Join(dir, "clip.html"))

	w, h, err := p.Load(context.Background(), "a.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 10 || h != 20 {
		t.Errorf("got %dx%d, want 10x20", w, h)
	}

	if _, _, err := p.Load(context.Background(), "bad.png"); err == nil {
		t.Error("expected decode error")
	}
}

func TestImageProberUnresolvable(t *testing.T) {
	p := NewImageProber(Config{}, Stdin)
	tests := []string{"a.png", "../a.png"}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			if _, _, err := p.Load(context.Background(), src); err == nil {
				t.Errorf("expected error for %q", src)
			}
		})
	}
}

func TestImageProberDataURI(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngBytes(t, 12, 8))
	p := NewImageProber(Config{}, Stdin)

	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"base64 png", "data:image/png;base64," + encoded, false},
		{"payload wrapped across lines", "data:image/png;base64," + encoded[:20] + "\n" + encoded[20:], false},
		{"truncated image", "data:image/png;base64,AAAA", true},
		{"invalid base64", "data:image/png;base64,@@@@", true},
		{"missing payload separator", "data:image/png;base64", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := p.Load(context.Background(), tt.src)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %dx%d", w, h)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w != 12 || h != 8 {
				t.Errorf("got %dx%d, want 12x8", w, h)
			}
		})
	}
}
