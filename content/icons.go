package content

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// card icons are displayed at most this wide
	iconWidth   = 100
	jpegQuality = 85
	iconsSubdir = "icons"
)

// processIcon decodes a raster icon, scales it down to iconWidth if it is
// wider, flattens it onto white and encodes it as JPEG.
func processIcon(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode icon: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > iconWidth {
		w, h = iconWidth, max(h*iconWidth/w, 1)
	}
	// JPEG has no alpha channel: transparent pixels would come out black.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == bounds.Dx() {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode icon: %w", err)
	}
	return buf.Bytes(), nil
}

// installIcon publishes the icon referenced by a tutorial's front matter and
// returns its public URL. ref is resolved relative to the tutorial file.
// Absolute URLs and site paths are returned unchanged.
func (im *Importer) installIcon(sourceFile, ref, slug string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") {
		return ref, nil
	}
	if im.staticDir == "" {
		return "", fmt.Errorf("icon %q: no static directory configured", ref)
	}

	srcPath := filepath.Join(filepath.Dir(sourceFile), filepath.FromSlash(ref))
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open icon: %w", err)
	}
	defer f.Close()

	dir := filepath.Join(im.staticDir, iconsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create icons dir: %w", err)
	}

	var name string
	var data []byte
	if strings.EqualFold(filepath.Ext(srcPath), ".svg") {
		// vector icons scale on their own
		data, err = io.ReadAll(f)
		name = slug + ".svg"
	} else {
		data, err = processIcon(f)
		name = slug + ".jpg"
	}
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write icon: %w", err)
	}
	return "/public/" + iconsSubdir + "/" + name, nil
}
