// Package imaging — приём картинок от пользователя: ужимаем до
// разумного размера до выгрузки в хранилище, чтобы киоск не таскал
// мегабайтные фото. Ядро потребляет только результат.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const (
	// MaxSide — потолок длинной стороны, пропорции сохраняются.
	MaxSide = 400

	jpegQuality = 70
)

// Downsample декодирует картинку, ужимает до MaxSide по длинной
// стороне и перекодирует в JPEG. Возвращает байты и расширение.
func Downsample(data []byte) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	nw, nh := w, h
	if w > h {
		if w > MaxSide {
			nh = h * MaxSide / w
			nw = MaxSide
		}
	} else {
		if h > MaxSide {
			nw = w * MaxSide / h
			nh = MaxSide
		}
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), "jpg", nil
}
