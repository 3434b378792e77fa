// Package qrcode は gozxing を用いた QR コードの symbol.Codec 実装です。
package qrcode

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/ogurasousui/pin-roster/internal/core/symbol"
)

// DefaultSize は QR 画像の既定の一辺のピクセル数です。
const DefaultSize = 256

// Options は生成する QR コードの設定です。
type Options struct {
	// ErrorCorrection は L / M / Q / H のいずれかです。空の場合は M です。
	ErrorCorrection string
	// Margin はクワイエットゾーンのモジュール数です。負の値は既定値 4 を意味します。
	Margin int
}

// Codec は QR コードのエンコードとデコードを行います。
type Codec struct {
	hints map[gozxing.EncodeHintType]interface{}
}

var _ symbol.Codec = (*Codec)(nil)

// New は Codec を生成します。
func New(opts Options) (*Codec, error) {
	level := strings.ToUpper(strings.TrimSpace(opts.ErrorCorrection))
	if level == "" {
		level = "M"
	}
	switch level {
	case "L", "M", "Q", "H":
	default:
		return nil, fmt.Errorf("qrcode: unknown error correction level %q", opts.ErrorCorrection)
	}

	hints := map[gozxing.EncodeHintType]interface{}{
		gozxing.EncodeHintType_ERROR_CORRECTION: level,
	}
	if opts.Margin >= 0 {
		hints[gozxing.EncodeHintType_MARGIN] = opts.Margin
	}
	return &Codec{hints: hints}, nil
}

// Encode は text を一辺 size ピクセルのグレースケール QR 画像にします。
func (c *Codec) Encode(text string, size int) (image.Image, error) {
	if text == "" {
		return nil, errors.New("qrcode: text must not be empty")
	}
	if size <= 0 {
		size = DefaultSize
	}

	matrix, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, size, size, c.hints)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode: %w", err)
	}

	w, h := matrix.GetWidth(), matrix.GetHeight()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return img, nil
}

// EncodePNG は QR 画像を PNG として w に書き出します。
func (c *Codec) EncodePNG(w io.Writer, text string, size int) error {
	img, err := c.Encode(text, size)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("qrcode: write png: %w", err)
	}
	return nil
}

// Decode は画像から QR コードの内容を読み取ります。見つからない場合は symbol.ErrDecodeFailure を返します。
func (c *Codec) Decode(img image.Image) (string, error) {
	if img == nil {
		return "", symbol.ErrDecodeFailure
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", symbol.ErrDecodeFailure, err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", symbol.ErrDecodeFailure, err)
	}
	return result.GetText(), nil
}
