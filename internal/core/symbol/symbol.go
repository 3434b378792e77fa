package symbol

import (
	"errors"
	"image"
	"io"
)

// ErrDecodeFailure は画像内にシンボルが見つからなかった場合に返却されます。
var ErrDecodeFailure = errors.New("symbol: no symbol recognized")

// Encoder は識別子をスキャン可能なシンボル画像へ変換します。
type Encoder interface {
	Encode(text string, size int) (image.Image, error)
	EncodePNG(w io.Writer, text string, size int) error
}

// Decoder はシンボル画像から識別子を読み取ります。
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// Codec はエンコードとデコードの両方を提供します。
type Codec interface {
	Encoder
	Decoder
}
