package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/annel0/isomap/internal/world"
	"github.com/klauspost/compress/zstd"
)

// zstdMagic начало кадра zstd. По нему Decode отличает сжатые данные от
// обычного JSON, поэтому слоты читаются независимо от настройки сжатия.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Codec кодирует снимки карты в JSON, при необходимости сжимая их zstd.
// EncodeAll и DecodeAll безопасны для конкурентного вызова.
type Codec struct {
	compress bool
	enc      *zstd.Encoder
	dec      *zstd.Decoder
}

// NewCodec создаёт кодек
func NewCodec(compress bool) (*Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("не удалось создать zstd-кодировщик: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("не удалось создать zstd-декодировщик: %w", err)
	}
	return &Codec{compress: compress, enc: enc, dec: dec}, nil
}

// Compressed сообщает, сжимает ли кодек данные
func (c *Codec) Compressed() bool { return c.compress }

// Encode сериализует снимок
func (c *Codec) Encode(snap *world.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации снимка: %w", err)
	}
	if !c.compress {
		return data, nil
	}
	return c.enc.EncodeAll(data, make([]byte, 0, len(data)/4)), nil
}

// Decode разбирает снимок. Ошибки формата оборачивают world.ErrCorrupt.
func (c *Codec) Decode(data []byte) (*world.Snapshot, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		raw, err := c.dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", world.ErrCorrupt, err)
		}
		data = raw
	}

	var snap world.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", world.ErrCorrupt, err)
	}
	return &snap, nil
}

// Close освобождает ресурсы zstd
func (c *Codec) Close() {
	c.enc.Close()
	c.dec.Close()
}
