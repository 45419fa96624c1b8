package tex

// Mipmap is one resolution level of an image.
//
// The exported payload fields hold the data exactly as stored in the file and
// are what Encode writes. Decompress derives the pixel data once and caches it;
// the payload is left untouched so a decoded texture can still be re-encoded.
type Mipmap struct {
	Width  int32
	Height int32

	// Format is the format of Data once any LZ4 layer is removed.
	Format MipmapFormat

	// Compressed reports an LZ4 block-compressed payload. Always false for
	// version 1 containers.
	Compressed       bool
	DecompressedSize int32
	Data             []byte

	pixels *Pixels
}

// Pixels is the fully decompressed content of a mipmap. Format is never a
// block-compressed format: it is a raw pixel format or an encoded image file.
type Pixels struct {
	Width  int
	Height int
	Format MipmapFormat
	Data   []byte
}

// Decompressed reports whether Decompress has completed for m.
func (m *Mipmap) Decompressed() bool { return m.pixels != nil }

// Pixels returns the cached result of Decompress, or nil before it has run.
func (m *Mipmap) Pixels() *Pixels { return m.pixels }

func (d *decoder) readMipmap(version ContainerVersion) (*Mipmap, error) {
	m := &Mipmap{}
	var err error

	if m.Width, err = d.r.int32("mipmap width"); err != nil {
		return nil, err
	}
	if m.Height, err = d.r.int32("mipmap height"); err != nil {
		return nil, err
	}
	if m.Width < 0 || m.Height < 0 {
		return nil, &SizeError{Field: "mipmap dimensions", Value: int64(min(m.Width, m.Height))}
	}

	if version != ContainerV1 {
		flag, err := d.r.int32("mipmap compression flag")
		if err != nil {
			return nil, err
		}
		switch flag {
		case 0:
		case 1:
			m.Compressed = true
		default:
			return nil, &FormatError{Field: "mipmap compression flag", Value: int64(flag)}
		}

		if m.DecompressedSize, err = d.r.int32("mipmap decompressed size"); err != nil {
			return nil, err
		}
		if err := d.checkByteCount("mipmap decompressed size", m.DecompressedSize); err != nil {
			return nil, err
		}
	}

	byteCount, err := d.r.int32("mipmap byte count")
	if err != nil {
		return nil, err
	}
	if err := d.checkByteCount("mipmap byte count", byteCount); err != nil {
		return nil, err
	}

	if m.Data, err = d.r.bytes("mipmap data", int(byteCount)); err != nil {
		return nil, err
	}

	if version == ContainerV1 {
		m.DecompressedSize = byteCount
	}

	return m, nil
}

func (d *decoder) checkByteCount(field string, n int32) error {
	if n < 0 || int64(n) > int64(d.limits.MaxMipmapBytes) {
		return &SizeError{Field: field, Value: int64(n), Limit: int64(d.limits.MaxMipmapBytes)}
	}
	return nil
}

func writeMipmap(w *writer, version ContainerVersion, m *Mipmap) {
	w.int32(m.Width)
	w.int32(m.Height)

	if version != ContainerV1 {
		w.bool32(m.Compressed)
		w.int32(m.DecompressedSize)
	}

	w.int32(int32(len(m.Data)))
	w.bytes(m.Data)
}
