package tex

// Top-level magics. Both are NUL-terminated on the wire.
const (
	MagicTexture     = "TEXV0005"
	MagicTextureInfo = "TEXI0001"
)

// Header is the fixed block that follows the two texture magics.
type Header struct {
	Magic     string
	InfoMagic string

	Format        TexFormat
	Flags         TexFlags
	TextureWidth  int32 // Power-of-two allocation size
	TextureHeight int32
	ImageWidth    int32 // Visible image size
	ImageHeight   int32
	Unk           uint32 // Opaque, preserved on write
}

// NewHeader returns a header with the known magics set.
func NewHeader(format TexFormat, flags TexFlags, width, height int32) Header {
	return Header{
		Magic:         MagicTexture,
		InfoMagic:     MagicTextureInfo,
		Format:        format,
		Flags:         flags,
		TextureWidth:  width,
		TextureHeight: height,
		ImageWidth:    width,
		ImageHeight:   height,
	}
}

func readHeader(r *reader) (Header, error) {
	var h Header
	var err error

	if h.Magic, err = r.magic("texture"); err != nil {
		return h, err
	}
	if h.Magic != MagicTexture {
		return h, &MagicError{Section: "texture", Magic: h.Magic}
	}

	if h.InfoMagic, err = r.magic("texture info"); err != nil {
		return h, err
	}
	if h.InfoMagic != MagicTextureInfo {
		return h, &MagicError{Section: "texture info", Magic: h.InfoMagic}
	}

	format, err := r.int32("texture format")
	if err != nil {
		return h, err
	}
	h.Format = TexFormat(format)

	flags, err := r.int32("texture flags")
	if err != nil {
		return h, err
	}
	h.Flags = TexFlags(flags)

	fields := []struct {
		name string
		dst  *int32
	}{
		{"texture width", &h.TextureWidth},
		{"texture height", &h.TextureHeight},
		{"image width", &h.ImageWidth},
		{"image height", &h.ImageHeight},
	}
	for _, f := range fields {
		if *f.dst, err = r.int32(f.name); err != nil {
			return h, err
		}
	}

	if h.Unk, err = r.uint32("header unk"); err != nil {
		return h, err
	}

	return h, nil
}

func writeHeader(w *writer, h *Header) {
	if h.Magic != MagicTexture {
		w.fail(&MagicError{Section: "texture", Magic: h.Magic})
		return
	}
	if h.InfoMagic != MagicTextureInfo {
		w.fail(&MagicError{Section: "texture info", Magic: h.InfoMagic})
		return
	}

	w.nstring(h.Magic)
	w.nstring(h.InfoMagic)
	w.int32(int32(h.Format))
	w.int32(int32(h.Flags))
	w.int32(h.TextureWidth)
	w.int32(h.TextureHeight)
	w.int32(h.ImageWidth)
	w.int32(h.ImageHeight)
	w.uint32(h.Unk)
}
