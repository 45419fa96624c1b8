package tex

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/pierrec/lz4/v4"
)

// blob assembles wire bytes by hand so tests do not depend on Encode.
type blob struct {
	bytes.Buffer
}

func (b *blob) str(s string) {
	b.WriteString(s)
	b.WriteByte(0)
}

func (b *blob) i32(v int32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	b.Write(buf[:])
}

func (b *blob) f32(v float32) {
	b.i32(int32(math.Float32bits(v)))
}

type fixtureMip struct {
	width, height int32
	lz4           bool
	size          int32 // declared decompressed size, v2/v3 only
	data          []byte
}

type fixture struct {
	format     TexFormat
	flags      TexFlags
	container  string
	fif        FreeImageFormat // written for TEXB0003 only
	images     [][]fixtureMip
	frameMagic string // empty: no frame-info section
	unk0, unk1 int32
	frames     []FrameInfo
}

func (f fixture) bytes() []byte {
	var b blob
	b.str(MagicTexture)
	b.str(MagicTextureInfo)
	b.i32(int32(f.format))
	b.i32(int32(f.flags))
	b.i32(16) // texture width
	b.i32(16) // texture height
	b.i32(16) // image width
	b.i32(16) // image height
	b.i32(0x01020304)

	b.str(f.container)
	b.i32(int32(len(f.images)))
	if f.container == MagicImageContainerV3 {
		b.i32(int32(f.fif))
	}

	for _, mips := range f.images {
		b.i32(int32(len(mips)))
		for _, m := range mips {
			b.i32(m.width)
			b.i32(m.height)
			if f.container != MagicImageContainerV1 {
				if m.lz4 {
					b.i32(1)
				} else {
					b.i32(0)
				}
				b.i32(m.size)
			}
			b.i32(int32(len(m.data)))
			b.Write(m.data)
		}
	}

	if f.frameMagic != "" {
		b.str(f.frameMagic)
		b.i32(int32(len(f.frames)))
		if f.frameMagic == MagicFrameInfoV3 {
			b.i32(f.unk0)
			b.i32(f.unk1)
		}
		for _, fr := range f.frames {
			b.i32(fr.ImageID)
			b.f32(fr.FrameTime)
			b.f32(fr.X)
			b.f32(fr.Y)
			b.f32(fr.Width)
			b.f32(fr.Extra0)
			b.f32(fr.Extra1)
			b.f32(fr.Height)
		}
	}

	return b.Bytes()
}

// dxt1Solid returns DXT1 data for a width x height image of one RGB565 color.
func dxt1Solid(width, height int, c uint16) []byte {
	blocks := ((width + 3) / 4) * ((height + 3) / 4)
	out := make([]byte, 0, blocks*8)
	for i := 0; i < blocks; i++ {
		var block [8]byte
		binary.LittleEndian.PutUint16(block[0:], c)
		binary.LittleEndian.PutUint16(block[2:], c)
		out = append(out, block[:]...)
	}
	return out
}

func lz4Compress(t testing.TB, src []byte) []byte {
	t.Helper()
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		t.Fatalf("lz4 compress: %v", err)
	}
	if n == 0 {
		t.Fatal("lz4 compress: data not compressible")
	}
	return dst[:n]
}

// mipChain builds a DXT1 mip chain 16x16 -> 1x1, LZ4 compressing when asked.
func mipChain(t testing.TB, compress bool) []fixtureMip {
	var mips []fixtureMip
	for size := 16; size >= 1; size /= 2 {
		raw := dxt1Solid(size, size, 0xF800)
		m := fixtureMip{width: int32(size), height: int32(size), size: int32(len(raw)), data: raw}
		if compress && len(raw) >= 64 {
			m.lz4 = true
			m.data = lz4Compress(t, raw)
		}
		mips = append(mips, m)
	}
	return mips
}
