package tex

// Info summarizes a decoded texture for reports and side-car metadata.
type Info struct {
	Format        string      `json:"format"`
	Flags         string      `json:"flags"`
	TextureWidth  int32       `json:"textureWidth"`
	TextureHeight int32       `json:"textureHeight"`
	ImageWidth    int32       `json:"imageWidth"`
	ImageHeight   int32       `json:"imageHeight"`
	Container     string      `json:"container"`
	ImageFormat   string      `json:"imageFormat"`
	Images        []ImageInfo `json:"images"`
	FrameInfo     string      `json:"frameInfo,omitempty"`
	Frames        []FrameInfo `json:"frames,omitempty"`
}

// ImageInfo lists the mipmaps of one image.
type ImageInfo struct {
	Mipmaps []MipmapInfo `json:"mipmaps"`
}

// MipmapInfo describes one mipmap. Format is the decompressed format when the
// mipmap has been decompressed and the stored format otherwise.
type MipmapInfo struct {
	Width      int32  `json:"width"`
	Height     int32  `json:"height"`
	Format     string `json:"format"`
	Compressed bool   `json:"lz4"`
	Size       int    `json:"size"`
}

// Info builds the summary of t.
func (t *Texture) Info() Info {
	info := Info{
		Format:        t.Header.Format.String(),
		Flags:         t.Header.Flags.String(),
		TextureWidth:  t.Header.TextureWidth,
		TextureHeight: t.Header.TextureHeight,
		ImageWidth:    t.Header.ImageWidth,
		ImageHeight:   t.Header.ImageHeight,
	}

	if c := t.ImageContainer; c != nil {
		info.Container = c.Magic
		info.ImageFormat = c.ImageFormat.String()
		for _, img := range c.Images {
			ii := ImageInfo{Mipmaps: make([]MipmapInfo, 0, len(img.Mipmaps))}
			for _, m := range img.Mipmaps {
				mi := MipmapInfo{
					Width:      m.Width,
					Height:     m.Height,
					Format:     m.Format.String(),
					Compressed: m.Compressed,
					Size:       len(m.Data),
				}
				if p := m.Pixels(); p != nil {
					mi.Format = p.Format.String()
				}
				ii.Mipmaps = append(ii.Mipmaps, mi)
			}
			info.Images = append(info.Images, ii)
		}
	}

	if t.FrameInfo != nil {
		info.FrameInfo = t.FrameInfo.Magic
		info.Frames = t.FrameInfo.Frames
	}

	return info
}
