package tex

// Image is one picture in the container, stored as a mipmap chain from full
// resolution down.
type Image struct {
	Format  MipmapFormat
	Mipmaps []*Mipmap
}

// First returns the full-resolution mipmap, or nil for an empty image.
func (img *Image) First() *Mipmap {
	if len(img.Mipmaps) == 0 {
		return nil
	}
	return img.Mipmaps[0]
}

func (d *decoder) readImage(version ContainerVersion, format MipmapFormat) (*Image, error) {
	count, err := d.r.int32("mipmap count")
	if err != nil {
		return nil, err
	}
	if count < 0 || int(count) > d.limits.MaxMipmaps {
		return nil, &SizeError{Field: "mipmap count", Value: int64(count), Limit: int64(d.limits.MaxMipmaps)}
	}

	img := &Image{
		Format:  format,
		Mipmaps: make([]*Mipmap, 0, count),
	}

	for i := 0; i < int(count); i++ {
		m, err := d.readMipmap(version)
		if err != nil {
			return nil, wrapIndex("mipmap", i, err)
		}
		m.Format = format

		if d.decompress {
			if _, err := m.Decompress(); err != nil {
				return nil, wrapIndex("mipmap", i, err)
			}
		}

		img.Mipmaps = append(img.Mipmaps, m)
	}

	return img, nil
}

func writeImage(w *writer, version ContainerVersion, img *Image) {
	w.int32(int32(len(img.Mipmaps)))
	for _, m := range img.Mipmaps {
		writeMipmap(w, version, m)
	}
}
