package tex

// Image container magics.
const (
	MagicImageContainerV1 = "TEXB0001"
	MagicImageContainerV2 = "TEXB0002"
	MagicImageContainerV3 = "TEXB0003"
)

// ContainerVersion is the numeric suffix of the image container magic.
type ContainerVersion int

const (
	ContainerV1 ContainerVersion = 1
	ContainerV2 ContainerVersion = 2
	ContainerV3 ContainerVersion = 3
)

// ImageContainer holds every image of a texture. An animated texture has one
// image per sprite sheet; a static texture has exactly one.
type ImageContainer struct {
	Magic   string
	Version ContainerVersion

	// ImageFormat is stored explicitly only by version 3. Other versions and
	// raw-pixel textures use FIFUnknown.
	ImageFormat FreeImageFormat

	Images []*Image
}

func containerVersion(magic string) (ContainerVersion, bool) {
	switch magic {
	case MagicImageContainerV1:
		return ContainerV1, true
	case MagicImageContainerV2:
		return ContainerV2, true
	case MagicImageContainerV3:
		return ContainerV3, true
	default:
		return 0, false
	}
}

func (d *decoder) readImageContainer(tf TexFormat) (*ImageContainer, error) {
	magic, err := d.r.magic("image container")
	if err != nil {
		return nil, err
	}

	imageCount, err := d.r.int32("image count")
	if err != nil {
		return nil, err
	}
	if imageCount < 0 || int(imageCount) > d.limits.MaxImages {
		return nil, &SizeError{Field: "image count", Value: int64(imageCount), Limit: int64(d.limits.MaxImages)}
	}

	c := &ImageContainer{
		Magic:       magic,
		ImageFormat: FIFUnknown,
	}

	version, ok := containerVersion(magic)
	if !ok {
		return nil, &MagicError{Section: "image container", Magic: magic}
	}
	c.Version = version

	if version == ContainerV3 {
		fif, err := d.r.int32("image format")
		if err != nil {
			return nil, err
		}
		c.ImageFormat = FreeImageFormat(fif)
	}

	if !c.ImageFormat.Valid() {
		return nil, &FormatError{Field: "image format", Value: int64(c.ImageFormat)}
	}

	format, err := resolveFormat(c.ImageFormat, tf)
	if err != nil {
		return nil, err
	}

	c.Images = make([]*Image, 0, imageCount)
	for i := 0; i < int(imageCount); i++ {
		img, err := d.readImage(version, format)
		if err != nil {
			return nil, wrapIndex("image", i, err)
		}
		c.Images = append(c.Images, img)
	}

	return c, nil
}

func writeImageContainer(w *writer, c *ImageContainer) {
	version, ok := containerVersion(c.Magic)
	if !ok {
		w.fail(&MagicError{Section: "image container", Magic: c.Magic})
		return
	}

	w.nstring(c.Magic)
	w.int32(int32(len(c.Images)))

	if version == ContainerV3 {
		w.int32(int32(c.ImageFormat))
	}

	for _, img := range c.Images {
		writeImage(w, version, img)
	}
}
