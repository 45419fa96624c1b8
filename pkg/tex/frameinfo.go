package tex

// Frame-info container magics.
const (
	MagicFrameInfoV2 = "TEXS0002"
	MagicFrameInfoV3 = "TEXS0003"
)

// FrameInfoContainer describes the animation of a sprite-sheet texture.
type FrameInfoContainer struct {
	Magic string

	// Unk0 and Unk1 are present only in TEXS0003. Their meaning is unknown;
	// they are preserved on write.
	Unk0 int32
	Unk1 int32

	Frames []FrameInfo
}

// FrameInfo places one animation frame inside an image of the container.
// Extra0 and Extra1 are opaque and preserved on write.
type FrameInfo struct {
	ImageID   int32   `json:"imageId"`
	FrameTime float32 `json:"frameTime"`
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Width     float32 `json:"width"`
	Extra0    float32 `json:"extra0"`
	Extra1    float32 `json:"extra1"`
	Height    float32 `json:"height"`
}

func (d *decoder) readFrameInfoContainer() (*FrameInfoContainer, error) {
	magic, err := d.r.magic("frame info")
	if err != nil {
		return nil, err
	}

	count, err := d.r.int32("frame count")
	if err != nil {
		return nil, err
	}
	if count < 0 || int(count) > d.limits.MaxFrames {
		return nil, &SizeError{Field: "frame count", Value: int64(count), Limit: int64(d.limits.MaxFrames)}
	}

	c := &FrameInfoContainer{Magic: magic}

	switch magic {
	case MagicFrameInfoV2:
	case MagicFrameInfoV3:
		if c.Unk0, err = d.r.int32("frame info unk0"); err != nil {
			return nil, err
		}
		if c.Unk1, err = d.r.int32("frame info unk1"); err != nil {
			return nil, err
		}
	default:
		return nil, &MagicError{Section: "frame info", Magic: magic}
	}

	c.Frames = make([]FrameInfo, count)
	for i := range c.Frames {
		if err := d.readFrame(&c.Frames[i]); err != nil {
			return nil, wrapIndex("frame", i, err)
		}
	}

	return c, nil
}

func (d *decoder) readFrame(f *FrameInfo) error {
	var err error
	if f.ImageID, err = d.r.int32("frame image id"); err != nil {
		return err
	}

	fields := []*float32{&f.FrameTime, &f.X, &f.Y, &f.Width, &f.Extra0, &f.Extra1, &f.Height}
	for _, dst := range fields {
		if *dst, err = d.r.float32("frame field"); err != nil {
			return err
		}
	}
	return nil
}

func writeFrameInfoContainer(w *writer, c *FrameInfoContainer) {
	switch c.Magic {
	case MagicFrameInfoV2, MagicFrameInfoV3:
	default:
		w.fail(&MagicError{Section: "frame info", Magic: c.Magic})
		return
	}

	w.nstring(c.Magic)
	w.int32(int32(len(c.Frames)))

	if c.Magic == MagicFrameInfoV3 {
		w.int32(c.Unk0)
		w.int32(c.Unk1)
	}

	for _, f := range c.Frames {
		w.int32(f.ImageID)
		w.float32(f.FrameTime)
		w.float32(f.X)
		w.float32(f.Y)
		w.float32(f.Width)
		w.float32(f.Extra0)
		w.float32(f.Extra1)
		w.float32(f.Height)
	}
}
