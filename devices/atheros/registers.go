package atheros

const (
	Isr   uint32 = 0x008 // interrupt status
	Imr   uint32 = 0x00c // interrupt mask
	FhIsr uint32 = 0x010 // second interrupt status
)

const (
	MaskAll  uint32 = 0
	AckAll   uint32 = 0xffffffff
	RateMbps        = 54
)
