package utils

import (
	"github.com/dustin/go-humanize"
	"strconv"
)

const MaxRawSize = 1024

type Size uint64

func (s Size) String() string {
	if s < MaxRawSize {
		return strconv.FormatUint(uint64(s), 10) + " B"
	} else {
		return humanize.IBytes(uint64(s))
	}
}

type Rate int

func (r Rate) String() string {
	return humanize.SIWithDigits(float64(r)*1e6, 0, "b/s")
}
