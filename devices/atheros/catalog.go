package atheros

import (
	"github.com/fernandosanchezjr/goath9k/bus"
	"github.com/fernandosanchezjr/goath9k/devices/base"
	"github.com/fernandosanchezjr/goath9k/ether"
)

const CardName = "ath9k"

type Catalog struct {
	*base.Catalog
}

func NewCatalog(b bus.IBus, mapper bus.IResourceMapper, drivers ...*AR9285) *Catalog {
	if len(drivers) == 0 {
		drivers = []*AR9285{NewAR9285()}
	}
	iDrivers := make([]base.IDriver, 0, len(drivers))
	for _, d := range drivers {
		iDrivers = append(iDrivers, d)
	}
	return &Catalog{base.NewCatalog("Atheros", b, mapper, iDrivers...)}
}

// Link registers the card type with the interface layer.
func Link(cards *ether.CardTable, binder *base.Binder) {
	cards.AddCard(CardName, binder.Pnp)
}
