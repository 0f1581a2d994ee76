package api

import (
	"github.com/JaimeStill/marlin/internal/identification"
	"github.com/JaimeStill/marlin/internal/providers"
	"github.com/JaimeStill/marlin/internal/search"
	"github.com/JaimeStill/marlin/internal/selector"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Search         search.System
	Selector       *selector.Selector
	Identification identification.System
}

// NewDomain creates all domain systems from the API runtime. The selector
// chooses between the direct vision provider and caption search.
func NewDomain(runtime *Runtime) *Domain {
	searchSystem := search.New(
		runtime.Embedder,
		runtime.Index,
		runtime.Fields,
		runtime.Catalog,
		runtime.TopN,
		runtime.Metrics,
		runtime.Logger,
	)

	pair := providers.Pair{
		Primary:   providers.NewDirect(runtime.Model, runtime.Catalog, runtime.Metrics, runtime.Logger),
		Alternate: providers.NewCaptionSearch(runtime.Model, searchSystem, runtime.Metrics, runtime.Logger),
	}

	sel := selector.New(
		runtime.UseAlternate,
		pair.Primary.Name(),
		pair.Alternate.Name(),
		runtime.AdminToken,
		runtime.Logger,
	)

	identificationSystem := identification.New(&identification.Runtime{
		Images:    runtime.Storage,
		Model:     runtime.Model,
		Search:    searchSystem,
		Providers: pair,
		Selector:  sel,
		Vocab:     runtime.Catalog,
		TopN:      runtime.TopN,
		Metrics:   runtime.Metrics,
		Logger:    runtime.Logger,
	})

	return &Domain{
		Search:         searchSystem,
		Selector:       sel,
		Identification: identificationSystem,
	}
}
