package actions

import (
	"context"
	"strings"

	"github.com/subscription-bot/server/internal/dialogue/model"
)

// PricePrefix marks session fields seeded from the graph's price constants.
const PricePrefix = "price_"

func capture(field string) Handler {
	return func(_ context.Context, in *Input) (model.Signal, error) {
		in.Session.Set(field, in.Text)
		return model.NoSignal, nil
	}
}

// appendAddress stores the address and appends it to the chosen delivery
// method, so "Почта" becomes "Почта: <address>".
func appendAddress(_ context.Context, in *Input) (model.Signal, error) {
	in.Session.Set("address", in.Text)
	if d := in.Session.Field("delivery"); d != "" {
		in.Session.Set("delivery", d+": "+in.Text)
	} else {
		in.Session.Set("delivery", in.Text)
	}
	return model.NoSignal, nil
}

// clearData wipes captured fields but keeps price constants and the
// graph's preserve list.
func clearData(_ context.Context, in *Input) (model.Signal, error) {
	ClearFields(in.Session, in.Graph)
	return model.NoSignal, nil
}

// ClearFields is the partial reset shared with the engine.
func ClearFields(s *model.Session, g *model.Graph) {
	keep := map[string]struct{}{}
	if g != nil {
		for _, k := range g.Config.Preserve {
			keep[k] = struct{}{}
		}
	}
	for k := range s.Fields {
		if _, ok := keep[k]; ok || strings.HasPrefix(k, PricePrefix) {
			continue
		}
		delete(s.Fields, k)
	}
}

// SeedPrices copies the graph's price constants into the session so screen
// templates can show them.
func SeedPrices(s *model.Session, g *model.Graph) {
	if g == nil {
		return
	}
	for name, v := range g.Config.Prices {
		s.Set(PricePrefix+name, formatMoney(v))
	}
}
