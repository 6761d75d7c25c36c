package actions

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	errx "github.com/subscription-bot/server/internal/core/error"
	"github.com/subscription-bot/server/internal/dialogue/model"
)

const yearKey = "year"

var firstNumber = regexp.MustCompile(`\d+`)

var printer = message.NewPrinter(language.Russian)

// calcPrice captures the issue selection from the triggering text, when
// there is one, and prices it against the captured subscription type. The
// result is stored only as the display field "price".
func calcPrice(_ context.Context, in *Input) (model.Signal, error) {
	s := in.Session
	if in.Text != "" {
		s.Set("issues", in.Text)
	}
	typeLabel := s.Field("sub_type")
	if typeLabel == "" {
		return model.NoSignal, errx.Configf("calc_price: subscription type was not captured before pricing")
	}
	typeKey := labelKey(in.Graph, typeLabel)

	issues := s.Field("issues")
	key := typeKey + "_single"
	count := 1
	if labelKey(in.Graph, issues) == yearKey {
		key = typeKey + "_" + yearKey
	} else if n := firstNumber.FindString(issues); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			count = v
		}
	}

	unit, ok := in.Graph.Config.Prices[key]
	if !ok {
		return model.NoSignal, errx.Configf("calc_price: price constant %q is not defined in config.prices", key)
	}
	s.Set("price", formatMoney(unit*float64(count)))
	return model.NoSignal, nil
}

func labelKey(g *model.Graph, label string) string {
	if g != nil {
		if k, ok := g.Config.Labels[label]; ok {
			return k
		}
	}
	return strings.ToLower(strings.TrimSpace(label))
}

func formatMoney(v float64) string {
	return printer.Sprintf("%d ₽", int64(math.Round(v)))
}
