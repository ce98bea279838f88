// Package identity pulls a vehicle's business identity out of unstructured
// board card titles. Card titles follow loose conventions like
// "ABC1D23 - Gol 1.0" or "Corolla XEi DEF4G56", so extraction is a heuristic:
// the first plate-shaped token wins.
package identity

import (
	"regexp"
	"strings"
)

// plateRe matches Brazilian plates, old format (ABC1234) and Mercosul
// (ABC1D23) alike: three letters, one digit, one alphanumeric, two digits.
var plateRe = regexp.MustCompile(`\b([A-Z]{3}[0-9][A-Z0-9][0-9]{2})\b`)

var separatorRe = regexp.MustCompile(`[-\s]+`)

// Identity is the result of extracting a plate and model from a card title.
// Plate is empty when no plate-shaped token was found; such cards are not
// reconcilable. Ambiguous flags titles carrying more than one plate-shaped
// token, where picking the first is a known heuristic limitation.
type Identity struct {
	Plate     string
	Model     string
	Ambiguous bool
}

// Extract parses a card title into plate and model. Pure and deterministic.
func Extract(cardTitle string) Identity {
	matches := plateRe.FindAllString(cardTitle, 2)
	if len(matches) == 0 {
		return Identity{Model: strings.TrimSpace(cardTitle)}
	}

	plate := matches[0]
	model := strings.Replace(cardTitle, plate, "", 1)
	model = strings.TrimSpace(separatorRe.ReplaceAllString(model, " "))

	return Identity{
		Plate:     plate,
		Model:     model,
		Ambiguous: len(matches) > 1,
	}
}
