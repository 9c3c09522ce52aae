package domain

// ShotSurcharge is added to the unit price when an extra shot is selected.
const ShotSurcharge = 500

// SyrupSurcharge is added when syrup is selected. Syrup is currently free.
const SyrupSurcharge = 0

// LineUnitPrice returns the price of one unit of item with the given options.
func LineUnitPrice(item MenuItem, opts Options) int {
	price := item.BasePrice
	if opts.Shot {
		price += ShotSurcharge
	}
	if opts.Syrup {
		price += SyrupSurcharge
	}
	return price
}

// LineTotal returns unit price times quantity.
func LineTotal(line CartLine) int {
	return LineUnitPrice(line.MenuItem, line.Options) * line.Quantity
}

// CartTotal sums LineTotal over lines. An empty cart totals 0.
func CartTotal(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += LineTotal(l)
	}
	return total
}
