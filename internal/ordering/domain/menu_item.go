package domain

// MenuItem is a sellable drink. Menu items are loaded once at startup and never change.
type MenuItem struct {
	ID          int
	Name        string
	BasePrice   int
	Description string
	ImageRef    string
}

// Options are the add-ons chosen for one cart line.
type Options struct {
	Shot  bool
	Syrup bool
}

// Labels returns the display labels of the selected options in a fixed order.
func (o Options) Labels() []string {
	var labels []string
	if o.Shot {
		labels = append(labels, "샷 추가")
	}
	if o.Syrup {
		labels = append(labels, "시럽 추가")
	}
	return labels
}
