package pos

// Cart maps item name to the requested quantity of the in-progress
// checkout. It is transient: cleared after a sale commits or on explicit
// reset, and never persisted.
type Cart map[string]int

// Set records a line. Negative quantities are ignored; lines are not
// checked against current stock here.
func (c Cart) Set(item string, qty int) {
	if qty < 0 {
		return
	}
	c[item] = qty
}

func (c Cart) Remove(item string) { delete(c, item) }

func (c Cart) Empty() bool { return len(c) == 0 }
