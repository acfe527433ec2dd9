package order

// Collection is an insertion-ordered set of Orders keyed by ClientOrderId.
// It is a transient index over one query's results and is never persisted.
// Not safe for concurrent use; mutating the collection while iterating is
// undefined behavior.
type Collection struct {
	keys   []string
	orders map[string]*Order
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{orders: make(map[string]*Order)}
}

// Add stores an order under its ClientOrderId. Orders without a
// ClientOrderId are rejected. An existing id is only overwritten when
// replace is true; a replaced order keeps its original position.
func (c *Collection) Add(o *Order, replace bool) bool {
	key := o.ClientOrderID()
	if key == "" {
		return false
	}

	if _, exists := c.orders[key]; exists {
		if !replace {
			return false
		}
	} else {
		c.keys = append(c.keys, key)
	}

	c.orders[key] = o

	return true
}

// Find returns the order stored under clientOrderID, or nil.
func (c *Collection) Find(clientOrderID string) *Order {
	return c.orders[clientOrderID]
}

// Count returns the number of orders in the collection.
func (c *Collection) Count() int {
	return len(c.orders)
}

// Iterator returns a forward iterator over the collection in insertion
// order. Each call starts a fresh pass.
func (c *Collection) Iterator() *Iterator {
	return &Iterator{collection: c}
}

// Iterator walks a Collection in insertion order.
type Iterator struct {
	collection *Collection
	pos        int
}

// Next returns the next order, or nil and false once the pass is done.
func (it *Iterator) Next() (*Order, bool) {
	if it.pos >= len(it.collection.keys) {
		return nil, false
	}

	o := it.collection.orders[it.collection.keys[it.pos]]
	it.pos++

	return o, true
}

// Rewind restarts the pass. Provided the collection was not mutated in
// between, the sequence repeats identically.
func (it *Iterator) Rewind() {
	it.pos = 0
}
