package exchange

// Client is the entry point to the brokerage API: it owns one gateway and
// vends the per-endpoint resources.
type Client struct {
	gw Gateway
}

// NewClient builds a Client talking to the real API with the given
// credentials and base endpoint (e.g. https://paper-api.alpaca.markets).
func NewClient(key, secret, endpoint string) *Client {
	return &Client{gw: NewAlpacaGateway(key, secret, endpoint)}
}

// NewClientWithGateway builds a Client over a caller-supplied gateway.
// Used for dry runs and tests.
func NewClientWithGateway(gw Gateway) *Client {
	return &Client{gw: gw}
}

// Orders returns the order lifecycle resource.
func (c *Client) Orders() *Orders {
	return NewOrders(c.gw)
}

// Account returns the account snapshot resource.
func (c *Client) Account() *Account {
	return NewAccount(c.gw)
}

// Calendar returns the market calendar resource.
func (c *Client) Calendar() *Calendar {
	return NewCalendar(c.gw)
}

// Clock returns the market clock resource.
func (c *Client) Clock() *Clock {
	return NewClock(c.gw)
}
