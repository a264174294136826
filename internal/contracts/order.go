package contracts

// Action is the order action sent to the trading application.
type Action string

const (
	ActionBuy        Action = "BUY"
	ActionSell       Action = "SELL"
	ActionSellShort  Action = "SELLSHORT"
	ActionBuyToCover Action = "BUYTOCOVER"
)

// Direction is the net exposure side a position or order claims.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Side maps an action to the exposure side it belongs to. BUY and
// SELL act on long exposure, SELLSHORT and BUYTOCOVER on short.
func (a Action) Side() Direction {
	switch a {
	case ActionSellShort, ActionBuyToCover:
		return DirectionShort
	default:
		return DirectionLong
	}
}

// OpensPosition reports whether the action opens new exposure.
// SELL and BUYTOCOVER always close; only opening orders are subject
// to cross-strategy conflict suppression.
func (a Action) OpensPosition() bool {
	return a == ActionBuy || a == ActionSellShort
}

// OrderType is market or limit.
type OrderType string

const (
	OrderTypeMarket OrderType = "Market"
	OrderTypeLimit  OrderType = "Limit"
)

// TimeInForce values understood by the trading application.
type TimeInForce string

const (
	TIFDay TimeInForce = "DAY"
	TIFOPG TimeInForce = "OPG" // at the open
	TIFGTC TimeInForce = "GTC"
	TIFGTD TimeInForce = "GTD"
)

// Order is the terminal artifact of the core: one row handed to the
// order sinks. Immutable once produced.
type Order struct {
	Symbol       string      `json:"symbol"`
	Action       Action      `json:"action"`
	Quantity     int         `json:"quantity"`
	OrderType    OrderType   `json:"order_type"`
	LimitPrice   float64     `json:"limit_price"` // 0 for market orders
	TimeInForce  TimeInForce `json:"time_in_force"`
	GoodTillDate string      `json:"good_till_date,omitempty"` // RFC3339-like local stamp, GTD only
	AttachMOC    bool        `json:"attach_moc,omitempty"`     // attach a market-on-close exit
	SecurityType string      `json:"security_type"`            // STK or CFD
	Strategy     string      `json:"strategy"`
}

// IsMarket reports whether the order executes at market.
func (o Order) IsMarket() bool {
	return o.OrderType == OrderTypeMarket
}
