package tacoshop

import "encoding/json"

type Size string

const (
	SizeM      Size = "m"
	SizeL      Size = "l"
	SizeLMixte Size = "l_mixte"
	SizeXL     Size = "xl"
	SizeXXL    Size = "xxl"
	SizeGeant  Size = "geant"
)

// the upstream rejects empty ingredient arrays, an explicitly empty
// selection is submitted with these sentinel codes instead. parsed
// ingredient lists never contain them, they are filtered out and only
// re-injected at submission time.
const (
	NoMeatSentinel      = "sans_viande"
	NoSauceSentinel     = "sans_sauce"
	NoGarnitureSentinel = "sans_garniture"
)

type Meat struct {
	Id       string
	Name     string
	Quantity int
}

type Sauce struct {
	Id   string
	Name string
}

type Garniture struct {
	Id   string
	Name string
}

type Taco struct {
	Id         string
	Size       Size
	Meats      []Meat
	Sauces     []Sauce
	Garnitures []Garniture
	Note       string
	Price      float64
}

// a non-taco cart item sent to one of the upstream's JSON endpoints
type CartItem struct {
	Id       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Extra struct {
	CartItem
	FreeSauce  string   `json:"free_sauce,omitempty"`
	FreeSauces []string `json:"free_sauces,omitempty"`
}

// CartItemResponse is what the upstream's JSON cart endpoints reply
// with. Only Success and Message are contractual, the upstream adds
// and removes other fields freely so everything else is retained
// untyped in Extra.
type CartItemResponse struct {
	Success bool
	Message string
	Extra   map[string]any
}

func (r *CartItemResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["success"].(bool); ok {
		r.Success = v
	}
	if v, ok := raw["message"].(string); ok {
		r.Message = v
	}
	delete(raw, "success")
	delete(raw, "message")
	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}

type SummaryItem struct {
	Quantity int
	Name     string
	Price    float64
}

// a taco line of the order summary, Size holds the full line label
// (e.g. "Tacos L Mixte") and the detail lines parsed under it
type TacoSummaryItem struct {
	Quantity int
	Size     string
	Price    float64
	Meats    []string
	Sauces   []string
}

type OrderSummary struct {
	CartTotal   float64
	DeliveryFee float64
	TotalAmount float64
	Tacos       []TacoSummaryItem
	Extras      []SummaryItem
	Drinks      []SummaryItem
	Desserts    []SummaryItem
}

// customer/delivery/payment fields of the final order submission
type OrderRequest struct {
	FirstName     string
	LastName      string
	Phone         string
	Email         string
	Address       string
	City          string
	PostalCode    string
	DeliveryTime  string
	PaymentMethod string
	Comment       string
}

type Availability int

const (
	InStock Availability = iota
	LowStock
	OutOfStock
)

// Stock maps category -> canonical item code -> availability, as
// scraped from the upstream's office page. it doubles as the
// reference list of canonical codes when resolving names parsed out
// of cart HTML.
type Stock map[string]map[string]Availability

func (s Stock) Lookup(category, code string) (Availability, bool) {
	items, ok := s[category]
	if !ok {
		return OutOfStock, false
	}
	availability, ok := items[code]
	return availability, ok
}

// stock categories as the office page names them
const (
	CategoryMeats      = "viandes"
	CategorySauces     = "sauces"
	CategoryGarnitures = "garnitures"
	CategoryExtras     = "extras"
	CategoryDrinks     = "boissons"
	CategoryDesserts   = "desserts"
)
