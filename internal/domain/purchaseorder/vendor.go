package purchaseorder

import (
	"fmt"
	"strings"

	"github.com/pohub/backend/internal/domain/shared"
)

// Vendor identifies the marketplace a purchase order came from
type Vendor string

const (
	VendorFlipkart  Vendor = "flipkart"
	VendorZepto     Vendor = "zepto"
	VendorCityMall  Vendor = "citymall"
	VendorBlinkit   Vendor = "blinkit"
	VendorSwiggy    Vendor = "swiggy"
	VendorBigBasket Vendor = "bigbasket"
	VendorZomato    Vendor = "zomato"
	VendorDealshare Vendor = "dealshare"
	VendorAmazon    Vendor = "amazon"
	VendorJioMart   Vendor = "jiomart"
)

type vendorInfo struct {
	displayName string
	prefix      string
	multiPO     bool
	keywords    []string
}

var vendorTable = map[Vendor]vendorInfo{
	VendorFlipkart:  {"Flipkart", "FLIPKART", false, []string{"flipkart"}},
	VendorZepto:     {"Zepto", "ZEPTO", false, []string{"zepto"}},
	VendorCityMall:  {"City Mall", "CITYMALL", false, []string{"citymall", "city_mall", "city-mall", "city mall"}},
	VendorBlinkit:   {"Blinkit", "BLINKIT", true, []string{"blinkit", "grofers"}},
	VendorSwiggy:    {"Swiggy", "SWIGGY", false, []string{"swiggy", "instamart"}},
	VendorBigBasket: {"BigBasket", "BIGBASKET", false, []string{"bigbasket", "big_basket", "big-basket", "bbnow"}},
	VendorZomato:    {"Zomato", "ZOMATO", false, []string{"zomato", "hyperpure"}},
	VendorDealshare: {"Dealshare", "DEALSHARE", false, []string{"dealshare", "deal_share", "deal-share"}},
	VendorAmazon:    {"Amazon", "AMAZON", true, []string{"amazon"}},
	VendorJioMart:   {"JioMart", "JIOMART", false, []string{"jiomart", "jio_mart", "jio-mart"}},
}

// AllVendors returns every supported vendor in registration order.
// Detection falls back to this order when structural scores tie.
func AllVendors() []Vendor {
	return []Vendor{
		VendorFlipkart,
		VendorZepto,
		VendorCityMall,
		VendorBlinkit,
		VendorSwiggy,
		VendorBigBasket,
		VendorZomato,
		VendorDealshare,
		VendorAmazon,
		VendorJioMart,
	}
}

// IsValid returns true if the vendor is supported
func (v Vendor) IsValid() bool {
	_, ok := vendorTable[v]
	return ok
}

// String returns the vendor code
func (v Vendor) String() string {
	return string(v)
}

// DisplayName returns the human readable marketplace name
func (v Vendor) DisplayName() string {
	if info, ok := vendorTable[v]; ok {
		return info.displayName
	}
	return string(v)
}

// Prefix is used to build synthetic PO numbers when a file omits them
func (v Vendor) Prefix() string {
	if info, ok := vendorTable[v]; ok {
		return info.prefix
	}
	return strings.ToUpper(string(v))
}

// MultiPO reports whether one export from this vendor may hold several POs
func (v Vendor) MultiPO() bool {
	return vendorTable[v].multiPO
}

// Keywords returns lower-case filename fragments that identify the vendor
func (v Vendor) Keywords() []string {
	return vendorTable[v].keywords
}

// ParseVendor resolves a vendor code, display name or filename-style variant
func ParseVendor(s string) (Vendor, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	if key == "" {
		return "", shared.NewDomainError("INVALID_VENDOR", "vendor is required")
	}
	for _, v := range AllVendors() {
		if string(v) == key {
			return v, nil
		}
	}
	return "", shared.NewDomainError("INVALID_VENDOR", fmt.Sprintf("unsupported vendor: %s", s))
}
