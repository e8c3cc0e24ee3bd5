package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// ValidateName checks the format of an item name. Uniqueness is checked
// against a store, not here.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &InvalidNameError{Name: name, Reason: "name cannot be empty"}
	}
	if strings.Contains(name, ",") {
		return &InvalidNameError{Name: name, Reason: "name cannot contain a comma"}
	}
	return nil
}

// ValidateIconURL accepts finished http(s) URLs whose host contains a dot
// that is neither leading nor trailing.
func ValidateIconURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return &InvalidURLError{URL: s}
	}
	host := u.Hostname()
	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return &InvalidURLError{URL: s}
	}
	return nil
}

// ParseQty reads a slot quantity, which must be a whole number >= 1.
func ParseQty(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, &InvalidQuantityError{Value: s}
	}
	return n, nil
}

// SameName compares item names the way uniqueness is enforced.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
