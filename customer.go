package bankledger

import "strings"

type Customer struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Age       int        `json:"age"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Secret    string     `json:"-"`
	Accounts  []*Account `json:"accounts"`
}

func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c *Customer) Account(id int) *Account {
	for _, a := range c.Accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Checking returns the first Checking account in opening order.
func (c *Customer) Checking() *Account {
	for _, a := range c.Accounts {
		if a.Kind() == KindChecking {
			return a
		}
	}
	return nil
}

func (c *Customer) FXAccount(currency string) *Account {
	for _, a := range c.Accounts {
		if a.Kind() == KindFX && strings.EqualFold(a.Currency(), currency) {
			return a
		}
	}
	return nil
}

// transferTarget is the account credited when money is sent to this
// customer by name.
func (c *Customer) transferTarget() *Account {
	if a := c.Checking(); a != nil {
		return a
	}
	if len(c.Accounts) > 0 {
		return c.Accounts[0]
	}
	return nil
}

// namesMatch compares a stored name against a query. Stored first/last names
// win; a record without them is compared on its combined name.
func namesMatch(storedFirst, storedLast, storedFull, first, last string) bool {
	first = strings.ToLower(strings.TrimSpace(first))
	last = strings.ToLower(strings.TrimSpace(last))
	if first == "" || last == "" {
		return false
	}
	sf := strings.ToLower(strings.TrimSpace(storedFirst))
	sl := strings.ToLower(strings.TrimSpace(storedLast))
	if sf != "" || sl != "" {
		return sf == first && sl == last
	}
	return strings.ToLower(strings.TrimSpace(storedFull)) == first+" "+last
}

// splitLegacyName turns a combined name into its first and last token. Middle
// names are dropped.
func splitLegacyName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}
