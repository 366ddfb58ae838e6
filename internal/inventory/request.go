package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Quantity akzeptiert Zahlen und numerische Strings (Formularfelder des
// Web-Clients). Nicht ganzzahlige Werte sind ein Fehler.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("menge %s ist keine ganze Zahl", string(data))
	}
	*q = Quantity(n)
	return nil
}

func (q *Quantity) intPtr() *int {
	if q == nil {
		return nil
	}
	n := int(*q)
	return &n
}
