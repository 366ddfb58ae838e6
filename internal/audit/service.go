package audit

import (
	"encoding/json"
	"log"
)

type LogOptions struct {
	User        string
	EntityType  string
	EntityID    string
	Action      string
	Description string
	Before      any
	After       any
}

// WriteLog protokolliert Verwaltungsaktionen (User, Katalog) ins Server-Log.
// Gebuchte Bestandsänderungen stehen im Buchungsjournal. Direkt im Katalog
// überschriebene Bestände erscheinen nur hier, mit altem und neuem Wert.
func WriteLog(opts LogOptions) {
	log.Printf("[AUDIT] user=%s action=%s %s=%s %s before=%s after=%s",
		opts.User, opts.Action, opts.EntityType, opts.EntityID, opts.Description,
		marshal(opts.Before), marshal(opts.After))
}

func marshal(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
