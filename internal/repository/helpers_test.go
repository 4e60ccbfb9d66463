package repository

import (
	"encoding/json"
	"strings"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
)

func jsonRecord(r bookingDomain.Record) (string, error) {
	data, err := json.Marshal(r)
	return string(data), err
}

func replaceOnce(s, old, repl string) string {
	return strings.Replace(s, old, repl, 1)
}
