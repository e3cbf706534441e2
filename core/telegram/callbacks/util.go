// Package callbacks decodes inline-button callback data.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Split parses callback data into a routing key and payload.
// Two encodings are understood: telebot's "\f<unique>|<payload>" and raw
// namespaced tokens "<ns>:<rest>", whose key is the namespace and whose
// payload is the whole token.
func Split(data string) (key, payload string) {
	if unique, ok := strings.CutPrefix(data, "\f"); ok {
		key, payload, _ = strings.Cut(unique, "|")
		return strings.TrimSpace(key), payload
	}
	data = strings.TrimSpace(data)
	ns, _, _ := strings.Cut(data, ":")
	return ns, data
}

// Key returns the routing key of the callback in c.
func Key(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	key, _ := Split(cb.Data)
	return key
}

// Payload returns the callback payload of c.
func Payload(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	_, payload := Split(cb.Data)
	return payload
}
