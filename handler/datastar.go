package handler

import (
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

// TemplOption configures an element patch.
type TemplOption = datastar.PatchElementOption

func WithTarget(selector string) TemplOption { return datastar.WithSelector(selector) }

func WithPatchMode(mode datastar.ElementPatchMode) TemplOption { return datastar.WithMode(mode) }

// IsDataStar reports a request issued by a DataStar action, which expects an
// event stream back.
func IsDataStar(r *http.Request) bool {
	if r.Header.Get("Datastar-Request") == "true" {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}
	return r.URL.Query().Has("datastar")
}
