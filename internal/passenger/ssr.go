package passenger

import (
	"strings"

	"flight_gantt/internal/models"
)

// SSR is a special service request attached to a passenger
type SSR struct {
	Code string
	Text string
}

var (
	ssrCodeKeys = Field{"ssr_code", []string{"Code", "SsrCode", "code"}}
	ssrTextKeys = Field{"ssr_text", []string{"FreeText", "Text", "Description", "free_text"}}
)

// SSRs returns the special service requests in whatever shape the source used:
// a list of objects, a list of codes, or a comma separated string
func SSRs(rec models.PassengerRecord) []SSR {
	v, ok := Lookup(rec, FieldSSRs)
	if !ok {
		return nil
	}

	var out []SSR
	switch list := v.(type) {
	case string:
		for _, code := range strings.Split(list, ",") {
			if c := strings.ToUpper(strings.TrimSpace(code)); c != "" {
				out = append(out, SSR{Code: c})
			}
		}
	case []string:
		for _, code := range list {
			if c := strings.ToUpper(strings.TrimSpace(code)); c != "" {
				out = append(out, SSR{Code: c})
			}
		}
	case []any:
		for _, item := range list {
			switch s := item.(type) {
			case string:
				if c := strings.ToUpper(strings.TrimSpace(s)); c != "" {
					out = append(out, SSR{Code: c})
				}
			case map[string]any:
				ssr := SSR{
					Code: strings.ToUpper(String(s, ssrCodeKeys)),
					Text: String(s, ssrTextKeys),
				}
				if ssr.Code != "" || ssr.Text != "" {
					out = append(out, ssr)
				}
			}
		}
	}
	return out
}

// HasSSR reports whether the passenger carries any of the given codes
func HasSSR(rec models.PassengerRecord, codes ...string) bool {
	for _, s := range SSRs(rec) {
		for _, c := range codes {
			if s.Code == c {
				return true
			}
		}
	}
	return false
}

// SSRText renders requests as "RQST (PAID Standard Seats), OTHS"
func SSRText(ssrs []SSR) string {
	parts := make([]string, 0, len(ssrs))
	for _, s := range ssrs {
		switch {
		case s.Code != "" && s.Text != "":
			parts = append(parts, s.Code+" ("+s.Text+")")
		case s.Code != "":
			parts = append(parts, s.Code)
		default:
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, ", ")
}
