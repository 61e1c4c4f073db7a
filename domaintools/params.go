package domaintools

import (
	"sort"

	"github.com/robd518/pyapiary/broker"
)

// irisInvestigateParams is the fixed set of search and filter parameters the
// Iris Investigate endpoint recognises. See
// https://docs.domaintools.com/api/iris/investigate/search/
var irisInvestigateParams = map[string]bool{
	"active":                 true,
	"adsense":                true,
	"baidu_analytics":        true,
	"contact_name":           true,
	"contact_phone":          true,
	"contact_street":         true,
	"create_date":            true,
	"domain":                 true,
	"email":                  true,
	"email_dns_soa":          true,
	"email_domain":           true,
	"expiration_date":        true,
	"facebook":               true,
	"first_seen_since":       true,
	"first_seen_within":      true,
	"google_analytics":       true,
	"google_analytics_4":     true,
	"google_tag_manager":     true,
	"historical_email":       true,
	"historical_free_text":   true,
	"historical_registrant":  true,
	"hotjar":                 true,
	"iana_id":                true,
	"ip":                     true,
	"ip_country_code":        true,
	"mailserver_domain":      true,
	"mailserver_host":        true,
	"mailserver_ip":          true,
	"matomo":                 true,
	"nameserver_domain":      true,
	"nameserver_host":        true,
	"nameserver_ip":          true,
	"not_tagged_with_all":    true,
	"not_tagged_with_any":    true,
	"rank":                   true,
	"redirect_domain":        true,
	"registrant":             true,
	"registrant_org":         true,
	"registrar":              true,
	"risk_score":             true,
	"search_hash":            true,
	"server_type":            true,
	"ssl_alt_names":          true,
	"ssl_common_name":        true,
	"ssl_duration":           true,
	"ssl_email":              true,
	"ssl_hash":               true,
	"ssl_issuer_common_name": true,
	"ssl_not_after":          true,
	"ssl_not_before":         true,
	"ssl_org":                true,
	"ssl_subject":            true,
	"statcounter_project":    true,
	"statcounter_security":   true,
	"tagged_with_all":        true,
	"tagged_with_any":        true,
	"tld":                    true,
	"website_title":          true,
	"whois":                  true,
	"yandex_metrica":         true,
}

// validateIrisParams rejects an empty parameter set and any name outside the
// allow-list, before any network call is made.
func validateIrisParams(params map[string]string) error {
	if len(params) == 0 {
		return &broker.ValidationError{
			Reason: "at least one Iris Investigate parameter is required",
		}
	}

	var invalid []string
	for name := range params {
		if !irisInvestigateParams[name] {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return &broker.ValidationError{
			Reason: "invalid Iris Investigate parameters",
			Names:  invalid,
		}
	}
	return nil
}
